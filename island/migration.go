package island

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// WillMove decides, with probability mu*fitness, whether the animal tries
// to migrate this year.
func (a *Animal) WillMove(isl *Island) bool {
	p := isl.speciesParams(a.species)
	return isl.rng.Float64() < p.Mu*a.fitness
}

// relativeAbundance returns resource / ((N+1)*F) for a member of the
// animal's species looking at cell c. Zero appetite counts as no abundance.
func (a *Animal) relativeAbundance(isl *Island, c *Cell) float64 {
	p := isl.speciesParams(a.species)
	if p.F <= 0 {
		return 0
	}
	n := c.Count(a.species)
	return a.species.relevantResource(c) / (float64(n+1) * p.F)
}

// Propensities returns the unnormalised desirability of each neighbour in
// draw order (north, south, west, east): 0 for Ocean and Mountain,
// exp(lambda*relative_abundance) otherwise.
func (a *Animal) Propensities(isl *Island) [4]float64 {
	p := isl.speciesParams(a.species)
	var out [4]float64
	for i, loc := range a.loc.Neighbors() {
		c := isl.Cell(loc)
		if c == nil || !c.Habitable() {
			continue
		}
		out[i] = math.Exp(p.Lambda * a.relativeAbundance(isl, c))
	}
	return out
}

// MigrationDestination draws a neighbour with probability proportional to
// its propensity. It reports false, without drawing, when no neighbour is
// habitable.
func (a *Animal) MigrationDestination(isl *Island) (Coord, bool) {
	p := isl.speciesParams(a.species)
	neighbors := a.loc.Neighbors()

	// Exponents are shifted by their maximum before exponentiating; the
	// normalised distribution is unchanged and large abundances cannot
	// overflow.
	var exponents [4]float64
	habitable := [4]bool{}
	maxExp := math.Inf(-1)
	for i, loc := range neighbors {
		c := isl.Cell(loc)
		if c == nil || !c.Habitable() {
			continue
		}
		habitable[i] = true
		exponents[i] = p.Lambda * a.relativeAbundance(isl, c)
		maxExp = math.Max(maxExp, exponents[i])
	}

	weights := make([]float64, len(neighbors))
	for i := range neighbors {
		if habitable[i] {
			weights[i] = math.Exp(exponents[i] - maxExp)
		}
	}
	if floats.Sum(weights) == 0 {
		return a.loc, false
	}

	idx := int(distuv.NewCategorical(weights, isl.rng).Rand())
	if weights[idx] == 0 {
		// A uniform of exactly 0 lands on index 0 whatever its weight;
		// resolve it to the first neighbour that can be drawn.
		idx = slices.IndexFunc(weights, func(w float64) bool { return w > 0 })
	}
	return neighbors[idx], true
}

// Migrate moves the animal to a neighbouring cell if it decides to move and
// a habitable neighbour exists. It reports whether the animal moved.
func (a *Animal) Migrate(isl *Island) bool {
	if !a.WillMove(isl) {
		return false
	}
	dest, ok := a.MigrationDestination(isl)
	if !ok {
		return false
	}
	isl.relocate(a, dest)
	return true
}
