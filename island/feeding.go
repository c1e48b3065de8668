package island

import (
	"cmp"
	"fmt"
	"slices"
)

// Feed lets the animal eat for one year and returns the amount eaten
// (fodder for herbivores, prey weight for carnivores) before the beta
// conversion.
func (a *Animal) Feed(isl *Island) (float64, error) {
	switch a.species {
	case Herbivore:
		return a.graze(isl)
	case Carnivore:
		return a.hunt(isl), nil
	}
	return 0, fmt.Errorf("feed %v: %w", a.species, ErrUnknownSpecies)
}

// graze eats min(F, fodder) from the animal's cell.
func (a *Animal) graze(isl *Island) (float64, error) {
	p := isl.speciesParams(Herbivore)
	cell := isl.Cell(a.loc)
	available := cell.fodder
	if available < 0 {
		return 0, fmt.Errorf("cell %v holds %g fodder: %w", a.loc, available, ErrNegativeFodder)
	}

	eaten := min(p.F, available)
	if eaten == 0 {
		return 0, nil
	}
	cell.ConsumeFodder(eaten)
	a.weight += eaten * p.Beta
	a.RecomputeFitness(p)

	isl.ledger.RecordEaten(a.id, eaten)
	isl.obs.AnimalAte(a, eaten)
	return eaten, nil
}

// KillProbability returns the chance that a predator of fitness predator
// kills prey of fitness prey.
func KillProbability(predator, prey, deltaPhiMax float64) float64 {
	gap := predator - prey
	switch {
	case gap <= 0:
		return 0
	case gap >= deltaPhiMax:
		return 1
	}
	return gap / deltaPhiMax
}

// hunt attacks the herbivores on the animal's cell, weakest first, until
// the appetite is met or every herbivore has been tried. One uniform draw
// is consumed per herbivore tried. A killed herbivore leaves the island at
// once; only the part of it that fits in the remaining appetite is eaten.
func (a *Animal) hunt(isl *Island) float64 {
	p := isl.speciesParams(Carnivore)
	cell := isl.Cell(a.loc)

	prey := slices.Clone(cell.herbivores)
	slices.SortStableFunc(prey, func(x, y *Animal) int { return cmp.Compare(x.fitness, y.fitness) })

	eaten := 0.0
	for _, h := range prey {
		if eaten >= p.F {
			break
		}
		chance := KillProbability(a.fitness, h.fitness, p.DeltaPhiMax)
		if isl.rng.Float64() >= chance {
			continue
		}

		portion := min(h.weight, p.F-eaten)
		eaten += portion
		a.weight += portion * p.Beta
		a.RecomputeFitness(p)

		isl.ledger.RecordKill(a.id)
		isl.remove(h, CausePredation)
	}

	if eaten > 0 {
		isl.ledger.RecordEaten(a.id, eaten)
		isl.obs.AnimalAte(a, eaten)
	}
	return eaten
}
