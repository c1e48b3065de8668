package island

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BirthProbability returns min(1, gamma*fitness*(N-1)) where N is the
// number of animals of the same species on the cell, the parent included.
func (a *Animal) BirthProbability(isl *Island) float64 {
	p := isl.speciesParams(a.species)
	n := isl.Cell(a.loc).Count(a.species)
	return math.Min(1, p.Gamma*a.fitness*float64(n-1))
}

// HeavyEnoughToBreed reports whether the parent passes the weight safety
// gate zeta*(w_birth+sigma_birth) <= weight.
func (a *Animal) HeavyEnoughToBreed(isl *Island) bool {
	p := isl.speciesParams(a.species)
	return p.Zeta*(p.WBirth+p.SigmaBirth) <= a.weight
}

// CanGiveBirth decides whether the animal attempts a birth this year.
// A uniform draw is consumed only when both gates pass.
func (a *Animal) CanGiveBirth(isl *Island) bool {
	prob := a.BirthProbability(isl)
	if prob <= 0 || !a.HeavyEnoughToBreed(isl) {
		return false
	}
	return isl.rng.Float64() < prob
}

// GiveBirth attempts one birth. The newborn's weight is drawn from
// Normal(w_birth, sigma_birth); the birth is vetoed when xi times that
// weight is not below the parent's weight. The parent's weight is not
// otherwise changed.
func (a *Animal) GiveBirth(isl *Island) (*Animal, bool) {
	if !a.CanGiveBirth(isl) {
		return nil, false
	}
	p := isl.speciesParams(a.species)
	weight := distuv.Normal{Mu: p.WBirth, Sigma: p.SigmaBirth, Src: isl.rng}.Rand()
	if weight*p.Xi >= a.weight {
		return nil, false
	}

	child := isl.spawn(a.species, a.loc, 0, weight)
	isl.ledger.RecordOffspring(a.id)
	isl.obs.AnimalBorn(child, a)
	return child, true
}
