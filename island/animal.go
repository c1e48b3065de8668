package island

import (
	"math"

	"github.com/pthm-cable/biosim/ledger"
	"github.com/pthm-cable/biosim/params"
)

// Animal is one individual. It exists only while it is a member of exactly
// one cell's population list; loc mirrors that membership and is only
// changed together with it.
type Animal struct {
	species Species
	age     int
	weight  float64
	fitness float64
	loc     Coord
	id      ledger.ID
}

// Species returns the species of the animal.
func (a *Animal) Species() Species { return a.species }

// Age returns the age in years.
func (a *Animal) Age() int { return a.age }

// Weight returns the current weight.
func (a *Animal) Weight() float64 { return a.weight }

// Fitness returns the fitness computed after the last age or weight change.
func (a *Animal) Fitness() float64 { return a.fitness }

// Loc returns the cell the animal lives on.
func (a *Animal) Loc() Coord { return a.loc }

// ID returns the animal's lifetime record id.
func (a *Animal) ID() ledger.ID { return a.id }

// Fitness computes the fitness of an animal of the given age and weight:
//
//	1/(1+exp(phi_age*(age-a_half))) * 1/(1+exp(-phi_weight*(weight-w_half)))
//
// It is 0 for any weight <= 0.
func Fitness(p *params.Species, age int, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	ageFactor := logistic(p.PhiAge * (float64(age) - p.AHalf))
	weightFactor := logistic(-p.PhiWeight * (weight - p.WHalf))
	return ageFactor * weightFactor
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(x))
}

// RecomputeFitness refreshes the cached fitness from age and weight.
func (a *Animal) RecomputeFitness(p *params.Species) {
	a.fitness = Fitness(p, a.age, a.weight)
}

// GrowOlder advances the animal by one year.
func (a *Animal) GrowOlder(isl *Island) {
	a.age++
	a.RecomputeFitness(isl.speciesParams(a.species))
}

// LoseWeight applies the annual metabolic loss weight -= eta*weight.
func (a *Animal) LoseWeight(isl *Island) {
	p := isl.speciesParams(a.species)
	a.weight -= p.Eta * a.weight
	a.RecomputeFitness(p)
}

// DeathProbability returns the probability that the animal dies this year.
func (a *Animal) DeathProbability(isl *Island) float64 {
	if a.fitness == 0 {
		return 1
	}
	return isl.speciesParams(a.species).Omega * (1 - a.fitness)
}

// Dies decides whether the animal dies this year. An animal with zero
// fitness always dies without consuming a random draw.
func (a *Animal) Dies(isl *Island) bool {
	if a.fitness == 0 {
		return true
	}
	return isl.rng.Float64() < a.DeathProbability(isl)
}

// Mortality decides whether the animal dies this year and, if it does,
// takes it off the island. It reports whether the animal died.
func (a *Animal) Mortality(isl *Island) bool {
	if !a.Dies(isl) {
		return false
	}
	isl.remove(a, CauseNatural)
	return true
}
