package telemetry

import (
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/ledger"
)

// speciesCounters holds the per-species events of one year.
type speciesCounters struct {
	births     int
	placed     int
	deaths     int
	migrations int
	eaten      float64
	lifespans  []float64
	offspring  []float64
}

// Collector accumulates population events during a year and produces
// YearStats. It implements island.Observer.
type Collector struct {
	counters [2]speciesCounters
	kills    int

	// Optional sink for lifetime records of dead animals
	hall *HallOfFame
}

var _ island.Observer = (*Collector)(nil)

// NewCollector creates an empty collector. Dead animals are offered to
// hall when it is not nil.
func NewCollector(hall *HallOfFame) *Collector {
	return &Collector{hall: hall}
}

func (c *Collector) of(s island.Species) *speciesCounters {
	return &c.counters[s]
}

// AnimalBorn records a birth, or a placement when parent is nil.
func (c *Collector) AnimalBorn(child, parent *island.Animal) {
	if parent == nil {
		c.of(child.Species()).placed++
		return
	}
	c.of(child.Species()).births++
}

// AnimalDied records a death and the lifetime of the dead animal.
func (c *Collector) AnimalDied(a *island.Animal, rec ledger.Record, cause island.Cause) {
	sc := c.of(a.Species())
	sc.deaths++
	sc.lifespans = append(sc.lifespans, float64(a.Age()))
	sc.offspring = append(sc.offspring, float64(rec.Offspring))
	if cause == island.CausePredation {
		c.kills++
	}
	if c.hall != nil {
		c.hall.Consider(a, rec, cause)
	}
}

// AnimalMoved records a migration.
func (c *Collector) AnimalMoved(a *island.Animal, _, _ island.Coord) {
	c.of(a.Species()).migrations++
}

// AnimalAte records food intake.
func (c *Collector) AnimalAte(a *island.Animal, amount float64) {
	c.of(a.Species()).eaten += amount
}

// Placed returns the number of animals placed since the last flush.
func (c *Collector) Placed(s island.Species) int {
	return c.of(s).placed
}

// Flush produces the YearStats of the year just completed on isl and
// resets the counters for the next year.
func (c *Collector) Flush(isl *island.Island) YearStats {
	herbs := isl.Animals(island.Herbivore)
	carns := isl.Animals(island.Carnivore)
	hFit, hWeight := traits(herbs)
	cFit, cWeight := traits(carns)
	hf, cf := Summarize(hFit), Summarize(cFit)
	hw, cw := Summarize(hWeight), Summarize(cWeight)
	h, cc := c.of(island.Herbivore), c.of(island.Carnivore)
	hOff, _, _ := isl.Ledger().Totals(uint8(island.Herbivore))
	cOff, cKills, _ := isl.Ledger().Totals(uint8(island.Carnivore))

	stats := YearStats{
		Year:       isl.Year(),
		Herbivores: len(herbs),
		Carnivores: len(carns),

		HerbivoreBirths:     h.births,
		CarnivoreBirths:     cc.births,
		HerbivoreDeaths:     h.deaths,
		CarnivoreDeaths:     cc.deaths,
		Kills:               c.kills,
		HerbivoreMigrations: h.migrations,
		CarnivoreMigrations: cc.migrations,

		FodderEaten: h.eaten,
		PreyEaten:   cc.eaten,
		TotalFodder: isl.TotalFodder(),

		HerbivoreCells: isl.Occupied(island.Herbivore),
		CarnivoreCells: isl.Occupied(island.Carnivore),

		HerbivoreFitnessMean: hf.Mean,
		HerbivoreFitnessP10:  hf.P10,
		HerbivoreFitnessP50:  hf.P50,
		HerbivoreFitnessP90:  hf.P90,
		CarnivoreFitnessMean: cf.Mean,
		CarnivoreFitnessP10:  cf.P10,
		CarnivoreFitnessP50:  cf.P50,
		CarnivoreFitnessP90:  cf.P90,

		HerbivoreWeightMean: hw.Mean,
		HerbivoreWeightStd:  hw.Std,
		CarnivoreWeightMean: cw.Mean,
		CarnivoreWeightStd:  cw.Std,

		HerbivoreLifespan:  meanOf(h.lifespans),
		CarnivoreLifespan:  meanOf(cc.lifespans),
		HerbivoreOffspring: meanOf(h.offspring),
		CarnivoreOffspring: meanOf(cc.offspring),

		HerbivoreLivingOffspring: hOff,
		CarnivoreLivingOffspring: cOff,
		CarnivoreLivingKills:     cKills,
	}

	c.counters = [2]speciesCounters{}
	c.kills = 0
	return stats
}

func traits(animals []*island.Animal) (fitness, weight []float64) {
	fitness = make([]float64, len(animals))
	weight = make([]float64, len(animals))
	for i, a := range animals {
		fitness[i] = a.Fitness()
		weight[i] = a.Weight()
	}
	return fitness, weight
}
