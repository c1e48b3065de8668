// Package cycle runs the annual cycle of an island: a fixed sequence of
// phases applied to every animal, one simulated year per call.
package cycle

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

// AnnualCycle advances an island one year at a time.
type AnnualCycle struct {
	isl    *island.Island
	perf   *telemetry.PerfCollector
	logger *slog.Logger
}

// Option configures an AnnualCycle.
type Option func(*AnnualCycle)

// WithPerf records phase timings in p.
func WithPerf(p *telemetry.PerfCollector) Option {
	return func(c *AnnualCycle) { c.perf = p }
}

// WithLogger sets the logger for phase debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *AnnualCycle) { c.logger = l }
}

// New creates a cycle driving isl.
func New(isl *island.Island, opts ...Option) *AnnualCycle {
	c := &AnnualCycle{isl: isl, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Island returns the island the cycle drives.
func (c *AnnualCycle) Island() *island.Island { return c.isl }

type phase struct {
	name string
	run  func() error
}

func (c *AnnualCycle) phases() []phase {
	noErr := func(f func()) func() error {
		return func() error { f(); return nil }
	}
	return []phase{
		{telemetry.PhaseRegrowFodder, noErr(c.RegrowFodder)},
		{telemetry.PhaseSortByFitness, noErr(c.SortByFitness)},
		{telemetry.PhaseFeedHerbivores, c.FeedHerbivores},
		{telemetry.PhaseFeedCarnivores, c.FeedCarnivores},
		{telemetry.PhaseProcreate, noErr(c.Procreate)},
		{telemetry.PhaseMigrate, noErr(c.Migrate)},
		{telemetry.PhaseAge, noErr(c.Age)},
		{telemetry.PhaseLoseWeight, noErr(c.LoseWeight)},
		{telemetry.PhaseMortality, noErr(c.Mortality)},
	}
}

// RunCycle simulates one year. On error the year is left partially
// applied and not counted.
func (c *AnnualCycle) RunCycle() error {
	if c.perf != nil {
		c.perf.StartYear()
	}
	year := c.isl.Year()
	for _, p := range c.phases() {
		if c.perf != nil {
			c.perf.StartPhase(p.name)
		}
		c.logger.Debug("phase", "year", year, "name", p.name)
		if err := p.run(); err != nil {
			return fmt.Errorf("year %d %s: %w", year, p.name, err)
		}
	}
	if c.perf != nil {
		c.perf.EndYear()
	}
	c.isl.AdvanceYear()
	return nil
}

// Run simulates years consecutive years, stopping at the first error.
func (c *AnnualCycle) Run(years int) error {
	for i := 0; i < years; i++ {
		if err := c.RunCycle(); err != nil {
			return err
		}
	}
	return nil
}

// RegrowFodder regrows fodder on every cell.
func (c *AnnualCycle) RegrowFodder() {
	c.isl.RegrowFodder()
}

// SortByFitness orders every cell's populations fittest first.
func (c *AnnualCycle) SortByFitness() {
	c.isl.SortByFitness()
}

// FeedHerbivores lets every herbivore graze, fittest first within a cell.
func (c *AnnualCycle) FeedHerbivores() error {
	for _, a := range c.isl.Animals(island.Herbivore) {
		if _, err := a.Feed(c.isl); err != nil {
			return err
		}
	}
	return nil
}

// FeedCarnivores lets every carnivore hunt, fittest first within a cell.
func (c *AnnualCycle) FeedCarnivores() error {
	for _, a := range c.isl.Animals(island.Carnivore) {
		if _, err := a.Feed(c.isl); err != nil {
			return err
		}
	}
	return nil
}

// Procreate gives every animal present at the start of the phase one
// chance to breed, herbivores first. Newborns do not breed in the year
// they are born.
func (c *AnnualCycle) Procreate() {
	for _, s := range island.AllSpecies {
		for _, a := range c.isl.Animals(s) {
			a.GiveBirth(c.isl)
		}
	}
}

// Migrate gives every animal one chance to move, herbivores first. An
// animal that moves into a cell not yet visited is not evaluated again.
func (c *AnnualCycle) Migrate() {
	for _, s := range island.AllSpecies {
		for _, a := range c.isl.Animals(s) {
			a.Migrate(c.isl)
		}
	}
}

// Age makes every animal one year older.
func (c *AnnualCycle) Age() {
	for _, s := range island.AllSpecies {
		for _, a := range c.isl.Animals(s) {
			a.GrowOlder(c.isl)
		}
	}
}

// LoseWeight applies the yearly weight loss to every animal.
func (c *AnnualCycle) LoseWeight() {
	for _, s := range island.AllSpecies {
		for _, a := range c.isl.Animals(s) {
			a.LoseWeight(c.isl)
		}
	}
}

// Mortality removes the animals that die this year.
func (c *AnnualCycle) Mortality() {
	for _, s := range island.AllSpecies {
		for _, a := range c.isl.Animals(s) {
			a.Mortality(c.isl)
		}
	}
}
