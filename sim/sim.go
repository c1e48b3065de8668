// Package sim drives a complete simulation: it builds the island from a
// configuration, applies scheduled introductions, runs the annual cycle
// and reports per-year telemetry.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/cycle"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/telemetry"
)

// ErrNegativeYears is returned when asked to simulate a negative number
// of years.
var ErrNegativeYears = errors.New("years must be non-negative")

// Options holds runtime settings that are not part of the configuration.
type Options struct {
	OutputDir    string       // CSV and JSON output (empty = no output)
	LogStats     bool         // Log year stats every simulation.log_every years
	Logger       *slog.Logger // Defaults to slog.Default()
	YearCallback func(telemetry.YearStats)
}

// BioSim is one simulation run.
type BioSim struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger

	isl       *island.Island
	cycle     *cycle.AnnualCycle
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	hall      *telemetry.HallOfFame
	output    *telemetry.OutputManager

	// Index into cfg.Derived.Years of the next introduction
	nextIntro int
	last      telemetry.YearStats
}

// New builds a simulation from cfg and places the year 0 population.
func New(cfg *config.Config, opts Options) (*BioSim, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &BioSim{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if cfg.HallOfFame.Enabled {
		s.hall = telemetry.NewHallOfFame(cfg.HallOfFame)
	}
	if cfg.Bookmarks.Enabled {
		s.bookmarks = telemetry.NewBookmarkDetector(cfg.Bookmarks.HistorySize)
	}
	s.collector = telemetry.NewCollector(s.hall)

	rng := rand.New(rand.NewPCG(cfg.Simulation.Seed, 0))
	isl, err := island.New(cfg.Derived.Map, cfg.Table(), rng, island.WithObserver(s.collector))
	if err != nil {
		return nil, fmt.Errorf("building island: %w", err)
	}
	s.isl = isl
	s.cycle = cycle.New(isl, cycle.WithPerf(s.perf), cycle.WithLogger(logger))

	if err := s.introduce(); err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir, cfg.Telemetry.Distribution)
	if err != nil {
		return nil, err
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		s.output.Close()
		return nil, err
	}
	return s, nil
}

// introduce places every scheduled introduction due at the current year.
func (s *BioSim) introduce() error {
	years := s.cfg.Derived.Years
	for s.nextIntro < len(years) && years[s.nextIntro] <= s.isl.Year() {
		year := years[s.nextIntro]
		records := s.cfg.Derived.Introductions[year]
		if err := s.isl.AddPopulation(records); err != nil {
			return fmt.Errorf("introduction for year %d: %w", year, err)
		}
		s.logger.Info("population introduced",
			"year", s.isl.Year(),
			"scheduled", year,
			"herbivores", s.collector.Placed(island.Herbivore),
			"carnivores", s.collector.Placed(island.Carnivore),
		)
		s.nextIntro++
	}
	return nil
}

// Simulate runs the given number of years. Introductions scheduled for a
// year are placed before that year is simulated.
func (s *BioSim) Simulate(years int) error {
	if years < 0 {
		return fmt.Errorf("simulate %d: %w", years, ErrNegativeYears)
	}
	for i := 0; i < years; i++ {
		if err := s.introduce(); err != nil {
			return err
		}
		if err := s.cycle.RunCycle(); err != nil {
			return err
		}
		if err := s.endYear(); err != nil {
			return err
		}
	}
	return nil
}

// endYear flushes the year's telemetry.
func (s *BioSim) endYear() error {
	stats := s.collector.Flush(s.isl)
	s.last = stats
	year := stats.Year

	if s.opts.YearCallback != nil {
		s.opts.YearCallback(stats)
	}
	if err := s.output.WriteYear(stats); err != nil {
		return err
	}
	if s.cfg.Telemetry.Distribution && year%s.cfg.Telemetry.DistributionEvery == 0 {
		if err := s.output.WriteDistribution(s.isl.Distribution()); err != nil {
			return err
		}
	}

	if every := s.cfg.Simulation.LogEvery; every > 0 && year%every == 0 {
		perf := s.perf.Stats()
		if s.opts.LogStats {
			s.logger.Info("year", "stats", stats, "perf", perf)
		}
		if err := s.output.WritePerf(perf, year); err != nil {
			return err
		}
	}

	if s.bookmarks != nil {
		for _, b := range s.bookmarks.Check(stats) {
			if s.opts.LogStats {
				b.LogBookmark(s.logger)
			}
			if err := s.output.WriteBookmark(b); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddPopulation places animals on the island immediately.
func (s *BioSim) AddPopulation(records []island.Placement) error {
	return s.isl.AddPopulation(records)
}

// SetAnimalParameters overrides parameters of the species with the given
// name ("Herbivore" or "Carnivore").
func (s *BioSim) SetAnimalParameters(species string, overrides map[string]float64) error {
	sp, err := island.ParseSpecies(species)
	if err != nil {
		return err
	}
	return s.isl.SetSpeciesParameters(sp, overrides)
}

// SetLandscapeParameters overrides parameters of a landscape ("J" or "S").
func (s *BioSim) SetLandscapeParameters(code string, overrides map[string]float64) error {
	return s.isl.SetLandscapeParameters(code, overrides)
}

// Year returns the number of years simulated so far.
func (s *BioSim) Year() int { return s.isl.Year() }

// NumAnimals returns the number of animals on the island.
func (s *BioSim) NumAnimals() int { return s.isl.NumAnimals() }

// NumAnimalsPerSpecies returns the head count of every species by name.
func (s *BioSim) NumAnimalsPerSpecies() map[string]int {
	counts := s.isl.NumAnimalsPerSpecies()
	out := make(map[string]int, len(counts))
	for sp, n := range counts {
		out[sp.String()] = n
	}
	return out
}

// AnimalDistribution returns per-cell head counts of every habitable cell.
func (s *BioSim) AnimalDistribution() []island.CellCount {
	return s.isl.Distribution()
}

// Island returns the simulated island.
func (s *BioSim) Island() *island.Island { return s.isl }

// LastStats returns the stats of the most recently simulated year.
func (s *BioSim) LastStats() telemetry.YearStats { return s.last }

// HallOfFame returns the hall of fame, or nil when disabled.
func (s *BioSim) HallOfFame() *telemetry.HallOfFame { return s.hall }

// Perf returns the phase timing statistics over the configured window.
func (s *BioSim) Perf() telemetry.PerfStats { return s.perf.Stats() }

// OutputDir returns the output directory, or "" when output is disabled.
func (s *BioSim) OutputDir() string { return s.output.Dir() }

// Close writes the hall of fame and closes the output files.
func (s *BioSim) Close() error {
	return errors.Join(
		s.output.WriteHallOfFame(s.hall),
		s.output.Close(),
	)
}
