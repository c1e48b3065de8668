// Package config provides configuration loading for the simulation.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/mapgen"
	"github.com/pthm-cable/biosim/params"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned for configuration values that cannot be
// used to build a simulation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation    SimulationConfig    `yaml:"simulation"`
	MapGeneration MapGenerationConfig `yaml:"map_generation"`
	Herbivore     params.Species      `yaml:"herbivore"`
	Carnivore     params.Species      `yaml:"carnivore"`
	Landscape     params.Landscapes   `yaml:"landscape"`
	Population    []Introduction      `yaml:"population"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Bookmarks     BookmarksConfig     `yaml:"bookmarks"`
	HallOfFame    HallOfFameConfig    `yaml:"hall_of_fame"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds run settings.
type SimulationConfig struct {
	Seed     uint64 `yaml:"seed"`
	Years    int    `yaml:"years"`
	Map      string `yaml:"map"`       // Island map; empty selects the built-in island
	LogEvery int    `yaml:"log_every"` // Years between progress logs (0 = never)
}

// MapGenerationConfig configures the noise map generator. When enabled it
// replaces simulation.map.
type MapGenerationConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Seed          int64   `yaml:"seed"`
	Rows          int     `yaml:"rows"`
	Cols          int     `yaml:"cols"`
	Scale         float64 `yaml:"scale"`          // Noise frequency
	Octaves       int     `yaml:"octaves"`        // Number of noise layers
	SeaLevel      float64 `yaml:"sea_level"`      // Below this: Ocean
	MountainLevel float64 `yaml:"mountain_level"` // At or above this: Mountain
	DesertLevel   float64 `yaml:"desert_level"`   // Moisture below this: Desert
	JungleLevel   float64 `yaml:"jungle_level"`   // Moisture at or above this: Jungle
}

// Introduction places animals before the given year is simulated.
// Year 0 is the initial population. Groups are shorthand for placements of
// identical animals.
type Introduction struct {
	Year       int                `yaml:"year"`
	Groups     []Group            `yaml:"groups,omitempty"`
	Placements []island.Placement `yaml:"placements,omitempty"`
}

// Group is Count identical animals placed on one cell.
type Group struct {
	Loc     island.Coord `yaml:"loc"`
	Species string       `yaml:"species"`
	Count   int          `yaml:"count"`
	Age     int          `yaml:"age"`
	Weight  float64      `yaml:"weight"`
}

func (g Group) placement() (island.Placement, error) {
	s, err := island.ParseSpecies(g.Species)
	if err != nil {
		return island.Placement{}, err
	}
	if g.Count < 0 {
		return island.Placement{}, fmt.Errorf("count = %d: %w", g.Count, ErrInvalidConfig)
	}
	return island.Uniform(g.Loc, s, g.Count, g.Age, g.Weight), nil
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	Distribution      bool `yaml:"distribution"`       // Write distribution.csv
	DistributionEvery int  `yaml:"distribution_every"` // Years between distribution rows
	PerfWindow        int  `yaml:"perf_window"`        // Years averaged in perf stats
}

// BookmarksConfig holds bookmark detection settings.
type BookmarksConfig struct {
	Enabled     bool `yaml:"enabled"`
	HistorySize int  `yaml:"history_size"`
}

// HallOfFameConfig holds the entry rules and scoring of notable lives.
type HallOfFameConfig struct {
	Enabled      bool              `yaml:"enabled"`
	Size         int               `yaml:"size"`          // Entries kept per species
	MinOffspring int               `yaml:"min_offspring"` // Admit animals with this many offspring
	MinAge       int               `yaml:"min_age"`       // or reaching this age
	Weights      HallOfFameWeights `yaml:"weights"`
}

// HallOfFameWeights weigh lifetime achievements into a score.
type HallOfFameWeights struct {
	Offspring float64 `yaml:"offspring"`
	Age       float64 `yaml:"age"`
	Kills     float64 `yaml:"kills"`
	Eaten     float64 `yaml:"eaten"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Map           string                     // Resolved island map
	Params        params.Table               // Species and landscape parameters
	Introductions map[int][]island.Placement // Placements by year
	Years         []int                      // Introduction years, ascending
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Keys unknown to the
// configuration are rejected.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := decodeStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is like Load but reads the user configuration from data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// decodeStrict unmarshals data over cfg, only overwriting fields present
// in data.
func decodeStrict(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() error {
	return c.computeDerived()
}

// computeDerived calculates values derived from loaded config and
// validates them.
func (c *Config) computeDerived() error {
	if c.Simulation.Years < 0 {
		return fmt.Errorf("simulation.years = %d: %w", c.Simulation.Years, ErrInvalidConfig)
	}
	if c.Telemetry.DistributionEvery < 1 {
		c.Telemetry.DistributionEvery = 1
	}

	c.Derived.Params = params.Table{
		Herbivore: c.Herbivore,
		Carnivore: c.Carnivore,
		Landscape: c.Landscape,
	}
	if err := c.Derived.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch {
	case c.MapGeneration.Enabled:
		m, err := mapgen.Generate(c.MapGeneration.options())
		if err != nil {
			return fmt.Errorf("map_generation: %w", err)
		}
		c.Derived.Map = m
	case c.Simulation.Map != "":
		c.Derived.Map = c.Simulation.Map
	default:
		c.Derived.Map = island.DefaultMap
	}

	c.Derived.Introductions = make(map[int][]island.Placement, len(c.Population))
	c.Derived.Years = nil
	for _, intro := range c.Population {
		if intro.Year < 0 {
			return fmt.Errorf("population year %d: %w", intro.Year, ErrInvalidConfig)
		}
		if _, seen := c.Derived.Introductions[intro.Year]; !seen {
			c.Derived.Years = append(c.Derived.Years, intro.Year)
		}
		placements := c.Derived.Introductions[intro.Year]
		for i, g := range intro.Groups {
			p, err := g.placement()
			if err != nil {
				return fmt.Errorf("population year %d group %d: %w", intro.Year, i, err)
			}
			placements = append(placements, p)
		}
		c.Derived.Introductions[intro.Year] = append(placements, intro.Placements...)
	}
	sort.Ints(c.Derived.Years)
	return nil
}

func (m MapGenerationConfig) options() mapgen.Options {
	return mapgen.Options{
		Seed:          m.Seed,
		Rows:          m.Rows,
		Cols:          m.Cols,
		Scale:         m.Scale,
		Octaves:       m.Octaves,
		SeaLevel:      m.SeaLevel,
		MountainLevel: m.MountainLevel,
		DesertLevel:   m.DesertLevel,
		JungleLevel:   m.JungleLevel,
	}
}

// Table returns the parameter table of the configuration.
func (c *Config) Table() params.Table {
	return c.Derived.Params
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
