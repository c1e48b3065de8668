package sim

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/params"
	"github.com/pthm-cable/biosim/telemetry"
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func mustConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	return cfg
}

func mustSim(t *testing.T, cfg *config.Config, opts Options) *BioSim {
	t.Helper()
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const scheduledCarnivores = `
simulation:
  seed: 3
population:
  - year: 0
    groups:
      - {loc: [2, 7], species: Herbivore, count: 50, age: 5, weight: 20}
  - year: 2
    groups:
      - {loc: [2, 7], species: Carnivore, count: 20, age: 5, weight: 20}
`

func TestInitialPopulation(t *testing.T) {
	s := mustSim(t, config.Defaults(), quietOptions())

	if s.Year() != 0 {
		t.Errorf("Year() = %d, want 0", s.Year())
	}
	if s.NumAnimals() != 150 {
		t.Errorf("NumAnimals() = %d, want 150", s.NumAnimals())
	}
	counts := s.NumAnimalsPerSpecies()
	if counts["Herbivore"] != 150 || counts["Carnivore"] != 0 {
		t.Errorf("NumAnimalsPerSpecies() = %v", counts)
	}

	var occupied []island.CellCount
	for _, c := range s.AnimalDistribution() {
		if c.Herbivores > 0 {
			occupied = append(occupied, c)
		}
	}
	if len(occupied) != 1 || occupied[0].Row != 2 || occupied[0].Col != 7 {
		t.Errorf("occupied cells = %+v, want only (2, 7)", occupied)
	}
}

func TestScheduledIntroduction(t *testing.T) {
	s := mustSim(t, mustConfig(t, scheduledCarnivores), quietOptions())

	if err := s.Simulate(2); err != nil {
		t.Fatal(err)
	}
	if n := s.NumAnimalsPerSpecies()["Carnivore"]; n != 0 {
		t.Fatalf("%d carnivores before year 2", n)
	}

	if err := s.Simulate(1); err != nil {
		t.Fatal(err)
	}
	if n := s.NumAnimalsPerSpecies()["Carnivore"]; n == 0 {
		t.Error("carnivores were not introduced in year 2")
	}
	if s.Year() != 3 {
		t.Errorf("Year() = %d, want 3", s.Year())
	}
}

func TestYearCallback(t *testing.T) {
	var years []int
	opts := quietOptions()
	opts.YearCallback = func(stats telemetry.YearStats) {
		years = append(years, stats.Year)
	}
	s := mustSim(t, config.Defaults(), opts)

	if err := s.Simulate(4); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(years, []int{1, 2, 3, 4}) {
		t.Errorf("callback years = %v, want [1 2 3 4]", years)
	}
	if s.LastStats().Year != 4 {
		t.Errorf("LastStats().Year = %d, want 4", s.LastStats().Year)
	}
	if got := s.LastStats().Herbivores; got != s.NumAnimalsPerSpecies()["Herbivore"] {
		t.Errorf("LastStats().Herbivores = %d, want %d", got, s.NumAnimalsPerSpecies()["Herbivore"])
	}
}

func TestSimulateNegativeYears(t *testing.T) {
	s := mustSim(t, config.Defaults(), quietOptions())
	if err := s.Simulate(-1); !errors.Is(err, ErrNegativeYears) {
		t.Errorf("Simulate(-1) error = %v, want ErrNegativeYears", err)
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() []island.CellCount {
		s := mustSim(t, mustConfig(t, scheduledCarnivores), quietOptions())
		if err := s.Simulate(10); err != nil {
			t.Fatal(err)
		}
		return s.AnimalDistribution()
	}
	if !slices.Equal(run(), run()) {
		t.Error("two runs with the same seed diverged")
	}
}

func TestParameterOverrides(t *testing.T) {
	s := mustSim(t, config.Defaults(), quietOptions())

	if err := s.SetAnimalParameters("Herbivore", map[string]float64{"F": 15}); err != nil {
		t.Fatal(err)
	}
	if f := s.Island().Params().Herbivore.F; f != 15 {
		t.Errorf("herbivore F = %v, want 15", f)
	}
	if err := s.SetLandscapeParameters("J", map[string]float64{"f_max": 700}); err != nil {
		t.Fatal(err)
	}
	if f := s.Island().Params().Landscape.Jungle.FMax; f != 700 {
		t.Errorf("jungle f_max = %v, want 700", f)
	}

	if err := s.SetAnimalParameters("Omnivore", nil); !errors.Is(err, island.ErrUnknownSpecies) {
		t.Errorf("unknown species error = %v", err)
	}
	if err := s.SetAnimalParameters("Carnivore", map[string]float64{"DeltaPhi": 1}); !errors.Is(err, params.ErrUnknownParameter) {
		t.Errorf("unknown key error = %v", err)
	}
	if err := s.SetLandscapeParameters("D", map[string]float64{"f_max": 1}); !errors.Is(err, params.ErrUnknownLandscape) {
		t.Errorf("unknown landscape error = %v", err)
	}
}

func TestAddPopulation(t *testing.T) {
	s := mustSim(t, config.Defaults(), quietOptions())

	extra := island.Uniform(island.Coord{Row: 4, Col: 9}, island.Carnivore, 5, 3, 25)
	if err := s.AddPopulation([]island.Placement{extra}); err != nil {
		t.Fatal(err)
	}
	if n := s.NumAnimalsPerSpecies()["Carnivore"]; n != 5 {
		t.Errorf("carnivores = %d, want 5", n)
	}

	ocean := island.Uniform(island.Coord{Row: 0, Col: 0}, island.Herbivore, 1, 3, 25)
	if err := s.AddPopulation([]island.Placement{ocean}); !errors.Is(err, island.ErrPlacement) {
		t.Errorf("placement in the ocean error = %v, want ErrPlacement", err)
	}
}

func TestOutputFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := mustConfig(t, `
simulation: {log_every: 2}
telemetry: {distribution: true, distribution_every: 2}
hall_of_fame: {enabled: true, min_age: 0}
`)
	opts := quietOptions()
	opts.OutputDir = dir
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.OutputDir() != dir {
		t.Errorf("OutputDir() = %q, want %q", s.OutputDir(), dir)
	}
	if err := s.Simulate(6); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"population.csv", "distribution.csv", "perf.csv", "bookmarks.csv", "config.yaml", "hall_of_fame.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if name != "bookmarks.csv" && info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	reloaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if reloaded.Simulation.LogEvery != 2 {
		t.Errorf("written log_every = %d, want 2", reloaded.Simulation.LogEvery)
	}
}

func TestNewRejectsBadIntroduction(t *testing.T) {
	cfg := mustConfig(t, `
population:
  - year: 0
    groups:
      - {loc: [0, 0], species: Herbivore, count: 1, age: 1, weight: 10}
`)
	if _, err := New(cfg, quietOptions()); !errors.Is(err, island.ErrPlacement) {
		t.Errorf("New() error = %v, want ErrPlacement", err)
	}
}
