package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/params"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Table() != params.Defaults() {
		t.Errorf("default table = %+v, want params.Defaults()", cfg.Table())
	}
	if cfg.Derived.Map != island.DefaultMap {
		t.Error("default map is not the built-in island")
	}
	if got := cfg.Derived.Years; len(got) != 2 || got[0] != 0 || got[1] != 50 {
		t.Fatalf("introduction years = %v, want [0 50]", got)
	}

	initial := cfg.Derived.Introductions[0]
	if len(initial) != 1 || len(initial[0].Pop) != 150 {
		t.Fatalf("initial population = %+v, want one record of 150", initial)
	}
	if initial[0].Loc != (island.Coord{Row: 2, Col: 7}) {
		t.Errorf("initial location = %v, want (2, 7)", initial[0].Loc)
	}
	if a := initial[0].Pop[0]; a.Species != "Herbivore" || a.Age != 5 || a.Weight != 20 {
		t.Errorf("initial animal = %+v", a)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
simulation:
  years: 30
herbivore:
  F: 12.5
landscape:
  jungle:
    f_max: 700
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Simulation.Years != 30 {
		t.Errorf("years = %d, want 30", cfg.Simulation.Years)
	}
	if cfg.Simulation.Seed != 12345 {
		t.Errorf("seed = %d, want default 12345", cfg.Simulation.Seed)
	}
	tbl := cfg.Table()
	if tbl.Herbivore.F != 12.5 {
		t.Errorf("herbivore F = %v, want 12.5", tbl.Herbivore.F)
	}
	if tbl.Herbivore.Beta != 0.9 {
		t.Errorf("herbivore beta = %v, want default 0.9", tbl.Herbivore.Beta)
	}
	if tbl.Landscape.Jungle.FMax != 700 {
		t.Errorf("jungle f_max = %v, want 700", tbl.Landscape.Jungle.FMax)
	}
	if tbl.Landscape.Savannah.FMax != 300 {
		t.Errorf("savannah f_max = %v, want default 300", tbl.Landscape.Savannah.FMax)
	}
}

func TestParsePopulationReplacesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
population:
  - year: 3
    placements:
      - loc: [1, 1]
        pop:
          - {species: Carnivore, age: 2, weight: 30}
  - year: 3
    groups:
      - {loc: [1, 2], species: Herbivore, count: 4, age: 1, weight: 10}
`))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Derived.Years; len(got) != 1 || got[0] != 3 {
		t.Fatalf("years = %v, want [3]", got)
	}
	records := cfg.Derived.Introductions[3]
	if len(records) != 2 {
		t.Fatalf("got %d records for year 3, want 2", len(records))
	}
	if records[0].Pop[0].Species != "Carnivore" {
		t.Errorf("first record = %+v, want the carnivore placement", records[0])
	}
	if len(records[1].Pop) != 4 {
		t.Errorf("group expanded to %d animals, want 4", len(records[1].Pop))
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"negative years", "simulation: {years: -1}", ErrInvalidConfig},
		{"negative intro year", "population: [{year: -2}]", ErrInvalidConfig},
		{"non-positive DeltaPhiMax", "carnivore: {DeltaPhiMax: 0}", params.ErrNonPositiveParameter},
		{"negative F", "herbivore: {F: -1}", params.ErrNegativeParameter},
		{"unknown species", "population: [{year: 0, groups: [{loc: [1, 1], species: Omnivore, count: 1, age: 0, weight: 5}]}]", island.ErrUnknownSpecies},
		{"missing weight", "population: [{year: 0, placements: [{loc: [1, 1], pop: [{species: Herbivore, age: 1}]}]}]", island.ErrInvalidAnimal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	if _, err := Parse([]byte("herbivore: {zetta: 1}")); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestMapGeneration(t *testing.T) {
	cfg, err := Parse([]byte(`
map_generation:
  enabled: true
  rows: 9
  cols: 11
`))
	if err != nil {
		t.Fatal(err)
	}
	terrain, err := island.ParseMap(cfg.Derived.Map)
	if err != nil {
		t.Fatalf("generated map invalid: %v", err)
	}
	if len(terrain) != 9 || len(terrain[0]) != 11 {
		t.Errorf("generated %dx%d map, want 9x11", len(terrain), len(terrain[0]))
	}
}

func TestLoadAndWriteYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(path, []byte("simulation: {seed: 7, years: 3}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Simulation.Seed)
	}

	out := filepath.Join(dir, "out.yaml")
	if err := cfg.WriteYAML(out); err != nil {
		t.Fatal(err)
	}
	again, err := Load(out)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if again.Table() != cfg.Table() || again.Simulation != cfg.Simulation {
		t.Error("written config does not reload to the same values")
	}
	if len(again.Derived.Introductions[0][0].Pop) != 150 {
		t.Error("written config lost the initial population")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
