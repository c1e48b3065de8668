package island

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestMigrationToOnlyHabitableNeighbor(t *testing.T) {
	isl := newTestIsland(t, `
		OOOO
		OJJO
		OOOO`, alwaysRNG())
	from, to := Coord{1, 1}, Coord{1, 2}
	a := mustAdd(t, isl, Herbivore, from, 5, 20)

	if !a.WillMove(isl) {
		t.Fatal("WillMove() = false with a zero draw")
	}
	dest, ok := a.MigrationDestination(isl)
	if !ok || dest != to {
		t.Fatalf("MigrationDestination() = %v, %v; want %v, true", dest, ok, to)
	}

	if !a.Migrate(isl) {
		t.Fatal("Migrate() = false")
	}
	if a.Loc() != to {
		t.Errorf("Loc() = %v, want %v", a.Loc(), to)
	}
	if len(isl.Herbivores(from)) != 0 || len(isl.Herbivores(to)) != 1 {
		t.Errorf("populations after move: from %d, to %d", len(isl.Herbivores(from)), len(isl.Herbivores(to)))
	}
	if rec := isl.Ledger().Get(a.ID()); rec == nil || rec.Migrations != 1 {
		t.Errorf("ledger record = %+v, want 1 migration", rec)
	}
}

func TestMigrationWithoutHabitableNeighbor(t *testing.T) {
	isl := newTestIsland(t, "OOO\nOJO\nOOO", alwaysRNG())
	a := mustAdd(t, isl, Carnivore, Coord{1, 1}, 5, 20)

	if _, ok := a.MigrationDestination(isl); ok {
		t.Error("MigrationDestination() found a destination on an enclosed cell")
	}
	if a.Migrate(isl) {
		t.Error("Migrate() = true on an enclosed cell")
	}
	if a.Loc() != (Coord{1, 1}) {
		t.Errorf("Loc() = %v, want (1, 1)", a.Loc())
	}
}

func TestMigrationNeverEntersOceanOrMountain(t *testing.T) {
	// (2,1) borders Jungle to the north, Mountain to the east and Ocean
	// on the other two sides.
	for seed := uint64(0); seed < 200; seed++ {
		isl := newTestIsland(t, smallMap, rand.New(rand.NewPCG(seed, 1)))
		from := Coord{2, 1}
		a := mustAdd(t, isl, Herbivore, from, 5, 20)

		if !a.Migrate(isl) {
			continue
		}
		if a.Loc() != (Coord{1, 1}) {
			t.Fatalf("seed %d: migrated to %v", seed, a.Loc())
		}
		holders := 0
		for _, loc := range isl.Locations() {
			for _, h := range isl.Herbivores(loc) {
				if h == a {
					holders++
					if loc != a.Loc() {
						t.Fatalf("seed %d: animal listed at %v but located at %v", seed, loc, a.Loc())
					}
				}
			}
		}
		if holders != 1 {
			t.Fatalf("seed %d: animal listed in %d cells", seed, holders)
		}
	}
}

func TestPropensities(t *testing.T) {
	isl := newTestIsland(t, smallMap, nil)
	a := mustAdd(t, isl, Herbivore, Coord{1, 2}, 5, 20)

	// north Ocean, south Mountain, west Jungle (800 fodder), east Desert
	got := a.Propensities(isl)
	want := [4]float64{0, 0, math.Exp(800.0 / 10.0), 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9*math.Max(1, want[i]) {
			t.Errorf("propensity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCarnivorePropensityUsesBiomass(t *testing.T) {
	isl := newTestIsland(t, smallMap, nil)
	mustAdd(t, isl, Herbivore, Coord{1, 1}, 5, 30)
	mustAdd(t, isl, Herbivore, Coord{1, 1}, 5, 20)
	mustAdd(t, isl, Carnivore, Coord{1, 1}, 5, 20)
	c := mustAdd(t, isl, Carnivore, Coord{1, 2}, 5, 20)

	// west: biomass 50 / ((1 carnivore + 1) * F 50)
	got := c.Propensities(isl)
	if want := math.Exp(0.5); math.Abs(got[2]-want) > 1e-12 {
		t.Errorf("west propensity = %v, want %v", got[2], want)
	}
	if got[3] != 1 {
		t.Errorf("east propensity = %v, want 1", got[3])
	}
}

func TestZeroAppetiteMeansNoAbundance(t *testing.T) {
	isl := newTestIsland(t, smallMap, nil)
	if err := isl.SetSpeciesParameters(Herbivore, map[string]float64{"F": 0}); err != nil {
		t.Fatal(err)
	}
	a := mustAdd(t, isl, Herbivore, Coord{1, 2}, 5, 20)
	got := a.Propensities(isl)
	if got[2] != 1 || got[3] != 1 {
		t.Errorf("propensities = %v, want 1 for each habitable neighbour", got)
	}
}

func TestWillMoveHighDraw(t *testing.T) {
	isl := newTestIsland(t, smallMap, neverRNG())
	a := mustAdd(t, isl, Herbivore, Coord{1, 1}, 5, 20)
	if a.WillMove(isl) {
		t.Error("WillMove() = true with a draw near 1")
	}
}
