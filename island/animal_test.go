package island

import (
	"math"
	"testing"

	"github.com/pthm-cable/biosim/params"
)

func TestFitnessZeroForNonPositiveWeight(t *testing.T) {
	p := params.DefaultHerbivore()
	for _, age := range []int{0, 1, 40, 200} {
		for _, w := range []float64{0, -0.5, -100} {
			if got := Fitness(&p, age, w); got != 0 {
				t.Errorf("Fitness(age=%d, weight=%v) = %v, want 0", age, w, got)
			}
		}
	}
}

func TestFitnessValues(t *testing.T) {
	h := params.DefaultHerbivore()
	c := params.DefaultCarnivore()
	tests := []struct {
		name   string
		p      *params.Species
		age    int
		weight float64
		want   float64
	}{
		{"herbivore at both halves", &h, 40, 10, 0.25},
		{"carnivore at both halves", &c, 60, 4, 0.25},
		{"young heavy herbivore", &h, 5, 20, 1 / (1 + math.Exp(-7)) * 1 / (1 + math.Exp(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fitness(tt.p, tt.age, tt.weight)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Fitness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFitnessMonotonic(t *testing.T) {
	for _, p := range []params.Species{params.DefaultHerbivore(), params.DefaultCarnivore()} {
		for age := 0; age <= 100; age += 10 {
			prev := 0.0
			for w := 0.5; w <= 100; w += 0.5 {
				f := Fitness(&p, age, w)
				if f < prev {
					t.Fatalf("fitness decreased in weight at age %d, weight %v: %v < %v", age, w, f, prev)
				}
				if f < 0 || f > 1 {
					t.Fatalf("fitness %v outside [0,1]", f)
				}
				prev = f
			}
		}

		for _, w := range []float64{1, 10, 50} {
			prev := math.Inf(1)
			for age := int(p.AHalf); age <= int(p.AHalf)+100; age++ {
				f := Fitness(&p, age, w)
				if f > prev {
					t.Fatalf("fitness increased in age at weight %v, age %d", w, age)
				}
				prev = f
			}
		}
	}
}

func TestRecomputeFitnessIdempotent(t *testing.T) {
	isl := newTestIsland(t, smallMap, nil)
	a := mustAdd(t, isl, Carnivore, Coord{1, 1}, 7, 13.3)
	p := isl.speciesParams(Carnivore)

	a.RecomputeFitness(p)
	first := a.Fitness()
	a.RecomputeFitness(p)
	if a.Fitness() != first {
		t.Errorf("second recompute gave %v, first %v", a.Fitness(), first)
	}
}

func TestZeroWeightAnimalAlwaysDies(t *testing.T) {
	for name, rng := range map[string]func() *Island{
		"always": func() *Island { return newTestIsland(t, smallMap, alwaysRNG()) },
		"never":  func() *Island { return newTestIsland(t, smallMap, neverRNG()) },
	} {
		t.Run(name, func(t *testing.T) {
			isl := rng()
			a := mustAdd(t, isl, Herbivore, Coord{1, 1}, 3, 0)
			if a.Fitness() != 0 {
				t.Fatalf("fitness = %v, want 0", a.Fitness())
			}
			if p := a.DeathProbability(isl); p != 1 {
				t.Errorf("DeathProbability = %v, want 1", p)
			}
			if !a.Dies(isl) {
				t.Error("Dies() = false for zero weight")
			}
		})
	}
}

func TestDies(t *testing.T) {
	isl := newTestIsland(t, smallMap, alwaysRNG())
	a := mustAdd(t, isl, Herbivore, Coord{1, 1}, 5, 20)
	want := 0.4 * (1 - a.Fitness())
	if got := a.DeathProbability(isl); math.Abs(got-want) > 1e-12 {
		t.Errorf("DeathProbability = %v, want %v", got, want)
	}
	if !a.Dies(isl) {
		t.Error("Dies() = false with a zero draw")
	}

	isl = newTestIsland(t, smallMap, neverRNG())
	a = mustAdd(t, isl, Herbivore, Coord{1, 1}, 5, 20)
	if a.Dies(isl) {
		t.Error("Dies() = true with a draw near 1")
	}
}

func TestGrowOlderAndLoseWeight(t *testing.T) {
	isl := newTestIsland(t, smallMap, nil)
	a := mustAdd(t, isl, Herbivore, Coord{1, 1}, 40, 10)

	a.GrowOlder(isl)
	if a.Age() != 41 {
		t.Errorf("Age() = %d, want 41", a.Age())
	}
	if want := Fitness(isl.speciesParams(Herbivore), 41, 10); a.Fitness() != want {
		t.Errorf("fitness after aging = %v, want %v", a.Fitness(), want)
	}

	a.LoseWeight(isl)
	if math.Abs(a.Weight()-9.5) > 1e-12 {
		t.Errorf("Weight() = %v, want 9.5", a.Weight())
	}
	if want := Fitness(isl.speciesParams(Herbivore), 41, 9.5); a.Fitness() != want {
		t.Errorf("fitness after weight loss = %v, want %v", a.Fitness(), want)
	}
}
