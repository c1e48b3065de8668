package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	values := pv.DefaultVector()
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "herb_F":
			values[i] = 12
		case "carn_delta_phi_max":
			values[i] = 100 // clamped to 20
		case "savannah_alpha":
			values[i] = 0.5
		}
	}
	if err := pv.ApplyToConfig(cfg, values); err != nil {
		t.Fatal(err)
	}

	tbl := cfg.Table()
	if tbl.Herbivore.F != 12 {
		t.Errorf("herbivore F = %v, want 12", tbl.Herbivore.F)
	}
	if tbl.Carnivore.DeltaPhiMax != 20 {
		t.Errorf("DeltaPhiMax = %v, want clamped 20", tbl.Carnivore.DeltaPhiMax)
	}
	if tbl.Landscape.Savannah.Alpha != 0.5 {
		t.Errorf("savannah alpha = %v, want 0.5", tbl.Landscape.Savannah.Alpha)
	}
	if tbl.Herbivore.WBirth != 8 {
		t.Errorf("locked w_birth changed to %v", tbl.Herbivore.WBirth)
	}
}

func TestComputeQuality(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 10, []uint64{1}, config.Defaults(), 1)

	if q := fe.computeQuality(nil); q != 0 {
		t.Errorf("quality of no years = %v, want 0", q)
	}

	steady := make([]telemetry.YearStats, 30)
	for i := range steady {
		steady[i] = telemetry.YearStats{Year: i + 1, Herbivores: 100, Carnivores: 20, Kills: 30}
	}
	if q := fe.computeQuality(steady); math.Abs(q-1) > 1e-9 {
		t.Errorf("quality of an ideal steady state = %v, want 1", q)
	}

	collapsed := make([]telemetry.YearStats, 30)
	for i := range collapsed {
		collapsed[i] = telemetry.YearStats{Year: i + 1, Herbivores: 100}
	}
	if q := fe.computeQuality(collapsed); q != 0 {
		t.Errorf("quality without carnivores = %v, want 0", q)
	}
}

func TestEvaluateShortRun(t *testing.T) {
	base, err := config.Parse([]byte(`
population:
  - year: 0
    groups:
      - {loc: [2, 7], species: Herbivore, count: 50, age: 5, weight: 20}
      - {loc: [2, 7], species: Carnivore, count: 5, age: 5, weight: 20}
`))
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 5, []uint64{1, 2}, base, 2)

	fitness := fe.Evaluate(pv.DefaultVector())
	if err := fe.LastErr(); err != nil {
		t.Fatal(err)
	}
	if fitness > 0 || fitness < -5*1.2 {
		t.Errorf("fitness = %v, want in [-6, 0]", fitness)
	}
}
