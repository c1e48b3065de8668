// Package main provides CMA-ES optimization for finding species and
// landscape parameters under which herbivores and carnivores coexist.
package main

import (
	"fmt"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/params"
)

// Parameter targets.
const (
	targetHerbivore = "herbivore"
	targetCarnivore = "carnivore"
	targetJungle    = "J"
	targetSavannah  = "S"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Target  string  // Species or landscape code the key belongs to
	Key     string  // Override key within the target
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Herbivore (birth weight and ageing locked)
			{Name: "herb_beta", Target: targetHerbivore, Key: "beta", Min: 0.5, Max: 1.0, Default: 0.9},
			{Name: "herb_eta", Target: targetHerbivore, Key: "eta", Min: 0.01, Max: 0.1, Default: 0.05},
			{Name: "herb_mu", Target: targetHerbivore, Key: "mu", Min: 0.05, Max: 0.5, Default: 0.25},
			{Name: "herb_gamma", Target: targetHerbivore, Key: "gamma", Min: 0.05, Max: 0.5, Default: 0.2},
			{Name: "herb_omega", Target: targetHerbivore, Key: "omega", Min: 0.1, Max: 0.8, Default: 0.4},
			{Name: "herb_F", Target: targetHerbivore, Key: "F", Min: 5, Max: 20, Default: 10},
			// Carnivore
			{Name: "carn_beta", Target: targetCarnivore, Key: "beta", Min: 0.4, Max: 1.0, Default: 0.75},
			{Name: "carn_eta", Target: targetCarnivore, Key: "eta", Min: 0.005, Max: 0.05, Default: 0.0125},
			{Name: "carn_mu", Target: targetCarnivore, Key: "mu", Min: 0.1, Max: 0.6, Default: 0.4},
			{Name: "carn_gamma", Target: targetCarnivore, Key: "gamma", Min: 0.2, Max: 1.0, Default: 0.8},
			{Name: "carn_omega", Target: targetCarnivore, Key: "omega", Min: 0.3, Max: 1.0, Default: 0.9},
			{Name: "carn_F", Target: targetCarnivore, Key: "F", Min: 20, Max: 80, Default: 50},
			{Name: "carn_delta_phi_max", Target: targetCarnivore, Key: "DeltaPhiMax", Min: 2, Max: 20, Default: 10},
			// Landscape
			{Name: "jungle_f_max", Target: targetJungle, Key: "f_max", Min: 300, Max: 1200, Default: 800},
			{Name: "savannah_f_max", Target: targetSavannah, Key: "f_max", Min: 100, Max: 600, Default: 300},
			{Name: "savannah_alpha", Target: targetSavannah, Key: "alpha", Min: 0.1, Max: 0.6, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Overrides groups clamped values by target as override maps.
func (pv *ParamVector) Overrides(values []float64) map[string]map[string]float64 {
	clamped := pv.Clamp(values)
	out := make(map[string]map[string]float64)
	for i, spec := range pv.Specs {
		if out[spec.Target] == nil {
			out[spec.Target] = make(map[string]float64)
		}
		out[spec.Target][spec.Key] = clamped[i]
	}
	return out
}

// ApplyToConfig writes parameter values into cfg and recomputes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	tbl := params.Table{Herbivore: cfg.Herbivore, Carnivore: cfg.Carnivore, Landscape: cfg.Landscape}
	var err error
	for target, overrides := range pv.Overrides(values) {
		switch target {
		case targetHerbivore:
			tbl, err = tbl.WithHerbivore(overrides)
		case targetCarnivore:
			tbl, err = tbl.WithCarnivore(overrides)
		default:
			tbl, err = tbl.WithLandscape(target, overrides)
		}
		if err != nil {
			return fmt.Errorf("applying %s parameters: %w", target, err)
		}
	}
	cfg.Herbivore, cfg.Carnivore, cfg.Landscape = tbl.Herbivore, tbl.Carnivore, tbl.Landscape
	return cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	values := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		values[i] = lookup(cfg, spec)
	}
	return values
}

func lookup(cfg *config.Config, spec ParamSpec) float64 {
	switch spec.Target {
	case targetJungle:
		return cfg.Landscape.Jungle.FMax
	case targetSavannah:
		if spec.Key == "alpha" {
			return cfg.Landscape.Savannah.Alpha
		}
		return cfg.Landscape.Savannah.FMax
	}
	s := cfg.Herbivore
	if spec.Target == targetCarnivore {
		s = cfg.Carnivore
	}
	switch spec.Key {
	case "beta":
		return s.Beta
	case "eta":
		return s.Eta
	case "mu":
		return s.Mu
	case "gamma":
		return s.Gamma
	case "omega":
		return s.Omega
	case "F":
		return s.F
	case "DeltaPhiMax":
		return s.DeltaPhiMax
	}
	return spec.Default
}
