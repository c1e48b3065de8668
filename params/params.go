// Package params holds the biological and landscape parameter tables the
// simulation reads. Tables are plain values: an override produces a new
// table and leaves the receiver untouched.
package params

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrUnknownParameter is returned when an override names a key the
	// target parameter set does not have.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrNegativeParameter is returned when a biologically non-negative
	// parameter is given a negative value.
	ErrNegativeParameter = errors.New("parameter must be non-negative")
	// ErrNonPositiveParameter is returned for parameters used as divisors.
	ErrNonPositiveParameter = errors.New("parameter must be positive")
	// ErrUnknownLandscape is returned for a landscape code without parameters.
	ErrUnknownLandscape = errors.New("unknown landscape")
)

// Species holds the behavioural constants shared by every animal of one species.
type Species struct {
	WBirth      float64 `yaml:"w_birth"`     // Mean newborn weight
	SigmaBirth  float64 `yaml:"sigma_birth"` // Newborn weight standard deviation
	Beta        float64 `yaml:"beta"`        // Weight gained per unit eaten
	Eta         float64 `yaml:"eta"`         // Fraction of weight lost per year
	AHalf       float64 `yaml:"a_half"`      // Age at which the age factor is 0.5
	PhiAge      float64 `yaml:"phi_age"`     // Steepness of the age factor
	WHalf       float64 `yaml:"w_half"`      // Weight at which the weight factor is 0.5
	PhiWeight   float64 `yaml:"phi_weight"`  // Steepness of the weight factor
	Mu          float64 `yaml:"mu"`          // Movement rate
	Lambda      float64 `yaml:"lambda"`      // Migration intensity
	Gamma       float64 `yaml:"gamma"`       // Birth rate modifier
	Zeta        float64 `yaml:"zeta"`        // Birth weight safety multiplier
	Xi          float64 `yaml:"xi"`          // Parent weight loss multiplier
	Omega       float64 `yaml:"omega"`       // Death rate modifier
	F           float64 `yaml:"F"`           // Appetite: max food per year
	DeltaPhiMax float64 `yaml:"DeltaPhiMax,omitempty"`
}

// Landscape holds fodder parameters for one landscape type.
type Landscape struct {
	FMax  float64 `yaml:"f_max"`
	Alpha float64 `yaml:"alpha,omitempty"`
}

// Landscapes holds the parameters of every landscape type that grows fodder.
type Landscapes struct {
	Jungle   Landscape `yaml:"jungle"`
	Savannah Landscape `yaml:"savannah"`
}

// Table is the full parameter set of one simulation.
type Table struct {
	Herbivore Species
	Carnivore Species
	Landscape Landscapes
}

// DefaultHerbivore returns the default herbivore parameters.
func DefaultHerbivore() Species {
	return Species{
		WBirth:     8.0,
		SigmaBirth: 1.5,
		Beta:       0.9,
		Eta:        0.05,
		AHalf:      40.0,
		PhiAge:     0.2,
		WHalf:      10.0,
		PhiWeight:  0.1,
		Mu:         0.25,
		Lambda:     1.0,
		Gamma:      0.2,
		Zeta:       3.5,
		Xi:         1.2,
		Omega:      0.4,
		F:          10.0,
	}
}

// DefaultCarnivore returns the default carnivore parameters.
func DefaultCarnivore() Species {
	return Species{
		WBirth:      6.0,
		SigmaBirth:  1.0,
		Beta:        0.75,
		Eta:         0.0125,
		AHalf:       60.0,
		PhiAge:      0.4,
		WHalf:       4.0,
		PhiWeight:   0.4,
		Mu:          0.4,
		Lambda:      1.0,
		Gamma:       0.8,
		Zeta:        3.5,
		Xi:          1.1,
		Omega:       0.9,
		F:           50.0,
		DeltaPhiMax: 10.0,
	}
}

// DefaultLandscapes returns the default fodder parameters.
func DefaultLandscapes() Landscapes {
	return Landscapes{
		Jungle:   Landscape{FMax: 800.0},
		Savannah: Landscape{FMax: 300.0, Alpha: 0.3},
	}
}

// Defaults returns the default parameter table.
func Defaults() Table {
	return Table{
		Herbivore: DefaultHerbivore(),
		Carnivore: DefaultCarnivore(),
		Landscape: DefaultLandscapes(),
	}
}

// constraint restricts the legal values of a parameter.
type constraint uint8

const (
	anyValue constraint = iota
	nonNegative
	positive
)

func (c constraint) check(key string, v float64) error {
	switch c {
	case nonNegative:
		if v < 0 {
			return fmt.Errorf("%s = %g: %w", key, v, ErrNegativeParameter)
		}
	case positive:
		if v <= 0 {
			return fmt.Errorf("%s = %g: %w", key, v, ErrNonPositiveParameter)
		}
	}
	return nil
}

type speciesField struct {
	key  string
	ptr  func(*Species) *float64
	rule constraint
}

var sharedFields = []speciesField{
	{"w_birth", func(s *Species) *float64 { return &s.WBirth }, nonNegative},
	{"sigma_birth", func(s *Species) *float64 { return &s.SigmaBirth }, nonNegative},
	{"beta", func(s *Species) *float64 { return &s.Beta }, anyValue},
	{"eta", func(s *Species) *float64 { return &s.Eta }, anyValue},
	{"a_half", func(s *Species) *float64 { return &s.AHalf }, anyValue},
	{"phi_age", func(s *Species) *float64 { return &s.PhiAge }, anyValue},
	{"w_half", func(s *Species) *float64 { return &s.WHalf }, anyValue},
	{"phi_weight", func(s *Species) *float64 { return &s.PhiWeight }, anyValue},
	{"mu", func(s *Species) *float64 { return &s.Mu }, anyValue},
	{"lambda", func(s *Species) *float64 { return &s.Lambda }, anyValue},
	{"gamma", func(s *Species) *float64 { return &s.Gamma }, nonNegative},
	{"zeta", func(s *Species) *float64 { return &s.Zeta }, anyValue},
	{"xi", func(s *Species) *float64 { return &s.Xi }, nonNegative},
	{"omega", func(s *Species) *float64 { return &s.Omega }, anyValue},
	{"F", func(s *Species) *float64 { return &s.F }, nonNegative},
}

var (
	herbivoreFields = sharedFields
	carnivoreFields = append(append([]speciesField(nil), sharedFields...),
		speciesField{"DeltaPhiMax", func(s *Species) *float64 { return &s.DeltaPhiMax }, positive})
)

type landscapeField struct {
	key  string
	ptr  func(*Landscape) *float64
	rule constraint
}

var (
	jungleFields = []landscapeField{
		{"f_max", func(l *Landscape) *float64 { return &l.FMax }, nonNegative},
	}
	savannahFields = []landscapeField{
		{"f_max", func(l *Landscape) *float64 { return &l.FMax }, nonNegative},
		{"alpha", func(l *Landscape) *float64 { return &l.Alpha }, anyValue},
	}
)

// HerbivoreKeys returns the override keys accepted for herbivores.
func HerbivoreKeys() []string { return speciesKeys(herbivoreFields) }

// CarnivoreKeys returns the override keys accepted for carnivores.
func CarnivoreKeys() []string { return speciesKeys(carnivoreFields) }

func speciesKeys(fields []speciesField) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// WithHerbivore returns a copy of t with the herbivore overrides applied.
func (t Table) WithHerbivore(overrides map[string]float64) (Table, error) {
	s, err := overrideSpecies(t.Herbivore, herbivoreFields, overrides)
	if err != nil {
		return t, fmt.Errorf("herbivore: %w", err)
	}
	t.Herbivore = s
	return t, nil
}

// WithCarnivore returns a copy of t with the carnivore overrides applied.
func (t Table) WithCarnivore(overrides map[string]float64) (Table, error) {
	s, err := overrideSpecies(t.Carnivore, carnivoreFields, overrides)
	if err != nil {
		return t, fmt.Errorf("carnivore: %w", err)
	}
	t.Carnivore = s
	return t, nil
}

// WithLandscape returns a copy of t with overrides applied to the landscape
// identified by code ("J" or "S", case-insensitive; full names accepted).
func (t Table) WithLandscape(code string, overrides map[string]float64) (Table, error) {
	var (
		target *Landscape
		fields []landscapeField
	)
	switch code {
	case "J", "j", "Jungle", "jungle":
		target, fields = &t.Landscape.Jungle, jungleFields
	case "S", "s", "Savannah", "savannah":
		target, fields = &t.Landscape.Savannah, savannahFields
	default:
		return t, fmt.Errorf("%q: %w", code, ErrUnknownLandscape)
	}

	next := *target
	index := make(map[string]landscapeField, len(fields))
	keys := make([]string, len(fields))
	for i, f := range fields {
		index[f.key] = f
		keys[i] = f.key
	}
	for _, key := range sortedKeys(overrides) {
		f, ok := index[key]
		if !ok {
			return t, unknownKey(code, key, keys)
		}
		v := overrides[key]
		if err := f.rule.check(key, v); err != nil {
			return t, fmt.Errorf("landscape %s: %w", code, err)
		}
		*f.ptr(&next) = v
	}
	*target = next
	return t, nil
}

// Validate checks every constrained parameter of the table.
func (t Table) Validate() error {
	if err := validateSpecies(t.Herbivore, herbivoreFields); err != nil {
		return fmt.Errorf("herbivore: %w", err)
	}
	if err := validateSpecies(t.Carnivore, carnivoreFields); err != nil {
		return fmt.Errorf("carnivore: %w", err)
	}
	for _, f := range jungleFields {
		if err := f.rule.check(f.key, *f.ptr(&t.Landscape.Jungle)); err != nil {
			return fmt.Errorf("jungle: %w", err)
		}
	}
	for _, f := range savannahFields {
		if err := f.rule.check(f.key, *f.ptr(&t.Landscape.Savannah)); err != nil {
			return fmt.Errorf("savannah: %w", err)
		}
	}
	return nil
}

func validateSpecies(s Species, fields []speciesField) error {
	for _, f := range fields {
		if err := f.rule.check(f.key, *f.ptr(&s)); err != nil {
			return err
		}
	}
	return nil
}

// overrideSpecies validates every override before applying any of them.
func overrideSpecies(s Species, fields []speciesField, overrides map[string]float64) (Species, error) {
	index := make(map[string]speciesField, len(fields))
	for _, f := range fields {
		index[f.key] = f
	}
	keys := sortedKeys(overrides)
	for _, key := range keys {
		f, ok := index[key]
		if !ok {
			return s, unknownKey("species", key, speciesKeys(fields))
		}
		if err := f.rule.check(key, overrides[key]); err != nil {
			return s, err
		}
	}
	for _, key := range keys {
		*index[key].ptr(&s) = overrides[key]
	}
	return s, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// maxSuggestDistance bounds how different a suggestion may be from the input.
const maxSuggestDistance = 3

func unknownKey(scope, key string, valid []string) error {
	if s := Suggest(key, valid); s != "" {
		return fmt.Errorf("%s has no parameter %q (did you mean %q?): %w", scope, key, s, ErrUnknownParameter)
	}
	return fmt.Errorf("%s has no parameter %q: %w", scope, key, ErrUnknownParameter)
}

// Suggest returns the entry of valid closest to key by edit distance, or ""
// when nothing is close enough.
func Suggest(key string, valid []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, v := range valid {
		if d := levenshtein.ComputeDistance(key, v); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
