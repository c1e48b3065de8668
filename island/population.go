package island

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Placement is one population record: a list of animals to put on a cell.
type Placement struct {
	Loc Coord        `yaml:"loc"`
	Pop []AnimalSpec `yaml:"pop"`
}

// AnimalSpec describes one animal of a population record.
type AnimalSpec struct {
	Species string  `yaml:"species"`
	Age     int     `yaml:"age"`
	Weight  float64 `yaml:"weight"`
}

// UnmarshalYAML decodes an animal record and rejects records missing any
// of species, age or weight.
func (s *AnimalSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Species *string  `yaml:"species"`
		Age     *int     `yaml:"age"`
		Weight  *float64 `yaml:"weight"`
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	switch {
	case raw.Species == nil:
		return fmt.Errorf("line %d: missing species: %w", value.Line, ErrInvalidAnimal)
	case raw.Age == nil:
		return fmt.Errorf("line %d: missing age: %w", value.Line, ErrInvalidAnimal)
	case raw.Weight == nil:
		return fmt.Errorf("line %d: missing weight: %w", value.Line, ErrInvalidAnimal)
	}
	*s = AnimalSpec{Species: *raw.Species, Age: *raw.Age, Weight: *raw.Weight}
	return nil
}

type resolvedPlacement struct {
	loc     Coord
	species Species
	spec    AnimalSpec
}

// AddPopulation places every animal of every record. All records are
// validated before any animal is placed; on error the island is unchanged.
func (isl *Island) AddPopulation(records []Placement) error {
	var resolved []resolvedPlacement
	for i, rec := range records {
		if err := isl.checkHabitable(rec.Loc); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		for j, spec := range rec.Pop {
			s, err := ParseSpecies(spec.Species)
			if err != nil {
				return fmt.Errorf("record %d animal %d: %w", i, j, err)
			}
			if err := checkAnimal(s, spec.Age, spec.Weight); err != nil {
				return fmt.Errorf("record %d animal %d: %w", i, j, err)
			}
			resolved = append(resolved, resolvedPlacement{loc: rec.Loc, species: s, spec: spec})
		}
	}

	for _, r := range resolved {
		a := isl.spawn(r.species, r.loc, r.spec.Age, r.spec.Weight)
		isl.obs.AnimalBorn(a, nil)
	}
	return nil
}

// Uniform returns a record of n identical animals at loc.
func Uniform(loc Coord, species Species, n, age int, weight float64) Placement {
	pop := make([]AnimalSpec, n)
	for i := range pop {
		pop[i] = AnimalSpec{Species: species.String(), Age: age, Weight: weight}
	}
	return Placement{Loc: loc, Pop: pop}
}
