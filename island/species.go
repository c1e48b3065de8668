package island

import (
	"fmt"

	"github.com/pthm-cable/biosim/params"
)

// Species identifies which of the two animal kinds an animal belongs to.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore
)

// AllSpecies lists every species in phase order.
var AllSpecies = [...]Species{Herbivore, Carnivore}

// String returns the species name used in population records.
func (s Species) String() string {
	switch s {
	case Herbivore:
		return "Herbivore"
	case Carnivore:
		return "Carnivore"
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// ParseSpecies maps a population record species name to its Species.
func ParseSpecies(name string) (Species, error) {
	switch name {
	case "Herbivore":
		return Herbivore, nil
	case "Carnivore":
		return Carnivore, nil
	}
	return Herbivore, fmt.Errorf("%q: %w", name, ErrUnknownSpecies)
}

// paramsIn returns the parameter set for s within t.
func (s Species) paramsIn(t *params.Table) *params.Species {
	if s == Carnivore {
		return &t.Carnivore
	}
	return &t.Herbivore
}

// relevantResource is the food a member of s finds on c: fodder for
// herbivores, herbivore biomass for carnivores.
func (s Species) relevantResource(c *Cell) float64 {
	if s == Carnivore {
		return c.HerbivoreBiomass()
	}
	return c.fodder
}
