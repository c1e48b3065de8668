package island

import "github.com/pthm-cable/biosim/ledger"

// Cause identifies why an animal left the island.
type Cause uint8

const (
	CauseNatural   Cause = iota // Died in the mortality phase
	CausePredation              // Killed by a carnivore
	CauseRemoved                // Removed by the caller
)

func (c Cause) String() string {
	switch c {
	case CauseNatural:
		return "natural"
	case CausePredation:
		return "predation"
	case CauseRemoved:
		return "removed"
	}
	return "unknown"
}

// Observer receives population events as they happen.
type Observer interface {
	// AnimalBorn is called when a newborn joins the island. parent is nil
	// for animals placed from population records.
	AnimalBorn(child, parent *Animal)
	// AnimalDied is called after a has been removed from its cell.
	AnimalDied(a *Animal, rec ledger.Record, cause Cause)
	// AnimalMoved is called after a migrated from one cell to another.
	AnimalMoved(a *Animal, from, to Coord)
	// AnimalAte is called after a fed, with the amount it ate.
	AnimalAte(a *Animal, amount float64)
}

type noopObserver struct{}

func (noopObserver) AnimalBorn(*Animal, *Animal) {}
func (noopObserver) AnimalDied(*Animal, ledger.Record, Cause) {}
func (noopObserver) AnimalMoved(*Animal, Coord, Coord) {}
func (noopObserver) AnimalAte(*Animal, float64) {}
