// Package ledger tracks per-animal lifetime statistics in an ECS world.
// Each living animal owns one entity; the record is read back and the
// entity removed when the animal dies.
package ledger

import "github.com/mlange-42/ark/ecs"

// ID identifies an animal's lifetime record.
type ID = ecs.Entity

// Record holds the statistics accumulated over one animal's life.
type Record struct {
	Species    uint8
	BornYear   int
	Offspring  int
	Kills      int
	Eaten      float64 // Fodder or prey weight consumed
	Migrations int
}

// Ledger owns the lifetime records of every living animal.
type Ledger struct {
	world   *ecs.World
	records *ecs.Map1[Record]
	filter  *ecs.Filter1[Record]
}

// New creates an empty ledger.
func New() *Ledger {
	world := ecs.NewWorld()
	return &Ledger{
		world:   world,
		records: ecs.NewMap1[Record](world),
		filter:  ecs.NewFilter1[Record](world),
	}
}

// Register creates a record for an animal born (or placed) in the given year.
func (l *Ledger) Register(species uint8, year int) ID {
	return l.records.NewEntity(&Record{Species: species, BornYear: year})
}

// Get returns the live record for id, or nil if the animal is not tracked.
func (l *Ledger) Get(id ID) *Record {
	if !l.world.Alive(id) {
		return nil
	}
	return l.records.Get(id)
}

// RecordOffspring increments the offspring count of id.
func (l *Ledger) RecordOffspring(id ID) {
	if r := l.Get(id); r != nil {
		r.Offspring++
	}
}

// RecordKill increments the kill count of id.
func (l *Ledger) RecordKill(id ID) {
	if r := l.Get(id); r != nil {
		r.Kills++
	}
}

// RecordEaten adds amount to the cumulative intake of id.
func (l *Ledger) RecordEaten(id ID, amount float64) {
	if r := l.Get(id); r != nil {
		r.Eaten += amount
	}
}

// RecordMigration increments the migration count of id.
func (l *Ledger) RecordMigration(id ID) {
	if r := l.Get(id); r != nil {
		r.Migrations++
	}
}

// Retire removes the record of id and returns a copy of it.
// The second return is false if id was not tracked.
func (l *Ledger) Retire(id ID) (Record, bool) {
	r := l.Get(id)
	if r == nil {
		return Record{}, false
	}
	out := *r
	l.world.RemoveEntity(id)
	return out, true
}

// Len returns the number of live records.
func (l *Ledger) Len() int {
	n := 0
	query := l.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Totals sums offspring, kills and migrations over all live records of species.
func (l *Ledger) Totals(species uint8) (offspring, kills, migrations int) {
	query := l.filter.Query()
	for query.Next() {
		r := query.Get()
		if r.Species != species {
			continue
		}
		offspring += r.Offspring
		kills += r.Kills
		migrations += r.Migrations
	}
	return offspring, kills, migrations
}
