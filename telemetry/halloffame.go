package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/ledger"
)

// HallEntry describes the life of one notable dead animal.
type HallEntry struct {
	Species    island.Species
	BornYear   int
	Age        int
	Weight     float64
	Offspring  int
	Kills      int
	Eaten      float64
	Migrations int
	Cause      island.Cause
	Score      float64
}

// HallOfFame keeps the highest-scoring lives of each species.
type HallOfFame struct {
	halls [len(island.AllSpecies)][]HallEntry
	cfg   config.HallOfFameConfig
}

// NewHallOfFame creates an empty hall of fame.
func NewHallOfFame(cfg config.HallOfFameConfig) *HallOfFame {
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	return &HallOfFame{cfg: cfg}
}

// Consider evaluates a dead animal for entry.
// Returns true if the animal was added to the hall.
func (hof *HallOfFame) Consider(a *island.Animal, rec ledger.Record, cause island.Cause) bool {
	if !hof.meetsEntryCriteria(a, rec) {
		return false
	}
	entry := HallEntry{
		Species:    a.Species(),
		BornYear:   rec.BornYear,
		Age:        a.Age(),
		Weight:     a.Weight(),
		Offspring:  rec.Offspring,
		Kills:      rec.Kills,
		Eaten:      rec.Eaten,
		Migrations: rec.Migrations,
		Cause:      cause,
		Score:      hof.score(a, rec),
	}
	hall := &hof.halls[a.Species()]
	var added bool
	*hall, added = hof.insertEntry(*hall, entry)
	return added
}

// meetsEntryCriteria admits animals that bred enough or lived long enough.
func (hof *HallOfFame) meetsEntryCriteria(a *island.Animal, rec ledger.Record) bool {
	if rec.Offspring >= hof.cfg.MinOffspring {
		return true
	}
	return a.Age() >= hof.cfg.MinAge
}

func (hof *HallOfFame) score(a *island.Animal, rec ledger.Record) float64 {
	w := hof.cfg.Weights
	return float64(rec.Offspring)*w.Offspring +
		float64(a.Age())*w.Age +
		float64(rec.Kills)*w.Kills +
		rec.Eaten*w.Eaten
}

// insertEntry adds an entry keeping the hall sorted by descending score.
// If the hall is full, the lowest-scoring entry is dropped.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Score < entry.Score
	})
	if len(hall) >= hof.cfg.Size && idx >= hof.cfg.Size {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry
	if len(hall) > hof.cfg.Size {
		hall = hall[:hof.cfg.Size]
	}
	return hall, true
}

// Entries returns the hall of species s, best first.
func (hof *HallOfFame) Entries(s island.Species) []HallEntry {
	return hof.halls[s]
}

// TopScore returns the highest score recorded for s, or 0 if none.
func (hof *HallOfFame) TopScore(s island.Species) float64 {
	if len(hof.halls[s]) == 0 {
		return 0
	}
	return hof.halls[s][0].Score
}

type hallEntryJSON struct {
	BornYear   int     `json:"born_year"`
	Age        int     `json:"age"`
	Weight     float64 `json:"weight"`
	Offspring  int     `json:"offspring"`
	Kills      int     `json:"kills,omitempty"`
	Eaten      float64 `json:"eaten"`
	Migrations int     `json:"migrations"`
	Cause      string  `json:"cause"`
	Score      float64 `json:"score"`
}

// MarshalJSON serializes the halls keyed by species name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON, len(hof.halls))
	for _, s := range island.AllSpecies {
		hall := hof.halls[s]
		entries := make([]hallEntryJSON, len(hall))
		for i, e := range hall {
			entries[i] = hallEntryJSON{
				BornYear:   e.BornYear,
				Age:        e.Age,
				Weight:     e.Weight,
				Offspring:  e.Offspring,
				Kills:      e.Kills,
				Eaten:      e.Eaten,
				Migrations: e.Migrations,
				Cause:      e.Cause.String(),
				Score:      e.Score,
			}
		}
		export[s.String()] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}
