package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction        BookmarkType = "extinction"
	BookmarkHuntBreakthrough  BookmarkType = "hunt_breakthrough"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkHerbivoreCrash    BookmarkType = "herbivore_crash"
	BookmarkStableEcosystem   BookmarkType = "stable_ecosystem"
)

// Bookmark marks a notable year of the simulation.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Year        int          `csv:"year"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using logger.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	logger.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// stableYears is how many consecutive low-variance years make an
// ecosystem stable.
const stableYears = 5

// BookmarkDetector detects notable years from the stream of YearStats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []YearStats
	historySize int
	historyIdx  int
	historyFull bool

	recentCarnMin    int
	recentHerbPeak   int
	stableYearsCount int
	prev             *YearStats
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableYears {
		historySize = stableYears
	}
	return &BookmarkDetector{
		history:     make([]YearStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)
	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkHuntBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCarnivoreRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkHerbivoreCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Carnivores > 0 && (stats.Carnivores < bd.recentCarnMin || bd.recentCarnMin == 0) {
		bd.recentCarnMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.Herbivores
	}
	prev := stats
	bd.prev = &prev

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the most recent history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []YearStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	n = min(n, size)
	out := make([]YearStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats YearStats) []Bookmark {
	if bd.prev == nil {
		return nil
	}
	var out []Bookmark
	if bd.prev.Herbivores > 0 && stats.Herbivores == 0 {
		out = append(out, Bookmark{
			Type:        BookmarkExtinction,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores died out (%d the year before)", bd.prev.Herbivores),
		})
	}
	if bd.prev.Carnivores > 0 && stats.Carnivores == 0 {
		out = append(out, Bookmark{
			Type:        BookmarkExtinction,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivores died out (%d the year before)", bd.prev.Carnivores),
		})
		bd.recentCarnMin = 0
	}
	return out
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats YearStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var totalKills, totalCarn int
	for _, h := range history {
		totalKills += h.Kills
		totalCarn += h.Carnivores
	}
	if totalCarn == 0 || stats.Carnivores == 0 {
		return nil
	}

	avgRate := float64(totalKills) / float64(totalCarn)
	rate := float64(stats.Kills) / float64(stats.Carnivores)
	if avgRate > 0 && rate > avgRate*2.0 && stats.Kills >= 10 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Year:        stats.Year,
			Description: fmt.Sprintf("Kills per carnivore %.2f is %.1fx average (%.2f)", rate, rate/avgRate, avgRate),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCarnivoreRecovery(stats YearStats) *Bookmark {
	if bd.recentCarnMin == 0 || bd.recentCarnMin > 3 {
		return nil
	}

	threshold := bd.recentCarnMin * 3
	if stats.Carnivores >= threshold && stats.Carnivores >= 6 {
		oldMin := bd.recentCarnMin
		bd.recentCarnMin = stats.Carnivores
		return &Bookmark{
			Type:        BookmarkCarnivoreRecovery,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivore population recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats YearStats) *Bookmark {
	if bd.recentHerbPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Herbivores)/float64(bd.recentHerbPeak)
	if drop > 0.30 && stats.Herbivores < bd.recentHerbPeak-10 {
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.Herbivores
		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Herbivores),
		}
	}
	return nil
}

// checkStableEcosystem fires once when both species have been present with
// a coefficient of variation below 0.2 for stableYears consecutive years.
func (bd *BookmarkDetector) checkStableEcosystem(stats YearStats) *Bookmark {
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableYearsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}
	herbs := make([]float64, len(window))
	carns := make([]float64, len(window))
	for i, h := range window {
		herbs[i] = float64(h.Herbivores)
		carns[i] = float64(h.Carnivores)
	}

	if cv(herbs) < 0.2 && cv(carns) < 0.2 {
		bd.stableYearsCount++
	} else {
		bd.stableYearsCount = 0
	}

	if bd.stableYearsCount == stableYears {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d carnivores over %d+ years", stats.Herbivores, stats.Carnivores, stableYears),
		}
	}
	return nil
}

// cv returns the coefficient of variation of x, 0 for a zero mean.
func cv(x []float64) float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
