package telemetry

import (
	"log/slog"
	"time"
)

// Phase names of the annual cycle.
const (
	PhaseRegrowFodder   = "regrow_fodder"
	PhaseSortByFitness  = "sort_by_fitness"
	PhaseFeedHerbivores = "feed_herbivores"
	PhaseFeedCarnivores = "feed_carnivores"
	PhaseProcreate      = "procreate"
	PhaseMigrate        = "migrate"
	PhaseAge            = "age"
	PhaseLoseWeight     = "lose_weight"
	PhaseMortality      = "mortality"
)

// Phases lists every phase in execution order.
var Phases = []string{
	PhaseRegrowFodder, PhaseSortByFitness, PhaseFeedHerbivores,
	PhaseFeedCarnivores, PhaseProcreate, PhaseMigrate,
	PhaseAge, PhaseLoseWeight, PhaseMortality,
}

// PerfSample holds timing data for a single year.
type PerfSample struct {
	YearDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks phase timings over a rolling window of years.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	yearStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize years.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartYear begins timing a simulated year.
func (p *PerfCollector) StartYear() {
	p.yearStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndYear finishes timing the current year and records the sample.
func (p *PerfCollector) EndYear() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		YearDuration: now.Sub(p.yearStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgYearDuration time.Duration
	MinYearDuration time.Duration
	MaxYearDuration time.Duration

	// Average duration and share of the year per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	YearsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minYear, maxYear time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.YearDuration
		if i == 0 || s.YearDuration < minYear {
			minYear = s.YearDuration
		}
		if s.YearDuration > maxYear {
			maxYear = s.YearDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	avg := total / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration, len(phaseSum))
	phasePct := make(map[string]float64, len(phaseSum))
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgYearDuration: avg,
		MinYearDuration: minYear,
		MaxYearDuration: maxYear,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		YearsPerSecond:  perSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_year_us", s.AvgYearDuration.Microseconds()),
		slog.Int64("min_year_us", s.MinYearDuration.Microseconds()),
		slog.Int64("max_year_us", s.MaxYearDuration.Microseconds()),
		slog.Float64("years_per_sec", s.YearsPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the flattened form of PerfStats written to perf.csv.
type PerfStatsCSV struct {
	Year           int     `csv:"year"`
	AvgYearUs      int64   `csv:"avg_year_us"`
	MinYearUs      int64   `csv:"min_year_us"`
	MaxYearUs      int64   `csv:"max_year_us"`
	YearsPerSecond float64 `csv:"years_per_sec"`

	RegrowFodderUs   int64 `csv:"regrow_fodder_us"`
	SortByFitnessUs  int64 `csv:"sort_by_fitness_us"`
	FeedHerbivoresUs int64 `csv:"feed_herbivores_us"`
	FeedCarnivoresUs int64 `csv:"feed_carnivores_us"`
	ProcreateUs      int64 `csv:"procreate_us"`
	MigrateUs        int64 `csv:"migrate_us"`
	AgeUs            int64 `csv:"age_us"`
	LoseWeightUs     int64 `csv:"lose_weight_us"`
	MortalityUs      int64 `csv:"mortality_us"`
}

// ToCSV flattens the stats for the window ending at year.
func (s PerfStats) ToCSV(year int) PerfStatsCSV {
	us := func(phase string) int64 { return s.PhaseAvg[phase].Microseconds() }
	return PerfStatsCSV{
		Year:           year,
		AvgYearUs:      s.AvgYearDuration.Microseconds(),
		MinYearUs:      s.MinYearDuration.Microseconds(),
		MaxYearUs:      s.MaxYearDuration.Microseconds(),
		YearsPerSecond: s.YearsPerSecond,

		RegrowFodderUs:   us(PhaseRegrowFodder),
		SortByFitnessUs:  us(PhaseSortByFitness),
		FeedHerbivoresUs: us(PhaseFeedHerbivores),
		FeedCarnivoresUs: us(PhaseFeedCarnivores),
		ProcreateUs:      us(PhaseProcreate),
		MigrateUs:        us(PhaseMigrate),
		AgeUs:            us(PhaseAge),
		LoseWeightUs:     us(PhaseLoseWeight),
		MortalityUs:      us(PhaseMortality),
	}
}
