package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds the population summary of one simulated year.
type YearStats struct {
	Year int `csv:"year"`

	// Population at year end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`

	// Events during the year
	HerbivoreBirths     int `csv:"herbivore_births"`
	CarnivoreBirths     int `csv:"carnivore_births"`
	HerbivoreDeaths     int `csv:"herbivore_deaths"`
	CarnivoreDeaths     int `csv:"carnivore_deaths"`
	Kills               int `csv:"kills"`
	HerbivoreMigrations int `csv:"herbivore_migrations"`
	CarnivoreMigrations int `csv:"carnivore_migrations"`

	// Food
	FodderEaten float64 `csv:"fodder_eaten"`
	PreyEaten   float64 `csv:"prey_eaten"`
	TotalFodder float64 `csv:"total_fodder"`

	// Range
	HerbivoreCells int `csv:"herbivore_cells"`
	CarnivoreCells int `csv:"carnivore_cells"`

	// Fitness distribution (sampled at year end)
	HerbivoreFitnessMean float64 `csv:"herbivore_fitness_mean"`
	HerbivoreFitnessP10  float64 `csv:"herbivore_fitness_p10"`
	HerbivoreFitnessP50  float64 `csv:"herbivore_fitness_p50"`
	HerbivoreFitnessP90  float64 `csv:"herbivore_fitness_p90"`
	CarnivoreFitnessMean float64 `csv:"carnivore_fitness_mean"`
	CarnivoreFitnessP10  float64 `csv:"carnivore_fitness_p10"`
	CarnivoreFitnessP50  float64 `csv:"carnivore_fitness_p50"`
	CarnivoreFitnessP90  float64 `csv:"carnivore_fitness_p90"`

	// Weight distribution
	HerbivoreWeightMean float64 `csv:"herbivore_weight_mean"`
	HerbivoreWeightStd  float64 `csv:"herbivore_weight_std"`
	CarnivoreWeightMean float64 `csv:"carnivore_weight_mean"`
	CarnivoreWeightStd  float64 `csv:"carnivore_weight_std"`

	// Lifetimes of the animals that died this year
	HerbivoreLifespan  float64 `csv:"herbivore_lifespan"`
	CarnivoreLifespan  float64 `csv:"carnivore_lifespan"`
	HerbivoreOffspring float64 `csv:"herbivore_offspring"`
	CarnivoreOffspring float64 `csv:"carnivore_offspring"`

	// Lifetime achievements summed over the animals still alive
	HerbivoreLivingOffspring int `csv:"herbivore_living_offspring"`
	CarnivoreLivingOffspring int `csv:"carnivore_living_offspring"`
	CarnivoreLivingKills     int `csv:"carnivore_living_kills"`
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation between closest ranks. p should be in [0, 1]. Returns 0 if
// the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes the mean, population standard deviation and
// percentiles of values. The zero Distribution is returned for no values.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// meanOf returns the mean of values, or 0 for none.
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("herbivore_migrations", s.HerbivoreMigrations),
		slog.Int("carnivore_migrations", s.CarnivoreMigrations),
		slog.Float64("fodder_eaten", s.FodderEaten),
		slog.Float64("prey_eaten", s.PreyEaten),
		slog.Float64("total_fodder", s.TotalFodder),
		slog.Int("herbivore_cells", s.HerbivoreCells),
		slog.Int("carnivore_cells", s.CarnivoreCells),
		slog.Float64("herbivore_fitness_p50", s.HerbivoreFitnessP50),
		slog.Float64("carnivore_fitness_p50", s.CarnivoreFitnessP50),
		slog.Float64("herbivore_weight_mean", s.HerbivoreWeightMean),
		slog.Float64("carnivore_weight_mean", s.CarnivoreWeightMean),
		slog.Float64("herbivore_lifespan", s.HerbivoreLifespan),
		slog.Float64("carnivore_lifespan", s.CarnivoreLifespan),
		slog.Int("carnivore_living_kills", s.CarnivoreLivingKills),
	)
}
