package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/sim"
	"github.com/pthm-cable/biosim/telemetry"
)

// FitnessEvaluator runs simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxYears   int
	seeds      []uint64
	baseConfig *config.Config
	sem        *semaphore.Weighted

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
	lastErr        error
}

// NewFitnessEvaluator creates a new evaluator running at most concurrency
// simulations at once.
func NewFitnessEvaluator(params *ParamVector, maxYears int, seeds []uint64, baseCfg *config.Config, concurrency int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxYears:    maxYears,
		seeds:       seeds,
		baseConfig:  baseCfg,
		sem:         semaphore.NewWeighted(int64(max(concurrency, 1))),
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastErr returns the error of the most recent evaluation, if any.
func (fe *FitnessEvaluator) LastErr() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastErr
}

// Minimum viable population: a species below this for extinctionGrace
// consecutive years counts as functionally extinct.
const (
	minViablePop    = 3
	extinctionGrace = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	coexistYears int                   // years both species were viable
	yearStats    []telemetry.YearStats // collected via YearCallback
	hallOfFame   *telemetry.HallOfFame
	err          error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
	err        error
}

// invalidFitness scores parameter vectors the simulation rejects.
const invalidFitness = 0

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence years: longer coexistence = lower
// (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		fe.mu.Lock()
		fe.lastErr = err
		fe.lastQuality = 0
		fe.mu.Unlock()
		return invalidFitness
	}

	ctx := context.Background()
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		if err := fe.sem.Acquire(ctx, 1); err != nil {
			results[i] = seedResult{fitness: invalidFitness, err: err}
			continue
		}
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			defer fe.sem.Release(1)
			result := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				fitness:    fe.computeFitness(result),
				quality:    fe.computeQuality(result.yearStats),
				hallOfFame: result.hallOfFame,
				err:        result.err,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	var firstErr error

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.lastErr = firstErr
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation runs one seed until functional extinction or maxYears,
// whichever comes first.
func (fe *FitnessEvaluator) runSimulation(base *config.Config, seed uint64) *runResult {
	cfg := *base
	cfg.Simulation.Seed = seed

	result := &runResult{}
	s, err := sim.New(&cfg, sim.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		YearCallback: func(stats telemetry.YearStats) {
			result.yearStats = append(result.yearStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer func() {
		result.hallOfFame = s.HallOfFame()
		s.Close()
	}()

	// Coexistence is only scored once every scheduled introduction happened.
	years := cfg.Derived.Years
	start := 0
	if len(years) > 0 {
		start = years[len(years)-1]
	}

	var herbBelow, carnBelow int
	for s.Year() < fe.maxYears {
		if err := s.Simulate(1); err != nil {
			result.err = err
			return result
		}
		if s.Year() <= start {
			continue
		}

		stats := s.LastStats()
		if stats.Herbivores == 0 || stats.Carnivores == 0 {
			return result
		}
		herbBelow = belowCount(stats.Herbivores, herbBelow)
		carnBelow = belowCount(stats.Carnivores, carnBelow)
		if herbBelow >= extinctionGrace || carnBelow >= extinctionGrace {
			return result
		}
		result.coexistYears++
	}
	return result
}

func belowCount(pop, below int) int {
	if pop < minViablePop {
		return below + 1
	}
	return 0
}

// copyConfig returns a copy of the base config the evaluation may modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Derived = config.DerivedConfig{}
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(coexistYears × (1.0 + 0.2 × quality))
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if r.err != nil {
		return invalidFitness
	}
	quality := fe.computeQuality(r.yearStats)
	return -(float64(r.coexistYears) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.25

	qualityWarmupYears = 10 // skip first N years
	qualityMinPop      = 3  // exclude years where either species < this
	targetRatio        = 5.0
	targetKillsPerCarn = 1.5
)

// computeQuality computes ecosystem quality ∈ [0, 1] from year stats.
func (fe *FitnessEvaluator) computeQuality(years []telemetry.YearStats) float64 {
	if len(years) <= qualityWarmupYears {
		return 0
	}

	var ratioSum, huntSum float64
	var count int
	herbs := make([]float64, 0, len(years))
	carns := make([]float64, 0, len(years))

	for _, y := range years[qualityWarmupYears:] {
		if y.Herbivores < qualityMinPop || y.Carnivores < qualityMinPop {
			continue
		}
		herbs = append(herbs, float64(y.Herbivores))
		carns = append(carns, float64(y.Carnivores))

		// Population ratio score
		logErr := math.Log(float64(y.Herbivores) / float64(y.Carnivores) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		// Hunting activity score
		perCarn := float64(y.Kills) / float64(y.Carnivores)
		huntSum += math.Exp(-math.Pow((perCarn-targetKillsPerCarn)/targetKillsPerCarn, 2))
		count++
	}

	if count == 0 {
		return 0
	}

	stabilityScore := 0.0
	if count >= 2 {
		cvHerb, cvCarn := cv(herbs), cv(carns)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	quality := qualityWeightRatio*ratioSum/float64(count) +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntSum/float64(count)
	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
