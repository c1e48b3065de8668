package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/biosim/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxYears := flag.Int("max-years", 500, "Maximum simulated years per run (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	concurrency := flag.Int("concurrency", runtime.NumCPU(), "Simulations run at once")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pv := NewParamVector()
	evalSeeds := make([]uint64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(pv, *maxYears, evalSeeds, baseCfg, *concurrency)

	evalLog, err := newEvalLog(filepath.Join(*outputDir, "optimize_log.csv"), pv)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer evalLog.Close()

	best := &bestRun{fitness: 1e9}
	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := pv.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			quality := evaluator.LastQuality()
			clamped := pv.Clamp(raw)
			best.observe(fitness, clamped)
			evalLog.Write(best.evals, fitness, quality, clamped)

			if err := evaluator.LastErr(); err != nil {
				fmt.Printf("Eval %d/%d: rejected: %v\n", best.evals, *maxEvals, err)
			}
			elapsed := time.Since(start)
			eta := time.Duration(*maxEvals-best.evals) * (elapsed / time.Duration(best.evals))
			// fitness = -(coexistYears * (1 + 0.2*quality))
			coexist := -fitness / (1.0 + 0.2*quality)
			fmt.Printf("Eval %d/%d: coexisted=%.0fy quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
				best.evals, *maxEvals, coexist, quality, best.fitness,
				elapsed.Round(time.Second), eta.Round(time.Second))
			return fitness
		},
	}

	dim := pv.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	// Evaluations stay sequential; seeds inside one evaluation run concurrently.
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, years per run: %s, concurrency: %d\n",
		*seeds, humanize.Comma(int64(*maxYears)), *concurrency)

	initX := pv.Normalize(pv.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if best.params == nil && result != nil {
		best.params = pv.Clamp(pv.Denormalize(result.X))
	}
	if best.params == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", best.evals, time.Since(start).Round(time.Second))
	fmt.Printf("Best fitness: %.0f\n", best.fitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range pv.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, best.params[i])
	}

	if err := writeResults(*outputDir, *configPath, pv, best.params, evaluator); err != nil {
		log.Fatal(err)
	}
}

// bestRun tracks the evaluation count and the best vector seen so far.
type bestRun struct {
	evals   int
	fitness float64
	params  []float64
}

func (b *bestRun) observe(fitness float64, params []float64) {
	b.evals++
	if fitness < b.fitness {
		b.fitness = fitness
		b.params = params
	}
}

// evalLog appends one CSV row per evaluation. Columns after fitness and
// quality follow the parameter vector, so the header is built at runtime.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, pv *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range pv.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Write logs one evaluation and flushes so partial runs keep their rows.
func (l *evalLog) Write(eval int, fitness, quality float64, values []float64) {
	row := []string{strconv.Itoa(eval), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.4f", quality)}
	for _, v := range values {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	if err := l.w.Write(row); err != nil {
		log.Printf("failed to log evaluation %d: %v", eval, err)
	}
	l.w.Flush()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// writeResults stores the best configuration and, when one was recorded,
// the hall of fame of the best evaluation.
func writeResults(dir, configPath string, pv *ParamVector, best []float64, evaluator *FitnessEvaluator) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	if err := pv.ApplyToConfig(cfg, best); err != nil {
		return fmt.Errorf("applying best parameters: %w", err)
	}

	configOut := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(configOut); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", configOut)

	hof := evaluator.BestHallOfFame()
	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	hofOut := filepath.Join(dir, "hall_of_fame.json")
	if err := os.WriteFile(hofOut, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	fmt.Printf("Hall of fame saved to: %s\n", hofOut)
	return nil
}
