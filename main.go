package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = use config)")
	years := flag.Int("years", -1, "Years to simulate (-1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output year stats via slog")
	generateMap := flag.Bool("generate-map", false, "Generate the island map from noise instead of using the configured map")
	debug := flag.Bool("debug", false, "Log every phase of every year")

	flag.Parse()

	runID := uuid.New()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("run", runID.String())
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *years >= 0 {
		cfg.Simulation.Years = *years
	}
	if *generateMap {
		cfg.MapGeneration.Enabled = true
		if err := cfg.Refresh(); err != nil {
			slog.Error("failed to generate map", "error", err)
			os.Exit(1)
		}
	}

	dir := *outputDir
	if dir != "" {
		dir = filepath.Join(dir, "run-"+runID.String()[:8])
	}

	s, err := sim.New(cfg, sim.Options{
		OutputDir: dir,
		LogStats:  *logStats,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"years", cfg.Simulation.Years,
		"animals", s.NumAnimals(),
		"output_dir", s.OutputDir(),
	)

	start := time.Now()
	simErr := s.Simulate(cfg.Simulation.Years)
	if err := s.Close(); err != nil {
		slog.Error("failed to write output", "error", err)
	}
	if simErr != nil {
		slog.Error("simulation failed", "year", s.Year(), "error", simErr)
		os.Exit(1)
	}

	counts := s.NumAnimalsPerSpecies()
	elapsed := time.Since(start)
	slog.Info("simulation finished",
		"years", s.Year(),
		"herbivores", humanize.Comma(int64(counts[island.Herbivore.String()])),
		"carnivores", humanize.Comma(int64(counts[island.Carnivore.String()])),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"years_per_sec", humanize.FtoaWithDigits(float64(s.Year())/max(elapsed.Seconds(), 1e-9), 1),
	)
}
