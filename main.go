package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/cellsoup/config"
	"github.com/pthm-cable/cellsoup/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")
	noPhysics := flag.Bool("no-physics", false, "Skip motion integration; cells stay where they spawn")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *stepsPerUpdate > 0 {
		cfg.Simulation.StepsPerUpdate = *stepsPerUpdate
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		Physics:        !*noPhysics,
		Populate:       true,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	}

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", *statsWindow,
		"max_ticks", *maxTicks,
		"steps_per_update", cfg.Simulation.StepsPerUpdate,
		"physics", !*noPhysics,
	)

	for {
		g.UpdateHeadless()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			totals := g.Totals()
			slog.Info("max ticks reached",
				"tick", g.Tick(),
				"cells", g.NumCells(),
				"food", g.NumFood(),
				"births", totals.Births,
				"starvations", totals.Starvations,
				"peak_cells", totals.PeakCells,
			)
			return
		}
	}
}
