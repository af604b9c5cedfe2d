// Command replicate runs the simulation for several seeds in parallel and
// writes one summary row per seed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/cellsoup/config"
	"github.com/pthm-cable/cellsoup/game"
)

// runSummary is one row of the replicate summary.
type runSummary struct {
	Seed        int64   `csv:"seed"`
	Ticks       int32   `csv:"ticks"`
	Cells       int     `csv:"final_cells"`
	Food        int     `csv:"final_food"`
	Births      int     `csv:"births"`
	Divisions   int     `csv:"divisions"`
	Deaths      int     `csv:"deaths"`
	FoodEaten   int     `csv:"food_eaten"`
	PeakCells   int     `csv:"peak_cells"`
	WallSeconds float64 `csv:"wall_seconds"`
}

// formatDuration formats a duration as "1h02m03s" or "2m03s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	runs := flag.Int("runs", 4, "Number of seeds to run")
	parallel := flag.Int("parallel", 2, "Maximum concurrent runs")
	maxTicks := flag.Int("max-ticks", 36000, "Ticks per run")
	baseSeed := flag.Int64("seed", 1, "Seed of the first run; later runs use seed+i")
	outputDir := flag.String("output", "", "Directory for replicates.csv (empty = stdout)")
	noPhysics := flag.Bool("no-physics", false, "Skip motion integration")

	flag.Parse()

	if *runs < 1 {
		log.Fatal("-runs must be at least 1")
	}
	if *parallel < 1 {
		*parallel = 1
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	slog.Info("starting replicates",
		"runs", *runs,
		"parallel", *parallel,
		"max_ticks", *maxTicks,
		"seed", *baseSeed,
	)

	start := time.Now()
	results := make([]*runSummary, *runs)

	var mu sync.Mutex
	done := 0

	group, groupCtx := errgroup.WithContext(context.Background())
	group.SetLimit(*parallel)

	for i := 0; i < *runs; i++ {
		seed := *baseSeed + int64(i)
		group.Go(func() error {
			res, err := runSeed(groupCtx, cfg, seed, int32(*maxTicks), !*noPhysics)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res

			mu.Lock()
			done++
			slog.Info("run complete",
				"seed", seed,
				"cells", res.Cells,
				"peak_cells", res.PeakCells,
				"progress", fmt.Sprintf("%d/%d", done, *runs),
				"elapsed", formatDuration(time.Since(start)),
			)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Fatalf("replicate failed: %v", err)
	}

	if err := writeSummary(*outputDir, results); err != nil {
		log.Fatalf("failed to write summary: %v", err)
	}

	slog.Info("replicates complete", "runs", *runs, "elapsed", formatDuration(time.Since(start)))
}

// runSeed runs a single headless simulation until maxTicks or until ctx is
// cancelled by a failing sibling run.
func runSeed(ctx context.Context, cfg *config.Config, seed int64, maxTicks int32, physics bool) (*runSummary, error) {
	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:     seed,
		Physics:  physics,
		Populate: true,
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	start := time.Now()
	for g.Tick() < maxTicks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.UpdateHeadless()
	}

	totals := g.Totals()
	return &runSummary{
		Seed:        seed,
		Ticks:       g.Tick(),
		Cells:       g.NumCells(),
		Food:        g.NumFood(),
		Births:      totals.Births,
		Divisions:   totals.Divisions,
		Deaths:      totals.Starvations,
		FoodEaten:   totals.FoodEaten,
		PeakCells:   totals.PeakCells,
		WallSeconds: time.Since(start).Seconds(),
	}, nil
}

func writeSummary(dir string, rows []*runSummary) error {
	if dir == "" {
		return gocsv.Marshal(rows, os.Stdout)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, "replicates.csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return err
	}
	slog.Info("summary written", "path", path)
	return nil
}
