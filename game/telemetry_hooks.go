package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/cellsoup/components"
	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/telemetry"
)

// Totals holds run-wide counters derived from notifications.
type Totals struct {
	Births      int // children created by division
	Divisions   int
	Starvations int
	FoodEaten   int
	PeakCells   int
}

// reportState drives the periodic population report.
type reportState struct {
	timer  components.Timer
	frames int
	steps  int
}

// bookkeep runs the variable-rate step: it drains notifications into the
// telemetry consumers, flushes finished stats windows and emits the
// periodic population report. It never mutates simulation state.
func (g *Game) bookkeep(elapsed time.Duration, steps int) {
	for _, e := range g.events.Drain() {
		g.collector.Record(e)
		g.lifetimeTracker.Observe(e)
		g.countEvent(e)
	}
	if g.numCells > g.totals.PeakCells {
		g.totals.PeakCells = g.numCells
	}

	g.flushTelemetry()

	g.report.frames++
	g.report.steps += steps
	if g.report.timer.Tick(elapsed) > 0 {
		window := g.report.timer.Period.Seconds()
		slog.Info("population",
			"tick", g.tick,
			"fps", float64(g.report.frames)/window,
			"steps_per_sec", float64(g.report.steps)/window,
			"cells", g.numCells,
			"food", g.numFood,
		)
		g.report.frames = 0
		g.report.steps = 0
	}
}

func (g *Game) countEvent(e events.Event) {
	switch e.Kind {
	case events.CellSpawned:
		if e.Cause == events.CauseDivision {
			g.totals.Births++
		}
	case events.CellDespawned:
		switch e.Cause {
		case events.CauseDivision:
			g.totals.Divisions++
		case events.CauseStarved:
			g.totals.Starvations++
		}
	case events.FoodDespawned:
		if e.Cause == events.CauseEaten {
			g.totals.FoodEaten++
		}
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWorld())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleWorld reads the window-end state for the stats collector.
func (g *Game) sampleWorld() telemetry.Sample {
	s := telemetry.Sample{
		Cells:           g.numCells,
		Food:            g.numFood,
		Energies:        make([]float64, 0, g.numCells),
		MeanLifespanSec: g.lifetimeTracker.TakeWindow(),
		MaxGeneration:   g.lifetimeTracker.MaxGeneration(),
	}

	query := g.cellFilter.Query()
	for query.Next() {
		cell, _, _ := query.Get()
		s.Energies = append(s.Energies, float64(cell.Energy))
	}

	var eyeSum float64
	var eyes int
	eyeQuery := g.eyeFilter.Query()
	for eyeQuery.Next() {
		_, eye := eyeQuery.Get()
		eyeSum += float64(eye.Activation)
		eyes++
	}
	if eyes > 0 {
		s.MeanEyeActivation = eyeSum / float64(eyes)
	}

	var locoSum float64
	var locos int
	locoQuery := g.locoFilter.Query()
	for locoQuery.Next() {
		loco := locoQuery.Get()
		locoSum += float64(loco.Activation)
		locos++
	}
	if locos > 0 {
		s.MeanLocomotorActivation = locoSum / float64(locos)
	}

	return s
}
