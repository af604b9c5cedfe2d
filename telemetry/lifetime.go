package telemetry

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/events"
)

// LifetimeStats tracks per-cell statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int32
	Generation int // 0 for seeded cells, parent+1 for children
	FoodEaten  int
	Children   int
}

// LifetimeTracker follows cells from spawn to despawn using registry
// notifications.
type LifetimeTracker struct {
	stats map[ecs.Entity]*LifetimeStats
	dt    float32

	// Lifespans of cells removed since the last TakeWindow
	lifespanSum   float64
	lifespanCount int
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker(dt float32) *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[ecs.Entity]*LifetimeStats),
		dt:    dt,
	}
}

// Observe applies one notification.
func (lt *LifetimeTracker) Observe(e events.Event) {
	switch e.Kind {
	case events.CellSpawned:
		s := &LifetimeStats{BirthTick: e.Tick}
		if parent, ok := lt.stats[e.Parent]; ok && e.Cause == events.CauseDivision {
			s.Generation = parent.Generation + 1
			parent.Children++
		}
		lt.stats[e.Entity] = s

	case events.CellDespawned:
		s, ok := lt.stats[e.Entity]
		if !ok {
			return
		}
		delete(lt.stats, e.Entity)
		lt.lifespanSum += float64(e.Tick-s.BirthTick) * float64(lt.dt)
		lt.lifespanCount++

	case events.FoodDespawned:
		if e.Cause != events.CauseEaten {
			return
		}
		if s, ok := lt.stats[e.Parent]; ok {
			s.FoodEaten++
		}
	}
}

// Get returns the lifetime stats for a cell, or nil if not tracked.
func (lt *LifetimeTracker) Get(e ecs.Entity) *LifetimeStats {
	return lt.stats[e]
}

// Len returns the number of tracked live cells.
func (lt *LifetimeTracker) Len() int {
	return len(lt.stats)
}

// MaxGeneration returns the deepest generation among live cells.
func (lt *LifetimeTracker) MaxGeneration() int {
	maxGen := 0
	for _, s := range lt.stats {
		if s.Generation > maxGen {
			maxGen = s.Generation
		}
	}
	return maxGen
}

// TakeWindow returns the mean lifespan in seconds of cells removed since the
// previous call, and resets the accumulator.
func (lt *LifetimeTracker) TakeWindow() float64 {
	if lt.lifespanCount == 0 {
		return 0
	}
	mean := lt.lifespanSum / float64(lt.lifespanCount)
	lt.lifespanSum = 0
	lt.lifespanCount = 0
	return mean
}
