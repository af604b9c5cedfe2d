// Package telemetry provides population tracking, bookmarking and
// performance measurement for the simulation.
package telemetry

import "github.com/pthm-cable/cellsoup/events"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births      int
	divisions   int
	starvations int
	foodSpawned int
	foodEaten   int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec/float64(dt) + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts one registry notification.
func (c *Collector) Record(e events.Event) {
	switch e.Kind {
	case events.CellSpawned:
		if e.Cause == events.CauseDivision {
			c.births++
		}
	case events.CellDespawned:
		switch e.Cause {
		case events.CauseDivision:
			c.divisions++
		case events.CauseStarved:
			c.starvations++
		}
	case events.FoodSpawned:
		c.foodSpawned++
	case events.FoodDespawned:
		if e.Cause == events.CauseEaten {
			c.foodEaten++
		}
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the world state measured at window end.
type Sample struct {
	Cells    int
	Food     int
	Energies []float64

	MeanEyeActivation       float64
	MeanLocomotorActivation float64

	MeanLifespanSec float64
	MaxGeneration   int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	energy := ComputeEnergyStats(s.Energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Cells: s.Cells,
		Food:  s.Food,

		Births:      c.births,
		Divisions:   c.divisions,
		Starvations: c.starvations,
		FoodSpawned: c.foodSpawned,
		FoodEaten:   c.foodEaten,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		MeanEyeActivation:       s.MeanEyeActivation,
		MeanLocomotorActivation: s.MeanLocomotorActivation,

		MeanLifespanSec: s.MeanLifespanSec,
		MaxGeneration:   s.MaxGeneration,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.divisions = 0
	c.starvations = 0
	c.foodSpawned = 0
	c.foodEaten = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
