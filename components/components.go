// Package components defines ECS components for the simulation.
package components

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/neural"
)

// Cell holds one living agent: its organs, energy and controller.
// Locomotors and Eyes are fixed at birth and index-aligned with the
// layouts in Brain.Genome.
type Cell struct {
	Locomotors []ecs.Entity
	Eyes       []ecs.Entity
	Energy     float32
	Brain      *neural.Brain
	Think      Timer // decision cadence
}

// Organ places a child entity on its parent cell's body.
// The placement is computed once at spawn and never changes.
type Organ struct {
	Parent  ecs.Entity
	OffsetX float32 // local offset from the parent's center
	OffsetY float32
	Angle   float32 // local rotation relative to the parent's heading
}

// Locomotor is a thrust-producing organ.
// Activation is written by the decision stage and read by physics.
type Locomotor struct {
	Activation  float32
	ThrustAngle float32
}

// Eye is a vision organ. Activation is written by the sensing stage.
type Eye struct {
	Activation float32
}

// Food tag component for passive food items.
type Food struct{}

// Timer is a repeating countdown measured in exact durations.
type Timer struct {
	Period  time.Duration
	Elapsed time.Duration
}

// NewTimer creates a repeating timer with the given period.
func NewTimer(period time.Duration) Timer {
	return Timer{Period: period}
}

// Tick advances the timer by d and returns how many periods elapsed.
func (t *Timer) Tick(d time.Duration) int {
	if t.Period <= 0 {
		return 0
	}
	t.Elapsed += d
	n := int(t.Elapsed / t.Period)
	t.Elapsed -= time.Duration(n) * t.Period
	return n
}
