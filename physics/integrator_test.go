package physics

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/components"
	"github.com/pthm-cable/cellsoup/systems"
)

var testParams = Params{Thrust: 500, Torque: 7, Drag: 2, AngularDrag: 2, BodyRadius: 50}

// spawnCell builds a cell with one locomotor at angular position p with the
// given thrust angle and activation.
func spawnCell(w *ecs.World, p, thrustAngle, activation float32) ecs.Entity {
	cells := ecs.NewMap4[components.Cell, components.Position, components.Velocity, components.Rotation](w)
	locos := ecs.NewMap2[components.Organ, components.Locomotor](w)

	cell := components.Cell{}
	pos := components.Position{}
	vel := components.Velocity{}
	rot := components.Rotation{}
	e := cells.NewEntity(&cell, &pos, &vel, &rot)

	offset := systems.OrganOffset(p, testParams.BodyRadius)
	organ := components.Organ{Parent: e, OffsetX: offset.X, OffsetY: offset.Y, Angle: p + thrustAngle}
	loco := components.Locomotor{Activation: activation, ThrustAngle: thrustAngle}
	le := locos.NewEntity(&organ, &loco)

	ecs.NewMap[components.Cell](w).Get(e).Locomotors = []ecs.Entity{le}
	return e
}

func TestIntegrateCenterLineThrust(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnCell(w, 0, 0, 1)

	in := NewIntegrator(w, testParams)
	in.Integrate(1.0 / 60)

	pos := ecs.NewMap[components.Position](w).Get(e)
	vel := ecs.NewMap[components.Velocity](w).Get(e)
	rot := ecs.NewMap[components.Rotation](w).Get(e)

	if vel.Y >= 0 || pos.Y >= 0 {
		t.Errorf("expected motion along -Y, got vel=%+v pos=%+v", *vel, *pos)
	}
	if math.Abs(float64(vel.X)) > 1e-4 {
		t.Errorf("vel.X = %v, want ~0", vel.X)
	}
	if math.Abs(float64(rot.AngVel)) > 1e-4 {
		t.Errorf("AngVel = %v, want ~0 for a thrust through the center", rot.AngVel)
	}
}

func TestIntegrateOffCenterThrustTurns(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnCell(w, math.Pi/2, -math.Pi/4, 1)

	NewIntegrator(w, testParams).Integrate(1.0 / 60)

	rot := ecs.NewMap[components.Rotation](w).Get(e)
	if rot.AngVel >= 0 {
		t.Errorf("AngVel = %v, want negative", rot.AngVel)
	}
}

func TestIntegrateIdleCellStaysPut(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnCell(w, 0, 0, 0)

	in := NewIntegrator(w, testParams)
	for i := 0; i < 10; i++ {
		in.Integrate(1.0 / 60)
	}

	pos := ecs.NewMap[components.Position](w).Get(e)
	if pos.X != 0 || pos.Y != 0 {
		t.Errorf("idle cell moved to %+v", *pos)
	}
}

func TestIntegrateDragDecays(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnCell(w, 0, 0, 0)
	vel := ecs.NewMap[components.Velocity](w).Get(e)
	vel.X = 100

	NewIntegrator(w, testParams).Integrate(0.5)

	vel = ecs.NewMap[components.Velocity](w).Get(e)
	want := float32(100 * math.Exp(-1))
	if math.Abs(float64(vel.X-want)) > 1e-3 {
		t.Errorf("vel.X = %v, want %v", vel.X, want)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{math.Pi + 0.5, -math.Pi + 0.5},
		{-math.Pi - 0.5, math.Pi - 0.5},
		{3 * math.Pi / 2, -math.Pi / 2},
	}
	for _, tt := range tests {
		got := wrapAngle(tt.in)
		if math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
