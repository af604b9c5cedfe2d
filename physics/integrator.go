// Package physics integrates cell motion from locomotor outputs.
package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/components"
	"github.com/pthm-cable/cellsoup/systems"
)

// Params holds the integrator's force and damping scales.
type Params struct {
	Thrust      float32 // force per unit locomotor activation
	Torque      float32 // angular acceleration per unit lever-arm force
	Drag        float32 // linear damping per second
	AngularDrag float32 // angular damping per second
	BodyRadius  float32
}

// Integrator applies locomotor thrust to cells and advances their motion
// with explicit Euler steps.
type Integrator struct {
	params  Params
	world   *ecs.World
	filter  *ecs.Filter4[components.Cell, components.Position, components.Velocity, components.Rotation]
	organs  *ecs.Map[components.Organ]
	locoMap *ecs.Map[components.Locomotor]
}

// NewIntegrator creates an integrator over the cells of w.
func NewIntegrator(w *ecs.World, p Params) *Integrator {
	return &Integrator{
		params:  p,
		world:   w,
		filter:  ecs.NewFilter4[components.Cell, components.Position, components.Velocity, components.Rotation](w),
		organs:  ecs.NewMap[components.Organ](w),
		locoMap: ecs.NewMap[components.Locomotor](w),
	}
}

// Integrate advances every cell by dt seconds.
//
// Each locomotor pushes along its world-space facing with force
// activation*Thrust. The component of that force across the lever arm
// from the body center turns the cell.
func (in *Integrator) Integrate(dt float32) {
	p := in.params
	linearDamp := float32(math.Exp(float64(-p.Drag * dt)))
	angularDamp := float32(math.Exp(float64(-p.AngularDrag * dt)))

	query := in.filter.Query()
	for query.Next() {
		cell, pos, vel, rot := query.Get()

		var force systems.Vec2
		var torque float32
		for _, e := range cell.Locomotors {
			if !in.world.Alive(e) || !in.organs.Has(e) || !in.locoMap.Has(e) {
				continue
			}
			organ := in.organs.Get(e)
			loco := in.locoMap.Get(e)

			f := systems.Forward(rot.Heading + organ.Angle).Scale(loco.Activation * p.Thrust)
			force = force.Add(f)

			arm := systems.Vec2{X: organ.OffsetX, Y: organ.OffsetY}.Rotate(rot.Heading)
			if p.BodyRadius > 0 {
				arm = arm.Scale(1 / p.BodyRadius)
			}
			torque += arm.Cross(f)
		}

		vel.X = (vel.X + force.X*dt) * linearDamp
		vel.Y = (vel.Y + force.Y*dt) * linearDamp
		if p.Thrust > 0 {
			rot.AngVel += torque / p.Thrust * p.Torque * dt
		}
		rot.AngVel *= angularDamp

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		rot.Heading = wrapAngle(rot.Heading + rot.AngVel*dt)
	}
}

// wrapAngle wraps a to [-pi, pi].
func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
