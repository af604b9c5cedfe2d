package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/systems"
	"github.com/pthm-cable/cellsoup/telemetry"
)

// stage is one named step of the fixed tick.
type stage struct {
	name string
	run  func()
}

// buildStages returns the fixed tick pipeline in execution order.
func (g *Game) buildStages() []stage {
	stages := []stage{
		{telemetry.PhaseFoodSpawn, g.updateFoodSpawn},
		{telemetry.PhaseFeeding, g.updateFeeding},
		{telemetry.PhaseSensing, g.updateSensing},
		{telemetry.PhaseDecision, g.updateDecision},
		{telemetry.PhaseLifecycle, g.updateLifecycle},
	}
	if g.physics != nil {
		stages = append(stages, stage{telemetry.PhaseIntegrate, g.updatePhysics})
	}
	return stages
}

// Step runs one fixed tick.
func (g *Game) Step() {
	g.perfCollector.StartTick()
	for _, s := range g.stages {
		g.perfCollector.StartPhase(s.name)
		s.run()
	}
	g.perfCollector.EndTick()
	g.tick++
}

// pendingChanges holds structural changes collected during a query.
type pendingChanges struct {
	eaten    []ecs.Entity // food, in consumption order
	eaters   []ecs.Entity // eaten[i] was consumed by eaters[i]
	starved  []ecs.Entity
	dividing []ecs.Entity
	hits     []ecs.Entity // feeding query scratch
}

// updateFeeding credits each cell for the food overlapping its body.
// Food leaves the index as soon as it is claimed, so a contested item is
// consumed by the first cell in iteration order only.
func (g *Game) updateFeeding() {
	perFood := g.energy.PerFood
	p := &g.pending
	p.eaten = p.eaten[:0]
	p.eaters = p.eaters[:0]

	query := g.cellFilter.Query()
	for query.Next() {
		entity := query.Entity()
		cell, pos, rot := query.Get()

		p.hits = g.food.QueryShape(systems.Vec2{X: pos.X, Y: pos.Y}, rot.Heading, g.body, p.hits[:0])
		for _, food := range p.hits {
			if !g.food.Remove(food) {
				continue
			}
			cell.Energy += perFood
			p.eaten = append(p.eaten, food)
			p.eaters = append(p.eaters, entity)
		}
	}

	// Second pass: remove consumed food (query iteration complete)
	for i, food := range p.eaten {
		g.despawnFood(food, p.eaters[i], events.CauseEaten)
	}
}

// updateDecision advances each cell's controller when its decision timer
// fires and writes the output segment to its locomotors pairwise.
func (g *Game) updateDecision() {
	tick := g.cfg.Derived.Tick
	sensors := g.sensorBuf

	query := g.cellFilter.Query()
	for query.Next() {
		cell, _, _ := query.Get()

		if cell.Think.Tick(tick) == 0 {
			continue
		}

		sensors = sensors[:0]
		for _, eye := range cell.Eyes {
			var a float32
			if g.world.Alive(eye) && g.eyeMap.Has(eye) {
				a = g.eyeMap.Get(eye).Activation
			}
			sensors = append(sensors, a)
		}

		outputs := cell.Brain.Step(sensors)
		n := min(len(cell.Locomotors), len(outputs))
		for i := 0; i < n; i++ {
			loco := cell.Locomotors[i]
			if g.world.Alive(loco) && g.locoMap.Has(loco) {
				g.locoMap.Get(loco).Activation = outputs[i]
			}
		}
	}
	g.sensorBuf = sensors
}

// updateLifecycle classifies every cell on its energy at stage entry:
// cells at the ceiling divide, every other cell decays and starves below
// the floor.
func (g *Game) updateLifecycle() {
	dt := g.cfg.Derived.DT32
	p := &g.pending
	p.starved = p.starved[:0]
	p.dividing = p.dividing[:0]

	query := g.cellFilter.Query()
	for query.Next() {
		entity := query.Entity()
		cell, _, _ := query.Get()

		fate, energy := g.energy.Settle(cell.Energy, dt)
		cell.Energy = energy
		switch fate {
		case systems.FateStarve:
			p.starved = append(p.starved, entity)
		case systems.FateDivide:
			p.dividing = append(p.dividing, entity)
		}
	}

	for _, e := range p.starved {
		g.despawnCell(e, events.CauseStarved)
	}
	for _, e := range p.dividing {
		g.divide(e)
	}
}

// updatePhysics hands locomotor outputs to the motion integrator.
func (g *Game) updatePhysics() {
	g.physics.Integrate(g.cfg.Derived.DT32)
}
