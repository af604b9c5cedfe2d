package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/components"
	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/neural"
	"github.com/pthm-cable/cellsoup/systems"
)

// SpawnCell creates a seeded cell with its organs and returns its handle.
// The organ layout comes from the brain's genome, which NewGenome has
// already validated.
func (g *Game) SpawnCell(pos systems.Vec2, heading, energy float32, brain *neural.Brain) ecs.Entity {
	return g.spawnCell(pos, heading, energy, brain, ecs.Entity{}, events.CauseSeed)
}

// spawnCell creates a cell and its organs, emitting CellSpawned followed by
// one LocomotorSpawned or EyeSpawned per organ.
func (g *Game) spawnCell(pos systems.Vec2, heading, energy float32, brain *neural.Brain, parent ecs.Entity, cause events.Cause) ecs.Entity {
	radius := float32(g.cfg.Geometry.BodyRadius)

	cell := components.Cell{
		Energy: energy,
		Brain:  brain,
		Think:  components.NewTimer(g.cfg.Derived.DecisionPeriod),
	}
	p := components.Position{X: pos.X, Y: pos.Y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}

	entity := g.cellMapper.NewEntity(&cell, &p, &vel, &rot)
	g.numCells++
	g.emit(events.CellSpawned, entity, parent, cause)

	genome := brain.Genome
	locomotors := make([]ecs.Entity, len(genome.Locomotors))
	for i, gene := range genome.Locomotors {
		offset := systems.OrganOffset(gene.Position, radius)
		organ := components.Organ{Parent: entity, OffsetX: offset.X, OffsetY: offset.Y, Angle: gene.Position + gene.Angle}
		loco := components.Locomotor{ThrustAngle: gene.Angle}
		locomotors[i] = g.locoMapper.NewEntity(&organ, &loco)
		g.emit(events.LocomotorSpawned, locomotors[i], entity, cause)
	}

	eyes := make([]ecs.Entity, len(genome.Eyes))
	for i, p := range genome.Eyes {
		offset := systems.OrganOffset(p, radius)
		organ := components.Organ{Parent: entity, OffsetX: offset.X, OffsetY: offset.Y, Angle: p}
		eye := components.Eye{}
		eyes[i] = g.eyeMapper.NewEntity(&organ, &eye)
		g.emit(events.EyeSpawned, eyes[i], entity, cause)
	}

	// Organ creation may move the cell's storage; fetch after.
	c := g.cellMap.Get(entity)
	c.Locomotors = locomotors
	c.Eyes = eyes

	return entity
}

// DespawnCell removes a cell and all of its organs. It reports false if the
// handle is not a live cell.
func (g *Game) DespawnCell(e ecs.Entity) bool {
	return g.despawnCell(e, events.CauseCleanup)
}

func (g *Game) despawnCell(e ecs.Entity, cause events.Cause) bool {
	if !g.world.Alive(e) || !g.cellMap.Has(e) {
		return false
	}
	c := g.cellMap.Get(e)
	locomotors, eyes := c.Locomotors, c.Eyes

	for _, organ := range locomotors {
		if g.world.Alive(organ) {
			g.world.RemoveEntity(organ)
		}
	}
	for _, organ := range eyes {
		if g.world.Alive(organ) {
			g.world.RemoveEntity(organ)
		}
	}
	g.world.RemoveEntity(e)
	g.numCells--
	g.emit(events.CellDespawned, e, ecs.Entity{}, cause)
	return true
}

// SpawnFood creates a food item and indexes it.
func (g *Game) SpawnFood(pos systems.Vec2) ecs.Entity {
	return g.spawnFood(pos, events.CauseSeed)
}

func (g *Game) spawnFood(pos systems.Vec2, cause events.Cause) ecs.Entity {
	p := components.Position{X: pos.X, Y: pos.Y}
	entity := g.foodMapper.NewEntity(&p, &components.Food{})
	g.food.Insert(entity, pos)
	g.numFood++
	g.emit(events.FoodSpawned, entity, ecs.Entity{}, cause)
	return entity
}

// DespawnFood removes a food item. It reports false if the handle is not
// live food.
func (g *Game) DespawnFood(e ecs.Entity) bool {
	return g.despawnFood(e, ecs.Entity{}, events.CauseCleanup)
}

// despawnFood removes food, crediting eater in the notification when the
// cause is consumption.
func (g *Game) despawnFood(e, eater ecs.Entity, cause events.Cause) bool {
	if !g.world.Alive(e) {
		return false
	}
	g.food.Remove(e)
	g.world.RemoveEntity(e)
	g.numFood--
	g.emit(events.FoodDespawned, e, eater, cause)
	return true
}

func (g *Game) emit(kind events.Kind, e, parent ecs.Entity, cause events.Cause) {
	g.events.Emit(events.Event{Kind: kind, Tick: g.tick, Entity: e, Parent: parent, Cause: cause})
}

// CellView is a read-only copy of a cell's state.
type CellView struct {
	Entity     ecs.Entity
	Position   systems.Vec2
	Heading    float32
	Energy     float32
	State      []float32 // copy of the controller state
	Locomotors int
	Eyes       int
}

// Cell returns a copy of a live cell's state.
func (g *Game) Cell(e ecs.Entity) (CellView, bool) {
	if !g.world.Alive(e) || !g.cellMap.Has(e) {
		return CellView{}, false
	}
	c := g.cellMap.Get(e)
	pos := g.posMap.Get(e)
	rot := g.rotMap.Get(e)
	return CellView{
		Entity:     e,
		Position:   systems.Vec2{X: pos.X, Y: pos.Y},
		Heading:    rot.Heading,
		Energy:     c.Energy,
		State:      append([]float32(nil), c.Brain.State...),
		Locomotors: len(c.Locomotors),
		Eyes:       len(c.Eyes),
	}, true
}

// Cells returns copies of every live cell in registry order.
func (g *Game) Cells() []CellView {
	views := make([]CellView, 0, g.numCells)
	query := g.cellFilter.Query()
	for query.Next() {
		c, pos, rot := query.Get()
		views = append(views, CellView{
			Entity:     query.Entity(),
			Position:   systems.Vec2{X: pos.X, Y: pos.Y},
			Heading:    rot.Heading,
			Energy:     c.Energy,
			State:      append([]float32(nil), c.Brain.State...),
			Locomotors: len(c.Locomotors),
			Eyes:       len(c.Eyes),
		})
	}
	return views
}

// EyeActivation returns an eye organ's current activation.
func (g *Game) EyeActivation(e ecs.Entity) (float32, bool) {
	if !g.world.Alive(e) || !g.eyeMap.Has(e) {
		return 0, false
	}
	return g.eyeMap.Get(e).Activation, true
}

// LocomotorActivation returns a locomotor organ's current activation.
func (g *Game) LocomotorActivation(e ecs.Entity) (float32, bool) {
	if !g.world.Alive(e) || !g.locoMap.Has(e) {
		return 0, false
	}
	return g.locoMap.Get(e).Activation, true
}

// Organs returns a live cell's locomotor and eye handles in genome order.
func (g *Game) Organs(e ecs.Entity) (locomotors, eyes []ecs.Entity) {
	if !g.world.Alive(e) || !g.cellMap.Has(e) {
		return nil, nil
	}
	c := g.cellMap.Get(e)
	return append([]ecs.Entity(nil), c.Locomotors...), append([]ecs.Entity(nil), c.Eyes...)
}

// Parent returns the cell an organ is attached to.
func (g *Game) Parent(organ ecs.Entity) (ecs.Entity, bool) {
	if !g.world.Alive(organ) || !g.organMap.Has(organ) {
		return ecs.Entity{}, false
	}
	return g.organMap.Get(organ).Parent, true
}
