package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/config"
	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/neural"
	"github.com/pthm-cable/cellsoup/systems"
)

// spawnInitialWorld seeds the starting cells and food from config.
func (g *Game) spawnInitialWorld() error {
	if err := g.spawnInitialPopulation(); err != nil {
		return err
	}
	g.seedFood()

	slog.Info("world seeded",
		"cells", g.numCells,
		"food", g.numFood,
	)
	return nil
}

// spawnInitialPopulation creates the starting cells, each with a fresh
// random controller and the configured organ layout.
func (g *Game) spawnInitialPopulation() error {
	pop := g.cfg.Population
	sigma := float32(pop.InitSigma)
	spread := float32(pop.SpawnSigma)

	locomotors, eyes := organLayout(pop)

	for i := 0; i < pop.InitialCells; i++ {
		pos := systems.Vec2{
			X: float32(g.rng.NormFloat64()) * spread,
			Y: float32(g.rng.NormFloat64()) * spread,
		}

		genome, err := neural.RandomGenome(g.rng, locomotors, eyes, pop.BrainSize, sigma)
		if err != nil {
			return fmt.Errorf("initial cell %d: %w", i, err)
		}
		brain, err := neural.NewBrain(genome, neural.RandomVector(g.rng, pop.BrainSize, sigma))
		if err != nil {
			return fmt.Errorf("initial cell %d: %w", i, err)
		}

		g.SpawnCell(pos, 0, float32(g.cfg.Energy.Initial), brain)
	}
	return nil
}

// organLayout converts the configured organ placement to genome form.
func organLayout(pop config.PopulationConfig) ([]neural.LocomotorGene, []float32) {
	locomotors := make([]neural.LocomotorGene, len(pop.Locomotors))
	for i, l := range pop.Locomotors {
		locomotors[i] = neural.LocomotorGene{Position: float32(l.Position), Angle: float32(l.Angle)}
	}
	eyes := make([]float32, len(pop.Eyes))
	for i, p := range pop.Eyes {
		eyes[i] = float32(p)
	}
	return locomotors, eyes
}

// divide replaces a parent cell with two mutated children at its position,
// rotated by +/- the configured offset. Children are spawned before the
// parent is removed so notifications carry the parent's handle while it
// is still tracked.
func (g *Game) divide(parent ecs.Entity) {
	if !g.world.Alive(parent) || !g.cellMap.Has(parent) {
		return
	}

	cell := g.cellMap.Get(parent)
	brain := cell.Brain
	pos := *g.posMap.Get(parent)
	heading := g.rotMap.Get(parent).Heading

	m := g.cfg.Mitosis
	offset := float32(m.RotationOffset)
	layoutSigma := float32(m.LayoutSigma)
	weightSigma := float32(m.WeightSigma)
	birth := g.energy.Birth

	// Both children mutate from the parent's pre-split genome and state
	left := brain.Offspring(g.rng, layoutSigma, weightSigma)
	right := brain.Offspring(g.rng, layoutSigma, weightSigma)

	at := systems.Vec2{X: pos.X, Y: pos.Y}
	g.spawnCell(at, normalizeAngle(heading+offset), birth, left, parent, events.CauseDivision)
	g.spawnCell(at, normalizeAngle(heading-offset), birth, right, parent, events.CauseDivision)

	g.despawnCell(parent, events.CauseDivision)
}
