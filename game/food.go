package game

import (
	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/systems"
)

// seedFood places the initial food, each coordinate drawn from
// Normal(0, initial_sigma).
func (g *Game) seedFood() {
	sigma := float32(g.cfg.Food.InitialSigma)
	for i := 0; i < g.cfg.Food.InitialCount; i++ {
		g.spawnFood(g.gaussianPoint(sigma), events.CauseSeed)
	}
}

// updateFoodSpawn spawns one food item per elapsed trickle period. A slow
// tick can elapse several periods at once.
func (g *Game) updateFoodSpawn() {
	n := g.foodTimer.Tick(g.cfg.Derived.Tick)
	sigma := float32(g.cfg.Food.SpawnSigma)
	for i := 0; i < n; i++ {
		g.spawnFood(g.gaussianPoint(sigma), events.CauseTrickle)
	}
}

// gaussianPoint samples a point with each coordinate from Normal(0, sigma).
func (g *Game) gaussianPoint(sigma float32) systems.Vec2 {
	return systems.Vec2{
		X: float32(g.rng.NormFloat64()) * sigma,
		Y: float32(g.rng.NormFloat64()) * sigma,
	}
}
