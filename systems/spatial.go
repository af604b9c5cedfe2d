// Package systems provides the geometry, spatial index and per-stage rules
// of the cell simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// SpatialIndex resolves shape overlap queries against tracked food.
type SpatialIndex interface {
	// QueryShape appends every tracked entity whose footprint overlaps the
	// shape placed at origin with rotation angle, and returns dst.
	QueryShape(origin Vec2, angle float32, shape Shape, dst []ecs.Entity) []ecs.Entity
	// Position returns the indexed position of e.
	Position(e ecs.Entity) (Vec2, bool)
}

type cellKey struct {
	col, row int32
}

type gridEntry struct {
	pos Vec2
	key cellKey
}

// FoodGrid is an unbounded uniform hash grid over food items sharing one
// footprint radius. It is updated incrementally on spawn and despawn and
// is safe for concurrent queries while no writes happen.
type FoodGrid struct {
	cellSize float32
	radius   float32
	cells    map[cellKey][]ecs.Entity
	entries  map[ecs.Entity]gridEntry
}

var _ SpatialIndex = (*FoodGrid)(nil)

// NewFoodGrid creates an empty grid.
func NewFoodGrid(cellSize, radius float32) *FoodGrid {
	return &FoodGrid{
		cellSize: cellSize,
		radius:   radius,
		cells:    make(map[cellKey][]ecs.Entity),
		entries:  make(map[ecs.Entity]gridEntry),
	}
}

// Len returns the number of indexed items.
func (g *FoodGrid) Len() int { return len(g.entries) }

// Radius returns the footprint radius shared by indexed items.
func (g *FoodGrid) Radius() float32 { return g.radius }

// Insert adds e at pos. Re-inserting moves it.
func (g *FoodGrid) Insert(e ecs.Entity, pos Vec2) {
	if _, ok := g.entries[e]; ok {
		g.Remove(e)
	}
	key := g.keyFor(pos)
	g.cells[key] = append(g.cells[key], e)
	g.entries[e] = gridEntry{pos: pos, key: key}
}

// Remove drops e from the grid and reports whether it was present.
func (g *FoodGrid) Remove(e ecs.Entity) bool {
	entry, ok := g.entries[e]
	if !ok {
		return false
	}
	delete(g.entries, e)

	bucket := g.cells[entry.key]
	for i, other := range bucket {
		if other == e {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			bucket = bucket[:last]
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, entry.key)
	} else {
		g.cells[entry.key] = bucket
	}
	return true
}

// Position implements SpatialIndex.
func (g *FoodGrid) Position(e ecs.Entity) (Vec2, bool) {
	entry, ok := g.entries[e]
	return entry.pos, ok
}

// QueryShape implements SpatialIndex. Results come back in row-major cell
// order, so identical grids give identical results.
func (g *FoodGrid) QueryShape(origin Vec2, angle float32, shape Shape, dst []ecs.Entity) []ecs.Entity {
	lo, hi := shape.Bounds(origin, angle)
	lo = lo.Sub(Vec2{g.radius, g.radius})
	hi = hi.Add(Vec2{g.radius, g.radius})
	minKey, maxKey := g.keyFor(lo), g.keyFor(hi)

	for row := minKey.row; row <= maxKey.row; row++ {
		for col := minKey.col; col <= maxKey.col; col++ {
			for _, e := range g.cells[cellKey{col, row}] {
				entry := g.entries[e]
				if shape.OverlapsCircle(origin, angle, entry.pos, g.radius) {
					dst = append(dst, e)
				}
			}
		}
	}
	return dst
}

// keyFor returns the grid cell containing pos.
func (g *FoodGrid) keyFor(pos Vec2) cellKey {
	return cellKey{
		col: int32(math.Floor(float64(pos.X / g.cellSize))),
		row: int32(math.Floor(float64(pos.Y / g.cellSize))),
	}
}
