package telemetry

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/events"
)

type tag struct{ id int }

func newEntities(n int) []ecs.Entity {
	w := ecs.NewWorld()
	m := ecs.NewMap[tag](w)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = m.NewEntity(&tag{id: i})
	}
	return out
}

func TestCollectorWindowTicks(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)
	if c.WindowDurationTicks() != 60 {
		t.Fatalf("WindowDurationTicks = %d, want 60", c.WindowDurationTicks())
	}
	if c.ShouldFlush(59) {
		t.Error("ShouldFlush(59) = true, want false")
	}
	if !c.ShouldFlush(60) {
		t.Error("ShouldFlush(60) = false, want true")
	}

	if got := NewCollector(0, 1.0/60).WindowDurationTicks(); got != 1 {
		t.Errorf("zero window: got %d ticks, want 1", got)
	}
}

func TestCollectorCountsByCause(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)

	for _, e := range []events.Event{
		{Kind: events.CellSpawned, Cause: events.CauseSeed},
		{Kind: events.CellSpawned, Cause: events.CauseDivision},
		{Kind: events.CellSpawned, Cause: events.CauseDivision},
		{Kind: events.CellDespawned, Cause: events.CauseDivision},
		{Kind: events.CellDespawned, Cause: events.CauseStarved},
		{Kind: events.CellDespawned, Cause: events.CauseCleanup},
		{Kind: events.FoodSpawned, Cause: events.CauseSeed},
		{Kind: events.FoodSpawned, Cause: events.CauseTrickle},
		{Kind: events.FoodDespawned, Cause: events.CauseEaten},
		{Kind: events.FoodDespawned, Cause: events.CauseCleanup},
		{Kind: events.EyeSpawned, Cause: events.CauseSeed},
	} {
		c.Record(e)
	}

	s := c.Flush(60, Sample{Cells: 5, Food: 7, Energies: []float64{100, 120}})

	if s.Births != 2 || s.Divisions != 1 || s.Starvations != 1 {
		t.Errorf("births/divisions/starvations = %d/%d/%d, want 2/1/1", s.Births, s.Divisions, s.Starvations)
	}
	if s.FoodSpawned != 2 || s.FoodEaten != 1 {
		t.Errorf("food spawned/eaten = %d/%d, want 2/1", s.FoodSpawned, s.FoodEaten)
	}
	if s.Cells != 5 || s.Food != 7 {
		t.Errorf("cells/food = %d/%d, want 5/7", s.Cells, s.Food)
	}
	if s.EnergyMean != 110 {
		t.Errorf("EnergyMean = %v, want 110", s.EnergyMean)
	}
	if s.WindowStartTick != 0 || s.WindowEndTick != 60 {
		t.Errorf("window = [%d, %d], want [0, 60]", s.WindowStartTick, s.WindowEndTick)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-6 {
		t.Errorf("SimTimeSec = %v, want ~1", s.SimTimeSec)
	}
}

func TestCollectorFlushResets(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)
	c.Record(events.Event{Kind: events.FoodSpawned})
	c.Flush(60, Sample{})

	s := c.Flush(120, Sample{})
	if s.FoodSpawned != 0 {
		t.Errorf("FoodSpawned = %d after reset, want 0", s.FoodSpawned)
	}
	if s.WindowStartTick != 60 {
		t.Errorf("WindowStartTick = %d, want 60", s.WindowStartTick)
	}
	if c.ShouldFlush(150) {
		t.Error("ShouldFlush(150) = true, want false after flush at 120")
	}
}

func TestLifetimeTracker(t *testing.T) {
	ents := newEntities(3)
	a, b, c := ents[0], ents[1], ents[2]
	lt := NewLifetimeTracker(0.5)

	lt.Observe(events.Event{Kind: events.CellSpawned, Tick: 0, Entity: a, Cause: events.CauseSeed})
	lt.Observe(events.Event{Kind: events.CellSpawned, Tick: 10, Entity: b, Parent: a, Cause: events.CauseDivision})
	lt.Observe(events.Event{Kind: events.CellSpawned, Tick: 10, Entity: c, Parent: a, Cause: events.CauseDivision})

	if got := lt.Get(a).Children; got != 2 {
		t.Errorf("parent children = %d, want 2", got)
	}
	if got := lt.Get(b).Generation; got != 1 {
		t.Errorf("child generation = %d, want 1", got)
	}

	lt.Observe(events.Event{Kind: events.CellDespawned, Tick: 10, Entity: a, Cause: events.CauseDivision})
	lt.Observe(events.Event{Kind: events.FoodDespawned, Tick: 12, Parent: b, Cause: events.CauseEaten})

	if lt.Len() != 2 {
		t.Errorf("Len = %d, want 2", lt.Len())
	}
	if lt.Get(a) != nil {
		t.Error("despawned parent still tracked")
	}
	if lt.MaxGeneration() != 1 {
		t.Errorf("MaxGeneration = %d, want 1", lt.MaxGeneration())
	}
	if got := lt.Get(b).FoodEaten; got != 1 {
		t.Errorf("FoodEaten = %d, want 1", got)
	}

	lt.Observe(events.Event{Kind: events.CellDespawned, Tick: 20, Entity: b, Cause: events.CauseStarved})

	// a lived 10 ticks, b lived 10 ticks, at 0.5s per tick
	if got := lt.TakeWindow(); got != 5 {
		t.Errorf("mean lifespan = %v, want 5", got)
	}
	if got := lt.TakeWindow(); got != 0 {
		t.Errorf("mean lifespan after reset = %v, want 0", got)
	}
}
