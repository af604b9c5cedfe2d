// Package game owns the cell world and drives the fixed simulation step.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cellsoup/components"
	"github.com/pthm-cable/cellsoup/config"
	"github.com/pthm-cable/cellsoup/events"
	"github.com/pthm-cable/cellsoup/physics"
	"github.com/pthm-cable/cellsoup/systems"
	"github.com/pthm-cable/cellsoup/telemetry"
)

// Options configures game initialization.
type Options struct {
	Seed           int64
	Physics        bool    // integrate motion from locomotor outputs
	Populate       bool    // seed the initial cells and food from config
	LogStats       bool    // log window stats, perf and bookmarks via slog
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // empty = no CSV output
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World

	// Creation mappers
	cellMapper *ecs.Map4[components.Cell, components.Position, components.Velocity, components.Rotation]
	locoMapper *ecs.Map2[components.Organ, components.Locomotor]
	eyeMapper  *ecs.Map2[components.Organ, components.Eye]
	foodMapper *ecs.Map2[components.Position, components.Food]

	// Individual component mappers for lookups
	cellMap  *ecs.Map[components.Cell]
	posMap   *ecs.Map[components.Position]
	rotMap   *ecs.Map[components.Rotation]
	organMap *ecs.Map[components.Organ]
	locoMap  *ecs.Map[components.Locomotor]
	eyeMap   *ecs.Map[components.Eye]

	// Filters for typed iteration
	cellFilter *ecs.Filter3[components.Cell, components.Position, components.Rotation]
	eyeFilter  *ecs.Filter2[components.Organ, components.Eye]
	locoFilter *ecs.Filter1[components.Locomotor]

	// Spatial index over food
	food *systems.FoodGrid

	// Fixed-step rules
	body     systems.Circle
	vision   systems.Vision
	energy   systems.EnergyRules
	stages   []stage
	physics  *physics.Integrator
	parallel *parallelState

	foodTimer components.Timer
	pending   pendingChanges
	sensorBuf []float32 // decision stage sensor injection

	// Notifications and bookkeeping
	events           *events.Queue
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	totals           Totals
	report           reportState

	// Variable-rate driver
	accumulator time.Duration
	lastUpdate  time.Time

	// State
	tick     int32
	numCells int
	numFood  int
}

// NewGameWithOptions builds a world from cfg. cfg must have been validated;
// it is cloned so later edits by the caller have no effect.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	cfg = cfg.Clone()
	cfg.ComputeDerived()

	world := ecs.NewWorld()

	g := &Game{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		world: world,

		cellMapper: ecs.NewMap4[components.Cell, components.Position, components.Velocity, components.Rotation](world),
		locoMapper: ecs.NewMap2[components.Organ, components.Locomotor](world),
		eyeMapper:  ecs.NewMap2[components.Organ, components.Eye](world),
		foodMapper: ecs.NewMap2[components.Position, components.Food](world),

		cellMap:  ecs.NewMap[components.Cell](world),
		posMap:   ecs.NewMap[components.Position](world),
		rotMap:   ecs.NewMap[components.Rotation](world),
		organMap: ecs.NewMap[components.Organ](world),
		locoMap:  ecs.NewMap[components.Locomotor](world),
		eyeMap:   ecs.NewMap[components.Eye](world),

		cellFilter: ecs.NewFilter3[components.Cell, components.Position, components.Rotation](world),
		eyeFilter:  ecs.NewFilter2[components.Organ, components.Eye](world),
		locoFilter: ecs.NewFilter1[components.Locomotor](world),

		food: systems.NewFoodGrid(float32(cfg.Spatial.CellSize), float32(cfg.Geometry.FoodRadius)),
		body: systems.Circle{Radius: float32(cfg.Geometry.BodyRadius)},
		vision: systems.Vision{
			Cone: systems.Trapezoid(
				float32(cfg.Geometry.ConeNearHalfWidth), float32(cfg.Geometry.ConeNearDepth),
				float32(cfg.Geometry.ConeFarHalfWidth), float32(cfg.Geometry.ConeFarDepth),
			),
			Range: float32(cfg.Geometry.VisionRange),
		},
		energy: systems.EnergyRules{
			Floor:   float32(cfg.Energy.Floor),
			Ceiling: float32(cfg.Energy.Ceiling),
			PerFood: float32(cfg.Energy.PerFood),
			Birth:   float32(cfg.Energy.Birth),
		},
		parallel:  newParallelState(cfg.Simulation.ParallelMinBatch),
		foodTimer: components.NewTimer(cfg.Derived.FoodPeriod),

		events:           events.NewQueue(),
		lifetimeTracker:  telemetry.NewLifetimeTracker(cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		report:           reportState{timer: components.NewTimer(cfg.Derived.ReportInterval)},
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	if opts.Physics {
		g.physics = physics.NewIntegrator(world, physics.Params{
			Thrust:      float32(cfg.Physics.Thrust),
			Torque:      float32(cfg.Physics.Torque),
			Drag:        float32(cfg.Physics.Drag),
			AngularDrag: float32(cfg.Physics.AngularDrag),
			BodyRadius:  float32(cfg.Geometry.BodyRadius),
		})
	}
	g.stages = g.buildStages()

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config: %w", err)
		}
		g.outputManager = om
	}

	if opts.Populate {
		if err := g.spawnInitialWorld(); err != nil {
			g.Close()
			return nil, err
		}
	}

	return g, nil
}

// Config returns the game's effective configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Tick returns the number of fixed steps run so far.
func (g *Game) Tick() int32 {
	return g.tick
}

// NumCells returns the live cell count.
func (g *Game) NumCells() int {
	return g.numCells
}

// NumFood returns the live food count.
func (g *Game) NumFood() int {
	return g.numFood
}

// Totals returns run-wide counters accumulated by bookkeeping.
func (g *Game) Totals() Totals {
	return g.totals
}

// Update is the variable-rate entry point. It runs as many fixed steps as
// the accumulated frame time allows, capped per call, then bookkeeping.
func (g *Game) Update(frame time.Duration) {
	tick := g.cfg.Derived.Tick
	maxSteps := g.cfg.Simulation.MaxStepsPerFrame

	g.accumulator += frame
	steps := 0
	for g.accumulator >= tick && steps < maxSteps {
		g.Step()
		g.accumulator -= tick
		steps++
	}
	// Drop backlog the cap could not absorb
	if g.accumulator >= tick {
		g.accumulator %= tick
	}

	g.perfCollector.RecordUpdate(steps)
	g.bookkeep(frame, steps)
}

// UpdateHeadless runs steps_per_update fixed steps, then bookkeeping.
func (g *Game) UpdateHeadless() {
	steps := g.cfg.Simulation.StepsPerUpdate
	for i := 0; i < steps; i++ {
		g.Step()
	}

	now := time.Now()
	var elapsed time.Duration
	if !g.lastUpdate.IsZero() {
		elapsed = now.Sub(g.lastUpdate)
	}
	g.lastUpdate = now

	g.perfCollector.RecordUpdate(steps)
	g.bookkeep(elapsed, steps)
}

// Close stops the sensing workers and closes output files.
func (g *Game) Close() error {
	g.stopParallelWorkers()
	return g.outputManager.Close()
}
