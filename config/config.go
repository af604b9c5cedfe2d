// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Energy     EnergyConfig     `yaml:"energy"`
	Mitosis    MitosisConfig    `yaml:"mitosis"`
	Population PopulationConfig `yaml:"population"`
	Food       FoodConfig       `yaml:"food"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	Spatial    SpatialConfig    `yaml:"spatial"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds scheduling parameters.
type SimulationConfig struct {
	DT               float64 `yaml:"dt"`                  // Fixed tick duration in seconds
	DecisionPeriod   float64 `yaml:"decision_period"`     // Seconds between controller updates
	StepsPerUpdate   int     `yaml:"steps_per_update"`    // Fixed ticks per headless update
	MaxStepsPerFrame int     `yaml:"max_steps_per_frame"` // Catch-up cap for variable-rate frames
	ParallelMinBatch int     `yaml:"parallel_min_batch"`  // Minimum eyes per sensing batch
}

// EnergyConfig holds the energy economy thresholds.
type EnergyConfig struct {
	Floor   float64 `yaml:"floor"`    // Cells below this after decay starve
	Ceiling float64 `yaml:"ceiling"`  // Cells at or above this divide
	PerFood float64 `yaml:"per_food"` // Credit per consumed food item
	Birth   float64 `yaml:"birth"`    // Energy of each child after division
	Initial float64 `yaml:"initial"`  // Energy of seeded cells
}

// MitosisConfig holds division and mutation parameters.
type MitosisConfig struct {
	RotationOffset float64 `yaml:"rotation_offset"` // Children rotate by +/- this (radians)
	LayoutSigma    float64 `yaml:"layout_sigma"`    // Noise on organ placement and thrust angle
	WeightSigma    float64 `yaml:"weight_sigma"`    // Noise on controller weights and biases
}

// LocomotorGene places one locomotor on the body.
type LocomotorGene struct {
	Position float64 `yaml:"position"` // Angular position on the body (radians)
	Angle    float64 `yaml:"angle"`    // Thrust direction offset (radians)
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	InitialCells int             `yaml:"initial_cells"`
	SpawnSigma   float64         `yaml:"spawn_sigma"` // Std dev of seeded cell positions
	BrainSize    int             `yaml:"brain_size"`  // Controller state length N
	InitSigma    float64         `yaml:"init_sigma"`  // Std dev of initial weights, biases and state
	Locomotors   []LocomotorGene `yaml:"locomotors"`
	Eyes         []float64       `yaml:"eyes"` // Angular positions of eyes (radians)
}

// FoodConfig holds food economy parameters.
type FoodConfig struct {
	InitialCount int     `yaml:"initial_count"`
	InitialSigma float64 `yaml:"initial_sigma"`
	SpawnPeriod  float64 `yaml:"spawn_period"` // Seconds per trickle food item
	SpawnSigma   float64 `yaml:"spawn_sigma"`
}

// GeometryConfig holds body, food and vision shapes.
type GeometryConfig struct {
	BodyRadius        float64 `yaml:"body_radius"`
	FoodRadius        float64 `yaml:"food_radius"`
	VisionRange       float64 `yaml:"vision_range"`
	ConeNearHalfWidth float64 `yaml:"cone_near_half_width"`
	ConeNearDepth     float64 `yaml:"cone_near_depth"`
	ConeFarHalfWidth  float64 `yaml:"cone_far_half_width"`
	ConeFarDepth      float64 `yaml:"cone_far_depth"`
}

// SpatialConfig holds spatial index parameters.
type SpatialConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// PhysicsConfig holds parameters of the reference motion integrator.
type PhysicsConfig struct {
	Thrust      float64 `yaml:"thrust"`       // Force per unit locomotor activation
	Torque      float64 `yaml:"torque"`       // Angular acceleration scale
	Drag        float64 `yaml:"drag"`         // Linear velocity damping per second
	AngularDrag float64 `yaml:"angular_drag"` // Angular velocity damping per second
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow    float64 `yaml:"stats_window"`    // Seconds of sim time per stats window
	PerfWindow     int     `yaml:"perf_window"`     // Ticks averaged by the perf collector
	ReportInterval float64 `yaml:"report_interval"` // Wall seconds between population reports
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32       // Simulation.DT as float32
	Tick           time.Duration // Simulation.DT as a duration
	DecisionPeriod time.Duration
	FoodPeriod     time.Duration
	ReportInterval time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects parameter combinations the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.DT <= 0 {
		errs = append(errs, errors.New("simulation.dt must be positive"))
	}
	if c.Simulation.DecisionPeriod <= 0 {
		errs = append(errs, errors.New("simulation.decision_period must be positive"))
	}
	if c.Energy.Floor >= c.Energy.Ceiling {
		errs = append(errs, fmt.Errorf("energy.floor (%v) must be below energy.ceiling (%v)", c.Energy.Floor, c.Energy.Ceiling))
	}
	if c.Energy.Birth < c.Energy.Floor || c.Energy.Birth >= c.Energy.Ceiling {
		errs = append(errs, fmt.Errorf("energy.birth (%v) must lie in [floor, ceiling)", c.Energy.Birth))
	}
	if len(c.Population.Locomotors) != len(c.Population.Eyes) {
		errs = append(errs, fmt.Errorf("population: %d locomotors but %d eyes; counts must match",
			len(c.Population.Locomotors), len(c.Population.Eyes)))
	}
	if len(c.Population.Locomotors)+len(c.Population.Eyes) > c.Population.BrainSize {
		errs = append(errs, fmt.Errorf("population: %d organs exceed brain_size %d",
			len(c.Population.Locomotors)+len(c.Population.Eyes), c.Population.BrainSize))
	}
	if c.Geometry.BodyRadius <= 0 || c.Geometry.FoodRadius <= 0 || c.Geometry.VisionRange <= 0 {
		errs = append(errs, errors.New("geometry radii and vision_range must be positive"))
	}
	if c.Spatial.CellSize <= 0 {
		errs = append(errs, errors.New("spatial.cell_size must be positive"))
	}
	if c.Food.SpawnPeriod <= 0 {
		errs = append(errs, errors.New("food.spawn_period must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Callers that edit a Config in place must call it again.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.Tick = seconds(c.Simulation.DT)
	c.Derived.DecisionPeriod = seconds(c.Simulation.DecisionPeriod)
	c.Derived.FoodPeriod = seconds(c.Food.SpawnPeriod)
	c.Derived.ReportInterval = seconds(c.Telemetry.ReportInterval)
	if c.Simulation.StepsPerUpdate < 1 {
		c.Simulation.StepsPerUpdate = 1
	}
	if c.Simulation.MaxStepsPerFrame < 1 {
		c.Simulation.MaxStepsPerFrame = 1
	}
	if c.Simulation.ParallelMinBatch < 1 {
		c.Simulation.ParallelMinBatch = 1
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Population.Locomotors = append([]LocomotorGene(nil), c.Population.Locomotors...)
	clone.Population.Eyes = append([]float64(nil), c.Population.Eyes...)
	return &clone
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// seconds converts a float second count to a duration rounded to the nanosecond.
func seconds(s float64) time.Duration {
	return time.Duration(s*float64(time.Second) + 0.5)
}
