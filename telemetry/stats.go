package telemetry

import (
	"context"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Cells int `csv:"cells"`
	Food  int `csv:"food"`

	// Events during window
	Births      int `csv:"births"`
	Divisions   int `csv:"divisions"`
	Starvations int `csv:"starvations"`
	FoodSpawned int `csv:"food_spawned"`
	FoodEaten   int `csv:"food_eaten"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Organ signals (sampled at window end)
	MeanEyeActivation       float64 `csv:"eye_activation_mean"`
	MeanLocomotorActivation float64 `csv:"locomotor_activation_mean"`

	// Lineage
	MeanLifespanSec float64 `csv:"lifespan_mean"` // over cells removed this window
	MaxGeneration   int     `csv:"max_generation"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// EnergyStats summarises a set of cell energies.
type EnergyStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeEnergyStats calculates mean, sample standard deviation and
// percentiles. values is not modified.
func ComputeEnergyStats(values []float64) EnergyStats {
	n := len(values)
	if n == 0 {
		return EnergyStats{}
	}

	s := EnergyStats{Mean: stat.Mean(values, nil)}
	if n > 1 {
		s.Std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "stats", s.attrs()...)
}

func (s WindowStats) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("cells", s.Cells),
		slog.Int("food", s.Food),
		slog.Int("births", s.Births),
		slog.Int("divisions", s.Divisions),
		slog.Int("starvations", s.Starvations),
		slog.Int("food_spawned", s.FoodSpawned),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("eye_activation_mean", s.MeanEyeActivation),
		slog.Float64("locomotor_activation_mean", s.MeanLocomotorActivation),
		slog.Float64("lifespan_mean", s.MeanLifespanSec),
		slog.Int("max_generation", s.MaxGeneration),
	}
}
