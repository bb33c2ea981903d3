package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one unit type over a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Type            string  `csv:"type"`

	// State at window end
	Population  int     `csv:"population"`
	PoolSize    int     `csv:"pool_size"`
	Cooldown    float64 `csv:"cooldown"`
	DisableProb float64 `csv:"disable_prob"`

	// Events during window
	Spawns        int `csv:"spawns"`
	Despawns      int `csv:"despawns"`
	Replications  int `csv:"replications"`
	Suppressed    int `csv:"suppressed"`
	PoolGrowth    int `csv:"pool_growth"`
	Underflows    int `csv:"underflows"`
	DroppedSpawns int `csv:"dropped_spawns"`

	// Population distribution (sampled every fixed tick)
	PopMean float64 `csv:"pop_mean"`
	PopStd  float64 `csv:"pop_std"`
	PopP10  float64 `csv:"pop_p10"`
	PopP50  float64 `csv:"pop_p50"`
	PopP90  float64 `csv:"pop_p90"`
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

// ComputePopulationStats calculates mean, sample std, and percentiles.
func ComputePopulationStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
		if math.IsNaN(std) {
			std = 0
		}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("type", s.Type),
		slog.Int("population", s.Population),
		slog.Int("pool_size", s.PoolSize),
		slog.Float64("cooldown", s.Cooldown),
		slog.Float64("disable_prob", s.DisableProb),
		slog.Int("spawns", s.Spawns),
		slog.Int("despawns", s.Despawns),
		slog.Int("replications", s.Replications),
		slog.Int("suppressed", s.Suppressed),
		slog.Int("pool_growth", s.PoolGrowth),
		slog.Int("underflows", s.Underflows),
		slog.Int("dropped_spawns", s.DroppedSpawns),
		slog.Float64("pop_mean", s.PopMean),
		slog.Float64("pop_std", s.PopStd),
		slog.Float64("pop_p10", s.PopP10),
		slog.Float64("pop_p50", s.PopP50),
		slog.Float64("pop_p90", s.PopP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"type", s.Type,
		"population", s.Population,
		"pool_size", s.PoolSize,
		"cooldown", s.Cooldown,
		"disable_prob", s.DisableProb,
		"spawns", s.Spawns,
		"despawns", s.Despawns,
		"replications", s.Replications,
		"suppressed", s.Suppressed,
		"pool_growth", s.PoolGrowth,
		"underflows", s.Underflows,
		"pop_mean", s.PopMean,
		"pop_p50", s.PopP50,
	)
}
