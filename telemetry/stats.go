// Package telemetry provides solver health tracking, bookmarking, and snapshots.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles  int `csv:"particles"`
	WaterCells int `csv:"water_cells"`

	// Residual divergence (L1 over open cells), averaged over the window
	DivBeforeMean float64 `csv:"div_before_mean"`
	DivAfterMean  float64 `csv:"div_after_mean"`
	DivAfterMax   float64 `csv:"div_after_max"`
	// Mean fraction of scattered divergence removed by projection
	Reduction float64 `csv:"div_reduction"`

	// Density over water cells (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`

	// Particle speed (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	NonFinite int `csv:"non_finite"` // particles with NaN or Inf state at window end
}

// DensityCV is the coefficient of variation of water-cell density.
func (s WindowStats) DensityCV() float64 {
	if s.DensityMean == 0 {
		return 0
	}
	return s.DensityStd / s.DensityMean
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

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeDistribution returns the mean, population standard deviation and
// percentiles of values. values is sorted in place.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	var d Distribution
	d.Mean, d.Std = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	d.P10 = Percentile(values, 0.10)
	d.P50 = Percentile(values, 0.50)
	d.P90 = Percentile(values, 0.90)
	d.Max = values[len(values)-1]
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("water_cells", s.WaterCells),
		slog.Float64("div_before_mean", s.DivBeforeMean),
		slog.Float64("div_after_mean", s.DivAfterMean),
		slog.Float64("div_after_max", s.DivAfterMax),
		slog.Float64("div_reduction", s.Reduction),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"water_cells", s.WaterCells,
		"div_before_mean", s.DivBeforeMean,
		"div_after_mean", s.DivAfterMean,
		"div_reduction", s.Reduction,
		"density_mean", s.DensityMean,
		"density_cv", s.DensityCV(),
		"speed_mean", s.SpeedMean,
		"speed_max", s.SpeedMax,
		"non_finite", s.NonFinite,
	)
}
