package telemetry

import (
	"math"

	"github.com/pthm-cable/slosh/fluid"
)

// Collector accumulates per-step solver stats within windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	steps        int
	divBefore    float64
	divAfter     float64
	divAfterMax  float64
	reductionSum float64
	reductionN   int

	densities []float64
	speeds    []float64
}

// NewCollector creates a collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticks := int32(1)
	if dt > 0 {
		ticks = max(1, int32(math.Round(windowDurationSec/dt)))
	}
	return &Collector{
		windowDurationTicks: ticks,
		dt:                  dt,
	}
}

// WindowTicks returns the number of steps per window.
func (c *Collector) WindowTicks() int32 { return c.windowDurationTicks }

// Record adds one step's solver stats to the current window.
func (c *Collector) Record(s fluid.StepStats) {
	c.steps++
	c.divBefore += s.DivergenceBefore
	c.divAfter += s.DivergenceAfter
	c.divAfterMax = max(c.divAfterMax, s.DivergenceAfter)
	if s.DivergenceBefore > 0 {
		c.reductionSum += 1 - s.DivergenceAfter/s.DivergenceBefore
		c.reductionN++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the recorded steps and the current
// simulator state, then resets for the next window.
func (c *Collector) Flush(currentTick int32, sim *fluid.Simulator) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		DivAfterMax:     c.divAfterMax,
	}
	if c.steps > 0 {
		stats.DivBeforeMean = c.divBefore / float64(c.steps)
		stats.DivAfterMean = c.divAfter / float64(c.steps)
	}
	if c.reductionN > 0 {
		stats.Reduction = c.reductionSum / float64(c.reductionN)
	}

	if sim != nil {
		c.sample(sim, &stats)
	}

	c.StartAt(currentTick)
	return stats
}

// StartAt discards the current window and opens a new one at tick.
func (c *Collector) StartAt(tick int32) {
	c.windowStartTick = tick
	c.steps = 0
	c.divBefore, c.divAfter, c.divAfterMax = 0, 0, 0
	c.reductionSum, c.reductionN = 0, 0
}

func (c *Collector) sample(sim *fluid.Simulator, stats *WindowStats) {
	g, p := sim.Grid, sim.Particles

	c.densities = c.densities[:0]
	for i, water := range g.IsWater {
		if water {
			c.densities = append(c.densities, g.Density[i])
		}
	}
	stats.WaterCells = len(c.densities)
	d := ComputeDistribution(c.densities)
	stats.DensityMean, stats.DensityStd = d.Mean, d.Std
	stats.DensityP10, stats.DensityP50, stats.DensityP90 = d.P10, d.P50, d.P90

	c.speeds = c.speeds[:0]
	for i := range p.X {
		if !finite(p.X[i]) || !finite(p.Y[i]) || !finite(p.VX[i]) || !finite(p.VY[i]) {
			stats.NonFinite++
			continue
		}
		c.speeds = append(c.speeds, math.Hypot(p.VX[i], p.VY[i]))
	}
	stats.Particles = p.Len()
	s := ComputeDistribution(c.speeds)
	stats.SpeedMean, stats.SpeedP50, stats.SpeedP90, stats.SpeedMax = s.Mean, s.P50, s.P90, s.Max
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
