package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/slosh/fluid"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if got := c.WindowTicks(); got != 4 {
		t.Fatalf("WindowTicks() = %d, want 4", got)
	}
	if c.ShouldFlush(3) {
		t.Error("ShouldFlush(3) = true before window end")
	}
	if !c.ShouldFlush(4) {
		t.Error("ShouldFlush(4) = false at window end")
	}
}

func TestCollectorFlushAverages(t *testing.T) {
	c := NewCollector(1.0, 0.5)
	c.Record(fluid.StepStats{DivergenceBefore: 10, DivergenceAfter: 1})
	c.Record(fluid.StepStats{DivergenceBefore: 20, DivergenceAfter: 4})
	c.Record(fluid.StepStats{DivergenceBefore: 0, DivergenceAfter: 0})

	stats := c.Flush(2, nil)
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 || stats.SimTimeSec != 1 {
		t.Errorf("window = %d..%d at %vs", stats.WindowStartTick, stats.WindowEndTick, stats.SimTimeSec)
	}
	if stats.DivBeforeMean != 10 || stats.DivAfterMean != 5.0/3 || stats.DivAfterMax != 4 {
		t.Errorf("divergence = %v / %v max %v", stats.DivBeforeMean, stats.DivAfterMean, stats.DivAfterMax)
	}
	// (0.9 + 0.8) / 2, the zero-divergence step is skipped
	if math.Abs(stats.Reduction-0.85) > 1e-12 {
		t.Errorf("reduction = %v, want 0.85", stats.Reduction)
	}

	next := c.Flush(4, nil)
	if next.WindowStartTick != 2 || next.DivAfterMean != 0 || next.Reduction != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.ShouldFlush(5) {
		t.Error("ShouldFlush(5) = true right after flushing at 4")
	}
}

func TestCollectorSamplesSimulator(t *testing.T) {
	p := fluid.DefaultParams()
	p.Width, p.Height = 24, 24
	p.NumParticles = 300
	p.Spawn = fluid.Region{MinX: 2, MinY: 2, MaxX: 12, MaxY: 22}
	sim, err := fluid.New(p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	c := NewCollector(1, p.DT)
	for tick := int32(1); tick <= 10; tick++ {
		sim.Step()
		c.Record(sim.Stats())
	}
	sim.Particles.VX[0] = math.NaN()

	stats := c.Flush(10, sim)
	if stats.Particles != 300 {
		t.Errorf("particles = %d, want 300", stats.Particles)
	}
	if stats.WaterCells != sim.Grid.WaterCells() {
		t.Errorf("water cells = %d, want %d", stats.WaterCells, sim.Grid.WaterCells())
	}
	if stats.NonFinite != 1 {
		t.Errorf("non-finite = %d, want 1", stats.NonFinite)
	}
	if !(stats.DensityMean > 0) || stats.DensityP10 > stats.DensityP90 {
		t.Errorf("density stats = mean %v p10 %v p90 %v", stats.DensityMean, stats.DensityP10, stats.DensityP90)
	}
	if math.IsNaN(stats.SpeedMean) || stats.SpeedMax < stats.SpeedP90 {
		t.Errorf("speed stats = mean %v p90 %v max %v", stats.SpeedMean, stats.SpeedP90, stats.SpeedMax)
	}
}

func TestCollectorStartAt(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	c.Record(fluid.StepStats{DivergenceBefore: 5, DivergenceAfter: 5})
	c.StartAt(100)

	if c.ShouldFlush(103) {
		t.Error("ShouldFlush(103) = true inside window opened at 100")
	}
	stats := c.Flush(104, nil)
	if stats.WindowStartTick != 100 || stats.DivBeforeMean != 0 {
		t.Errorf("window after StartAt = %+v", stats)
	}
}
