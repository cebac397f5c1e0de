package game

import (
	"fmt"
	"io"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logPerfStats logs step phase and render pass timing as a table.
func (g *Game) logPerfStats() {
	perf := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (speed %dx) | FPS: %d ===", g.tick, g.stepsPerUpdate, rl.GetFPS())
	g.writePerfTable(perf)

	if g.renderPerf != nil {
		Logf("  --- Render passes ---")
		total := g.renderPerf.Total()
		for _, name := range g.renderPerf.SortedNames() {
			avg := g.renderPerf.Avg(name)
			pct := float64(0)
			if total > 0 {
				pct = float64(avg) / float64(total) * 100
			}
			Logf("    %-16s %10s  %5.1f%%", name, avg.Round(time.Microsecond), pct)
		}
	}
	Logf("")
}

// writePerfTable logs the per-phase step timing.
func (g *Game) writePerfTable(perf telemetry.PerfStats) {
	Logf("Avg step time: %s (%.0f steps/s)", perf.AvgTickDuration.Round(time.Microsecond), perf.TicksPerSecond)
	for _, name := range telemetry.Phases {
		Logf("  %-18s %10s  %5.1f%%", name, perf.PhaseAvg[name].Round(time.Microsecond), perf.PhasePct[name])
	}
}
