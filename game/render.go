package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/fluid"
	"github.com/pthm-cable/slosh/telemetry"
	"github.com/pthm-cable/slosh/ui"
)

// Render pass names recorded in renderPerf.
const (
	passGrid      = "grid"
	passParticles = "particles"
	passUI        = "ui"
)

// Draw renders the tank and the UI.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 10, G: 12, B: 18, A: 255})

	start := time.Now()
	grid := g.sim.Grid
	if g.showDensity {
		g.gridRenderer.DrawDensity(grid, g.camera)
	} else if g.showWater {
		g.gridRenderer.DrawWater(grid, g.camera)
	}
	g.gridRenderer.DrawSolids(grid, g.camera)
	if g.showGrid {
		g.gridRenderer.DrawLines(grid, g.camera)
	}
	g.renderPerf.Record(passGrid, time.Since(start))

	start = time.Now()
	g.particleRenderer.Draw(g.sim.Particles, g.camera)
	g.renderPerf.Record(passParticles, time.Since(start))

	start = time.Now()
	g.drawUI()
	g.renderPerf.Record(passUI, time.Since(start))

	rl.EndDrawing()
}

// drawUI renders HUD, panels and controls.
func (g *Game) drawUI() {
	p := g.sim.Params()
	stats := g.sim.Stats()

	g.hud.Draw(ui.HUDData{
		Title:      Title,
		Tick:       g.tick,
		SimTime:    float64(g.tick) * p.DT,
		Particles:  g.sim.Particles.Len(),
		WaterCells: stats.WaterCells,
		Speed:      g.stepsPerUpdate,
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
		Ordering:   p.Ordering.String(),
	})

	g.solverPanel.Draw(solverData(stats, p))

	if ev := g.controlsPanel.Draw(&g.controls); ev.Changed || ev.Reset {
		if ev.Changed {
			g.applyControls()
		}
		if ev.Reset {
			g.Reset()
		}
	}

	if g.showPerf {
		perf := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: perf.PhaseAvg,
			Total:      perf.AvgTickDuration,
		}, telemetry.Phases)
	}

	if g.showHelp {
		g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsHelp)
	}
}

// solverData builds the solver panel readout.
func solverData(stats fluid.StepStats, p fluid.Params) ui.SolverData {
	return ui.SolverData{
		DivergenceBefore: stats.DivergenceBefore,
		DivergenceAfter:  stats.DivergenceAfter,
		AverageDensity:   stats.AverageDensity,
		MaxSpeed:         stats.MaxSpeed,
		MeanSpeed:        stats.MeanSpeed,
		Iterations:       p.Iterations,
		Relaxation:       p.Relaxation,
		Stiffness:        p.Stiffness,
		DensityBias:      p.DensityBias,
	}
}
