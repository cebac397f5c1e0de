// Package game drives the fluid simulator, its telemetry and the viewer.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/slosh/camera"
	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/fluid"
	"github.com/pthm-cable/slosh/renderer"
	"github.com/pthm-cable/slosh/telemetry"
	"github.com/pthm-cable/slosh/ui"
)

// Title is shown in the window bar and HUD.
const Title = "Slosh"

// Maximum simulation steps per update.
const maxStepsPerUpdate = 20

// bookmarkHistory is the number of windows the bookmark detector keeps.
const bookmarkHistory = 10

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string
	OutputDir      string
	RestorePath    string // snapshot to resume from
	Headless       bool
	StepsPerUpdate int
	Config         *config.Config // nil = global config

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation and viewer state.
type Game struct {
	cfg     *config.Config
	sim     *fluid.Simulator
	rng     *rand.Rand
	rngSeed int64

	tick           int32
	paused         bool
	stepsPerUpdate int
	headless       bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
	lastWindow       telemetry.WindowStats

	// Viewer (nil when headless)
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer
	gridRenderer     *renderer.GridRenderer
	hud              *ui.HUD
	solverPanel      *ui.SolverPanel
	perfPanel        *ui.PerfPanel
	controlsPanel    *ui.ControlsPanel
	controls         ui.ControlValues
	renderPerf       *PerfStats

	showGrid    bool
	showDensity bool
	showWater   bool
	showPerf    bool
	showHelp    bool

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the simulator and telemetry from the config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	var snapshot *telemetry.Snapshot
	seed := opts.Seed
	if opts.RestorePath != "" {
		s, err := telemetry.LoadSnapshot(opts.RestorePath)
		if err != nil {
			return nil, err
		}
		snapshot = s
		seed = s.RNGSeed
	}

	rng := rand.New(rand.NewSource(seed))
	sim, err := fluid.New(cfg.Derived.Params, rng)
	if err != nil {
		return nil, fmt.Errorf("creating simulator: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:            cfg,
		sim:            sim,
		rng:            rng,
		rngSeed:        seed,
		stepsPerUpdate: min(steps, maxStepsPerUpdate),
		headless:       opts.Headless,
		collector:      telemetry.NewCollector(windowSec, cfg.Physics.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(
			bookmarkHistory,
			cfg.Telemetry.SpikeMultiplier,
			cfg.Telemetry.SettleSpeed,
			cfg.Telemetry.SettleWindows,
		),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		showGrid:      cfg.Render.ShowGrid,
		showDensity:   cfg.Render.ShowDensity,
		showWater:     true,
	}
	if opts.Headless {
		// Headless runs are never rendered, so the step loop may exceed the UI cap.
		g.stepsPerUpdate = steps
	}
	sim.SetPhaseTimer(g.perfCollector)

	if snapshot != nil {
		if err := snapshot.Restore(sim); err != nil {
			sim.Close()
			return nil, err
		}
		g.tick = snapshot.Tick
		g.collector.StartAt(g.tick)
		slog.Info("restored snapshot", "path", opts.RestorePath, "tick", g.tick, "particles", sim.Particles.Len())
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.syncControls()
	if !opts.Headless {
		g.initViewer()
	}

	return g, nil
}

// initViewer creates camera, renderers and panels. It does not touch the
// raylib window, so it is safe before InitWindow.
func (g *Game) initViewer() {
	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)
	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(g.sim.Grid.W), float32(g.sim.Grid.H))
	g.particleRenderer = renderer.NewParticleRenderer(g.cfg.Render.ParticleRadius)
	g.gridRenderer = renderer.NewGridRenderer()
	g.hud = ui.NewHUD()
	g.solverPanel = ui.NewSolverPanel(int32(g.screenWidth)-230, 10, 220)
	g.perfPanel = ui.NewPerfPanel(10, 110)
	g.controlsPanel = ui.NewControlsPanel(int32(g.screenWidth)-230, 250, 220)
	g.renderPerf = NewPerfStats()
}

// Sim returns the underlying simulator.
func (g *Game) Sim() *fluid.Simulator { return g.sim }

// Tick returns the number of completed steps.
func (g *Game) Tick() int32 { return g.tick }

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool { return g.paused }

// LastWindow returns the most recently flushed stats window.
func (g *Game) LastWindow() telemetry.WindowStats { return g.lastWindow }

// Update handles input and runs one or more simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs simulation steps without input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step advances the simulator once and records telemetry.
func (g *Game) step() {
	g.perfCollector.StartTick()
	g.sim.Step()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.collector.Record(g.sim.Stats())
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// Reset reseeds the particles and restarts the tick counter.
func (g *Game) Reset() {
	g.sim.Reset(g.rng)
	g.tick = 0
	g.collector.StartAt(0)
	slog.Info("simulation reset")
}

// syncControls copies the simulator settings into the control values.
func (g *Game) syncControls() {
	p := g.sim.Params()
	g.controls = ui.ControlValues{
		Gravity:     float32(p.Gravity),
		Iterations:  p.Iterations,
		Relaxation:  float32(p.Relaxation),
		Stiffness:   float32(p.Stiffness),
		DensityBias: p.DensityBias,
		RedBlack:    p.Ordering == fluid.OrderRedBlack,
	}
}

// applyControls pushes the control values into the simulator.
func (g *Game) applyControls() {
	v := g.controls
	g.sim.SetGravity(float64(v.Gravity))
	g.sim.SetIterations(v.Iterations)
	g.sim.SetRelaxation(float64(v.Relaxation))
	g.sim.SetStiffness(float64(v.Stiffness))
	g.sim.SetDensityBias(v.DensityBias)
	if v.RedBlack {
		g.sim.SetOrdering(fluid.OrderRedBlack)
	} else {
		g.sim.SetOrdering(fluid.OrderGaussSeidel)
	}
	g.syncControls()
}

// Unload releases solver workers and closes output files.
func (g *Game) Unload() {
	g.sim.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
