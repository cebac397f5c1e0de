package game

import rl "github.com/gen2brain/raylib-go/raylib"

// defaultSnapshotDir receives manual snapshots when no snapshot dir is set.
const defaultSnapshotDir = "snapshots"

// controlsHelp is the key legend drawn at the bottom of the screen.
const controlsHelp = "[Space] pause  [</>] speed  [R] reset  [G] grid  [W] water  [D] density  [B] bias  [O] ordering  [P] perf  [C] controls  [S] snapshot  [L] log perf  [Home] camera"

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}

	// Overlays
	if rl.IsKeyPressed(rl.KeyG) {
		g.showGrid = !g.showGrid
	}
	if rl.IsKeyPressed(rl.KeyW) {
		g.showWater = !g.showWater
	}
	if rl.IsKeyPressed(rl.KeyD) {
		g.showDensity = !g.showDensity
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHelp = !g.showHelp
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.controlsPanel.Toggle()
	}

	// Solver toggles
	if rl.IsKeyPressed(rl.KeyB) {
		g.controls.DensityBias = !g.controls.DensityBias
		g.applyControls()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.controls.RedBlack = !g.controls.RedBlack
		g.applyControls()
	}

	if rl.IsKeyPressed(rl.KeyS) {
		g.saveManualSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.logPerfStats()
	}

	g.handleCameraInput()
}

// saveManualSnapshot writes a snapshot on request.
func (g *Game) saveManualSnapshot() {
	dir := g.snapshotDir
	if dir == "" {
		dir = defaultSnapshotDir
	}
	g.saveSnapshot(dir, nil)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.solverPanel.SetPosition(int32(w)-230, 10)
	g.controlsPanel.SetPosition(int32(w)-230, 250)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Wheel zoom, ignored over the controls panel so sliders keep focus
	mouse := rl.GetMousePosition()
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 && !g.controlsPanel.Contains(mouse.X, mouse.Y) {
		g.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
