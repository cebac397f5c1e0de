package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/camera"
	"github.com/pthm-cable/slosh/fluid"
)

// GridRenderer draws per-cell overlays: solid walls, the water mask and
// the particle density field.
type GridRenderer struct {
	SolidColor rl.Color
	WaterColor rl.Color
	LineColor  rl.Color
}

// NewGridRenderer creates a grid renderer with the default palette.
func NewGridRenderer() *GridRenderer {
	return &GridRenderer{
		SolidColor: rl.Color{R: 70, G: 60, B: 55, A: 255},
		WaterColor: rl.Color{R: 30, G: 60, B: 110, A: 90},
		LineColor:  rl.Color{R: 255, G: 255, B: 255, A: 18},
	}
}

// visibleCells returns the cell range covered by the camera view.
func visibleCells(g *fluid.Grid, cam *camera.Camera) (x0, y0, x1, y1 int) {
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	x0 = max(0, int(minX))
	y0 = max(0, int(minY))
	x1 = min(g.W-1, int(maxX))
	y1 = min(g.H-1, int(maxY))
	return x0, y0, x1, y1
}

func (r *GridRenderer) fillCell(cam *camera.Camera, x, y int, c rl.Color) {
	sx, sy := cam.WorldToScreen(float32(x), float32(y))
	s := cam.Scale()
	rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: s + 0.5, Y: s + 0.5}, c)
}

// DrawSolids fills solid cells.
func (r *GridRenderer) DrawSolids(g *fluid.Grid, cam *camera.Camera) {
	x0, y0, x1, y1 := visibleCells(g, cam)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if g.IsSolid(x, y) {
				r.fillCell(cam, x, y, r.SolidColor)
			}
		}
	}
}

// DrawWater tints cells that held a particle this step.
func (r *GridRenderer) DrawWater(g *fluid.Grid, cam *camera.Camera) {
	x0, y0, x1, y1 := visibleCells(g, cam)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if g.IsWater[x+y*g.W] {
				r.fillCell(cam, x, y, r.WaterColor)
			}
		}
	}
}

// DrawDensity shades water cells by density relative to the water average.
func (r *GridRenderer) DrawDensity(g *fluid.Grid, cam *camera.Camera) {
	avg := g.AverageWaterDensity()
	x0, y0, x1, y1 := visibleCells(g, cam)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := x + y*g.W
			if !g.IsWater[i] {
				continue
			}
			r.fillCell(cam, x, y, densityColor(DensityShade(g.Density[i], avg), 160))
		}
	}
}

// DrawLines draws cell boundaries.
func (r *GridRenderer) DrawLines(g *fluid.Grid, cam *camera.Camera) {
	sx0, sy0 := cam.WorldToScreen(0, 0)
	sx1, sy1 := cam.WorldToScreen(float32(g.W), float32(g.H))
	for x := 0; x <= g.W; x++ {
		sx, _ := cam.WorldToScreen(float32(x), 0)
		rl.DrawLine(int32(sx), int32(sy0), int32(sx), int32(sy1), r.LineColor)
	}
	for y := 0; y <= g.H; y++ {
		_, sy := cam.WorldToScreen(0, float32(y))
		rl.DrawLine(int32(sx0), int32(sy), int32(sx1), int32(sy), r.LineColor)
	}
}
