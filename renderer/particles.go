package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/camera"
	"github.com/pthm-cable/slosh/fluid"
)

// ParticleRenderer draws fluid particles coloured by velocity.
type ParticleRenderer struct {
	Radius     float32 // screen pixels at zoom 1
	SpeedScale float64 // speed at full brightness
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{
		Radius:     radius,
		SpeedScale: 10,
	}
}

// Draw renders all particles visible through cam.
func (r *ParticleRenderer) Draw(p *fluid.Particles, cam *camera.Camera) {
	screenR := max(1, r.Radius*cam.Zoom)
	worldR := screenR / cam.Scale()
	for i := range p.X {
		wx, wy := float32(p.X[i]), float32(p.Y[i])
		if !cam.IsVisible(wx, wy, worldR) {
			continue
		}
		sx, sy := cam.WorldToScreen(wx, wy)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, screenR, VelocityColor(p.VX[i], p.VY[i], r.SpeedScale))
	}
}
