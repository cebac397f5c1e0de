package fluid

import (
	"math"
	"math/rand"
)

// Particles stores positions and velocities as parallel slices.
// Positions are in grid units, one cell per unit.
type Particles struct {
	X, Y   []float64
	VX, VY []float64
}

// NewParticles allocates n particles at rest at the origin.
func NewParticles(n int) *Particles {
	return &Particles{
		X:  make([]float64, n),
		Y:  make([]float64, n),
		VX: make([]float64, n),
		VY: make([]float64, n),
	}
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.X) }

// Seed scatters particles uniformly over r with zero velocity.
func (p *Particles) Seed(rng *rand.Rand, r Region) {
	for i := range p.X {
		p.X[i] = r.MinX + rng.Float64()*(r.MaxX-r.MinX)
		p.Y[i] = r.MinY + rng.Float64()*(r.MaxY-r.MinY)
		p.VX[i] = 0
		p.VY[i] = 0
	}
}

// Integrate applies gravity to vy and advects every particle by one step.
func (p *Particles) Integrate(gravity, dt float64) {
	dv := gravity * dt
	for i := range p.X {
		p.VY[i] += dv
		p.X[i] += p.VX[i] * dt
		p.Y[i] += p.VY[i] * dt
	}
}

// ClampToBounds keeps every particle inside [0,width) x [0,height).
// A particle that leaves an axis is snapped to the violated bound, the upper
// bound being extent-eps, and its velocity on that axis is zeroed.
// Non-finite positions are treated as having left through the lower bound.
func (p *Particles) ClampToBounds(width, height, eps float64) {
	for i := range p.X {
		p.X[i], p.VX[i] = clampAxis(p.X[i], p.VX[i], width, eps)
		p.Y[i], p.VY[i] = clampAxis(p.Y[i], p.VY[i], height, eps)
	}
}

func clampAxis(pos, vel, extent, eps float64) (float64, float64) {
	switch {
	case pos >= extent:
		return extent - eps, 0
	case !(pos >= 0):
		return 0, 0
	}
	return pos, vel
}

// MaxSpeed returns the largest particle speed, or 0 for an empty set.
func (p *Particles) MaxSpeed() float64 {
	var m float64
	for i := range p.VX {
		m = math.Max(m, math.Hypot(p.VX[i], p.VY[i]))
	}
	return m
}

// MeanSpeed returns the average particle speed, or 0 for an empty set.
func (p *Particles) MeanSpeed() float64 {
	if len(p.VX) == 0 {
		return 0
	}
	var sum float64
	for i := range p.VX {
		sum += math.Hypot(p.VX[i], p.VY[i])
	}
	return sum / float64(len(p.VX))
}
