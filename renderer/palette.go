// Package renderer draws the tank contents with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// VelocityHSV maps a velocity to hue (degrees, from direction) and value
// (brightness, from speed). speedScale is the speed that reaches full
// brightness.
func VelocityHSV(vx, vy, speedScale float64) (hue, value float32) {
	angle := math.Atan2(vy, vx)
	hue = float32((angle + math.Pi) / (2 * math.Pi) * 360)
	if hue >= 360 {
		hue = 0
	}
	if speedScale <= 0 {
		return hue, 1
	}
	value = float32(min(1, math.Hypot(vx, vy)/speedScale))
	if math.IsNaN(float64(value)) {
		value = 0
	}
	return hue, value
}

// VelocityColor returns the particle colour for a velocity.
// A floor on brightness keeps resting particles visible.
func VelocityColor(vx, vy, speedScale float64) rl.Color {
	hue, value := VelocityHSV(vx, vy, speedScale)
	return rl.ColorFromHSV(hue, 0.85, 0.25+0.75*value)
}

// DensityShade maps a cell density relative to the water average onto
// [0, 1]: 0.5 at the average, 1 at twice the average or more.
func DensityShade(density, avg float64) float32 {
	if avg <= 0 || math.IsNaN(density) {
		return 0
	}
	r := density / avg / 2
	return float32(max(0, min(1, r)))
}

// densityColor blends from deep blue (sparse) to white (compressed).
func densityColor(shade float32, alpha uint8) rl.Color {
	return rl.Color{
		R: uint8(20 + shade*235),
		G: uint8(40 + shade*215),
		B: uint8(120 + shade*135),
		A: alpha,
	}
}
