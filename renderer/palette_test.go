package renderer

import (
	"math"
	"testing"
)

func TestVelocityHSV(t *testing.T) {
	tests := []struct {
		name      string
		vx, vy    float64
		wantHue   float32
		wantValue float32
	}{
		{"at rest", 0, 0, 180, 0},
		{"rightward", 2, 0, 180, 1},
		{"leftward", -1, 0, 0, 0.5},
		{"downward", 0, 1, 270, 0.5},
		{"upward", 0, -1, 90, 0.5},
		{"beyond scale", 0, 10, 270, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hue, value := VelocityHSV(tt.vx, tt.vy, 2)
			if math.Abs(float64(hue-tt.wantHue)) > 1e-3 {
				t.Errorf("hue: got %v want %v", hue, tt.wantHue)
			}
			if math.Abs(float64(value-tt.wantValue)) > 1e-6 {
				t.Errorf("value: got %v want %v", value, tt.wantValue)
			}
		})
	}
}

func TestVelocityHSVNaN(t *testing.T) {
	_, value := VelocityHSV(math.NaN(), 0, 1)
	if value != 0 {
		t.Errorf("got value %v for NaN velocity, want 0", value)
	}
}

func TestDensityShade(t *testing.T) {
	tests := []struct {
		density, avg float64
		want         float32
	}{
		{1, 1, 0.5},
		{2, 1, 1},
		{5, 1, 1},
		{0, 1, 0},
		{3, 0, 0},
		{math.NaN(), 1, 0},
	}
	for _, tt := range tests {
		if got := DensityShade(tt.density, tt.avg); got != tt.want {
			t.Errorf("DensityShade(%v, %v): got %v want %v", tt.density, tt.avg, got, tt.want)
		}
	}
}
