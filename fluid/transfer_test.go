package fluid

import (
	"math"
	"math/rand"
	"testing"
)

func TestSplatWeightsSumToOne(t *testing.T) {
	g := mustGrid(t, 9, 7)
	rng := rand.New(rand.NewSource(11))
	for _, f := range []Family{FamilyU, FamilyV, FamilyCell} {
		t.Run(f.String(), func(t *testing.T) {
			w, h := g.Extent(f)
			for range 100 {
				weights := make([]float64, w*h)
				x := rng.Float64()*float64(w+4) - 2
				y := rng.Float64()*float64(h+4) - 2
				g.SplatWeights(x, y, weights, f)
				var sum float64
				for _, v := range weights {
					if v < 0 {
						t.Fatalf("negative weight %v at (%v,%v)", v, x, y)
					}
					sum += v
				}
				if math.Abs(sum-1) > 1e-12 {
					t.Fatalf("weights at (%v,%v) sum to %v, want 1", x, y, sum)
				}
			}
		})
	}
}

func TestScatterBilinearWeights(t *testing.T) {
	g := mustGrid(t, 5, 5)
	w, _ := g.Extent(FamilyCell)
	weights := make([]float64, len(g.Density))
	grid := make([]float64, len(g.Density))

	g.Scatter(1.25, 2.5, 2, weights, grid, FamilyCell)

	want := map[int]float64{
		1 + 2*w: 0.75 * 0.5,
		2 + 2*w: 0.25 * 0.5,
		2 + 3*w: 0.25 * 0.5,
		1 + 3*w: 0.75 * 0.5,
	}
	for i := range weights {
		if weights[i] != want[i] {
			t.Errorf("weights[%d] = %v, want %v", i, weights[i], want[i])
		}
		if grid[i] != 2*want[i] {
			t.Errorf("grid[%d] = %v, want %v", i, grid[i], 2*want[i])
		}
	}
}

func TestScatterClampsStencil(t *testing.T) {
	g := mustGrid(t, 5, 4)
	tests := []struct {
		name string
		x, y float64
		node int
	}{
		{"below origin", -3, -1, 0},
		{"past far corner", 100, 100, 3 + 2*5},
		{"nan", math.NaN(), math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]float64, g.W*g.H)
			g.SplatWeights(tt.x, tt.y, weights, FamilyCell)
			if weights[tt.node] != 1 {
				t.Errorf("weights[%d] = %v, want 1 (weights %v)", tt.node, weights[tt.node], weights)
			}
		})
	}
}

func TestNormalizeLeavesEmptyNodes(t *testing.T) {
	grid := []float64{2, 5, 0}
	weights := []float64{0.5, 0, 0}
	Normalize(grid, weights)
	if grid[0] != 4 || grid[1] != 5 || grid[2] != 0 {
		t.Errorf("Normalize = %v, want [4 5 0]", grid)
	}
}

func TestScatterGatherRecoversValue(t *testing.T) {
	g := mustGrid(t, 8, 8)
	weights := make([]float64, len(g.U))
	valid := make([]float64, len(g.U))
	for i := range valid {
		valid[i] = 1
	}
	g.Scatter(3.3, 4.6, 1.75, weights, g.U, FamilyU)
	Normalize(g.U, weights)

	if got := g.Gather(3.3, 4.6, g.U, valid, FamilyU); math.Abs(got-1.75) > 1e-12 {
		t.Errorf("Gather = %v, want 1.75", got)
	}
}

func TestGatherMasksInvalidNodes(t *testing.T) {
	g := mustGrid(t, 6, 6)
	grid := make([]float64, len(g.V))
	valid := make([]float64, len(g.V))
	w, _ := g.Extent(FamilyV)

	grid[2+2*w] = 10
	grid[3+2*w] = -4
	grid[3+3*w] = 100
	valid[3+2*w] = 1

	if got := g.Gather(2.5, 2.5, grid, valid, FamilyV); got != -4 {
		t.Errorf("Gather with one valid node = %v, want -4", got)
	}

	clear(valid)
	if got := g.Gather(2.5, 2.5, grid, valid, FamilyV); got != 0 {
		t.Errorf("Gather with no valid nodes = %v, want 0", got)
	}
}
