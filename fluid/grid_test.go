package fluid

import (
	"errors"
	"math/rand"
	"testing"
)

func mustGrid(t testing.TB, w, h int) *Grid {
	t.Helper()
	g, err := NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", w, h, err)
	}
	return g
}

func TestNewGridRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero", 0, 0},
		{"narrow", 2, 5},
		{"short", 5, 2},
		{"negative", -1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.w, tt.h)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("NewGrid(%d, %d) error = %v, want ErrInvalidParams", tt.w, tt.h, err)
			}
		})
	}
}

func TestBorderIsSolid(t *testing.T) {
	g := mustGrid(t, 6, 5)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			want := x == 0 || y == 0 || x == g.W-1 || y == g.H-1
			if got := g.IsSolid(x, y); got != want {
				t.Errorf("IsSolid(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if got, want := g.FluidCells(), 4*3; got != want {
		t.Errorf("FluidCells() = %d, want %d", got, want)
	}
}

func TestIndex(t *testing.T) {
	g := mustGrid(t, 4, 3)
	tests := []struct {
		name    string
		x, y    int
		family  Family
		want    int
		wantErr bool
	}{
		{"u origin", 0, 0, FamilyU, 0, false},
		{"u last", 4, 2, FamilyU, 4 + 2*5, false},
		{"u past width", 5, 0, FamilyU, 0, true},
		{"u past height", 0, 3, FamilyU, 0, true},
		{"v last", 3, 3, FamilyV, 3 + 3*4, false},
		{"v past width", 4, 0, FamilyV, 0, true},
		{"cell last", 3, 2, FamilyCell, 3 + 2*4, false},
		{"cell past height", 0, 3, FamilyCell, 0, true},
		{"negative", -1, 0, FamilyCell, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Index(tt.x, tt.y, tt.family)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("Index error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Index: %v", err)
			}
			if got != tt.want {
				t.Errorf("Index(%d,%d,%v) = %d, want %d", tt.x, tt.y, tt.family, got, tt.want)
			}
		})
	}
}

// checkFaceMasks verifies every face is open exactly when both adjacent cells are fluid.
func checkFaceMasks(t *testing.T, g *Grid) {
	t.Helper()
	for y := 0; y < g.H; y++ {
		for x := 0; x <= g.W; x++ {
			want := 1.0
			if g.IsSolid(x-1, y) || g.IsSolid(x, y) {
				want = 0
			}
			if got := g.NotSolidU[g.uIdx(x, y)]; got != want {
				t.Errorf("NotSolidU(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	for y := 0; y <= g.H; y++ {
		for x := 0; x < g.W; x++ {
			want := 1.0
			if g.IsSolid(x, y-1) || g.IsSolid(x, y) {
				want = 0
			}
			if got := g.NotSolidV[g.vIdx(x, y)]; got != want {
				t.Errorf("NotSolidV(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFaceMasks(t *testing.T) {
	g := mustGrid(t, 7, 6)
	checkFaceMasks(t, g)
}

func TestSetSolid(t *testing.T) {
	g := mustGrid(t, 7, 7)

	if err := g.SetSolid(3, 3, true); err != nil {
		t.Fatalf("SetSolid: %v", err)
	}
	if !g.IsSolid(3, 3) {
		t.Fatal("cell (3,3) should be solid")
	}
	checkFaceMasks(t, g)

	if err := g.SetSolid(3, 3, false); err != nil {
		t.Fatalf("SetSolid reopen: %v", err)
	}
	checkFaceMasks(t, g)

	if err := g.SetSolid(0, 3, false); !errors.Is(err, ErrBorderCell) {
		t.Errorf("opening border cell error = %v, want ErrBorderCell", err)
	}
	if err := g.SetSolid(9, 3, true); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("out of range error = %v, want ErrOutOfRange", err)
	}
}

func TestFillSolid(t *testing.T) {
	g := mustGrid(t, 10, 8)
	g.FillSolid(Rect{X: 3, Y: 2, W: 2, H: 3})
	for y := 2; y < 5; y++ {
		for x := 3; x < 5; x++ {
			if !g.IsSolid(x, y) {
				t.Errorf("cell (%d,%d) should be solid", x, y)
			}
		}
	}
	if g.IsSolid(5, 2) {
		t.Error("cell (5,2) should stay fluid")
	}
	checkFaceMasks(t, g)
}

func TestZeroSolidFaces(t *testing.T) {
	g := mustGrid(t, 6, 6)
	g.FillSolid(Rect{X: 2, Y: 2, W: 1, H: 1})
	for i := range g.U {
		g.U[i] = 1
	}
	for i := range g.V {
		g.V[i] = -1
	}
	g.ZeroSolidFaces()
	for i, open := range g.NotSolidU {
		if open == 0 && g.U[i] != 0 {
			t.Errorf("U[%d] = %v on solid face", i, g.U[i])
		}
		if open == 1 && g.U[i] != 1 {
			t.Errorf("U[%d] = %v on open face, want 1", i, g.U[i])
		}
	}
	for i, open := range g.NotSolidV {
		if open == 0 && g.V[i] != 0 {
			t.Errorf("V[%d] = %v on solid face", i, g.V[i])
		}
	}
}

func TestUpdateWaterMasks(t *testing.T) {
	g := mustGrid(t, 12, 9)
	rng := rand.New(rand.NewSource(7))
	p := NewParticles(40)
	p.Seed(rng, Region{MinX: -2, MinY: -2, MaxX: 14, MaxY: 11})
	p.ClampToBounds(float64(g.W), float64(g.H), 1e-4)
	g.UpdateWaterMasks(p)

	want := make([]bool, g.W*g.H)
	for i := range p.X {
		x, y := int(p.X[i]), int(p.Y[i])
		want[x+y*g.W] = true
	}
	water := func(x, y int) bool {
		if x < 0 || y < 0 || x >= g.W || y >= g.H {
			return false
		}
		return want[x+y*g.W]
	}

	for c := range want {
		if g.IsWater[c] != want[c] {
			t.Errorf("IsWater[%d] = %v, want %v", c, g.IsWater[c], want[c])
		}
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x <= g.W; x++ {
			w := 0.0
			if water(x-1, y) || water(x, y) {
				w = 1
			}
			if got := g.IsWaterU[g.uIdx(x, y)]; got != w {
				t.Errorf("IsWaterU(%d,%d) = %v, want %v", x, y, got, w)
			}
		}
	}
	for y := 0; y <= g.H; y++ {
		for x := 0; x < g.W; x++ {
			w := 0.0
			if water(x, y-1) || water(x, y) {
				w = 1
			}
			if got := g.IsWaterV[g.vIdx(x, y)]; got != w {
				t.Errorf("IsWaterV(%d,%d) = %v, want %v", x, y, got, w)
			}
		}
	}
}

func TestDivergenceIgnoresSolidCells(t *testing.T) {
	g := mustGrid(t, 5, 5)
	// Left face of the solid border cell (0,2).
	g.U[g.uIdx(0, 2)] = 3
	if got := g.DivergenceL1(); got != 0 {
		t.Errorf("DivergenceL1() = %v, want 0", got)
	}

	g.U[g.uIdx(3, 2)] = 1
	g.V[g.vIdx(1, 1)] = 0.5
	// Cell (2,2) gains +1, (3,2) loses 1, (1,1) loses 0.5, (1,0) is solid.
	if got, want := g.DivergenceL1(), 2.5; got != want {
		t.Errorf("DivergenceL1() = %v, want %v", got, want)
	}
	if got, want := g.MeanDivergence(), 2.5/9; got != want {
		t.Errorf("MeanDivergence() = %v, want %v", got, want)
	}
}

func TestAverageWaterDensity(t *testing.T) {
	g := mustGrid(t, 5, 5)
	if got := g.AverageWaterDensity(); got != 0 {
		t.Errorf("empty grid average = %v, want 0", got)
	}
	g.IsWater[g.cIdx(1, 1)] = true
	g.IsWater[g.cIdx(2, 1)] = true
	g.Density[g.cIdx(1, 1)] = 1
	g.Density[g.cIdx(2, 1)] = 2
	g.Density[g.cIdx(3, 3)] = 100
	if got := g.AverageWaterDensity(); got != 1.5 {
		t.Errorf("AverageWaterDensity() = %v, want 1.5", got)
	}
}
