package fluid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Family identifies one of the three staggered array shapes of a Grid.
type Family uint8

const (
	FamilyU    Family = iota // x-velocity faces, (W+1) x H
	FamilyV                  // y-velocity faces, W x (H+1)
	FamilyCell               // cell centres, W x H
)

func (f Family) String() string {
	switch f {
	case FamilyU:
		return "u"
	case FamilyV:
		return "v"
	case FamilyCell:
		return "cell"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// CellState marks a cell as open to flow or blocked.
type CellState uint8

const (
	CellFluid CellState = iota
	CellSolid
)

// Grid is a marker-and-cell staggered grid. Horizontal velocities live on
// vertical cell faces, vertical velocities on horizontal faces. All arrays
// are flat and row-major with the stride of their family.
type Grid struct {
	W, H int

	U []float64 // (W+1)*H, index x+y*(W+1)
	V []float64 // W*(H+1), index x+y*W

	State     []CellState
	NotSolidU []float64 // 0 when either adjacent cell is solid, else 1
	NotSolidV []float64

	IsWater  []bool
	IsWaterU []float64 // 1 when either adjacent cell holds a particle
	IsWaterV []float64

	Density []float64 // per cell splatted particle mass

	div []float64 // scratch for divergence norms
}

// NewGrid allocates a grid whose outer ring of cells is solid.
func NewGrid(w, h int) (*Grid, error) {
	if w < 3 || h < 3 {
		return nil, fmt.Errorf("%w: grid %dx%d has no interior cells", ErrInvalidParams, w, h)
	}
	nu, nv, nc := (w+1)*h, w*(h+1), w*h
	g := &Grid{
		W:         w,
		H:         h,
		U:         make([]float64, nu),
		V:         make([]float64, nv),
		State:     make([]CellState, nc),
		NotSolidU: make([]float64, nu),
		NotSolidV: make([]float64, nv),
		IsWater:   make([]bool, nc),
		IsWaterU:  make([]float64, nu),
		IsWaterV:  make([]float64, nv),
		Density:   make([]float64, nc),
		div:       make([]float64, nc),
	}
	for x := 0; x < w; x++ {
		g.State[x] = CellSolid
		g.State[x+(h-1)*w] = CellSolid
	}
	for y := 0; y < h; y++ {
		g.State[y*w] = CellSolid
		g.State[w-1+y*w] = CellSolid
	}
	g.deriveFaceMasks()
	return g, nil
}

// Extent returns the width and height of a family's array.
func (g *Grid) Extent(f Family) (int, int) {
	switch f {
	case FamilyU:
		return g.W + 1, g.H
	case FamilyV:
		return g.W, g.H + 1
	}
	return g.W, g.H
}

// Index maps (x, y) to a flat index in the given family.
func (g *Grid) Index(x, y int, f Family) (int, error) {
	w, h := g.Extent(f)
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, fmt.Errorf("%w: (%d,%d) outside %s extent %dx%d", ErrOutOfRange, x, y, f, w, h)
	}
	return x + y*w, nil
}

func (g *Grid) uIdx(x, y int) int { return x + y*(g.W+1) }
func (g *Grid) vIdx(x, y int) int { return x + y*g.W }
func (g *Grid) cIdx(x, y int) int { return x + y*g.W }

func (g *Grid) isBorder(x, y int) bool {
	return x == 0 || y == 0 || x == g.W-1 || y == g.H-1
}

// SetSolid marks a cell solid or fluid and rebuilds the face masks.
// Border cells cannot be opened.
func (g *Grid) SetSolid(x, y int, solid bool) error {
	i, err := g.Index(x, y, FamilyCell)
	if err != nil {
		return err
	}
	if !solid && g.isBorder(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrBorderCell, x, y)
	}
	if solid {
		g.State[i] = CellSolid
	} else {
		g.State[i] = CellFluid
	}
	g.deriveFaceMasks()
	return nil
}

// FillSolid marks every cell of r solid. Cells outside the grid are ignored.
func (g *Grid) FillSolid(r Rect) {
	for y := max(r.Y, 0); y < min(r.Y+r.H, g.H); y++ {
		for x := max(r.X, 0); x < min(r.X+r.W, g.W); x++ {
			g.State[g.cIdx(x, y)] = CellSolid
		}
	}
	g.deriveFaceMasks()
}

// IsSolid reports whether (x, y) is a solid cell. Coordinates outside
// the grid count as solid.
func (g *Grid) IsSolid(x, y int) bool {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return true
	}
	return g.State[g.cIdx(x, y)] == CellSolid
}

func (g *Grid) deriveFaceMasks() {
	for i := range g.NotSolidU {
		g.NotSolidU[i] = 1
	}
	for i := range g.NotSolidV {
		g.NotSolidV[i] = 1
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.State[g.cIdx(x, y)] != CellSolid {
				continue
			}
			g.NotSolidU[g.uIdx(x, y)] = 0
			g.NotSolidU[g.uIdx(x+1, y)] = 0
			g.NotSolidV[g.vIdx(x, y)] = 0
			g.NotSolidV[g.vIdx(x, y+1)] = 0
		}
	}
}

// ZeroSolidFaces clears velocity on every face touching a solid cell.
func (g *Grid) ZeroSolidFaces() {
	for i, open := range g.NotSolidU {
		if open == 0 {
			g.U[i] = 0
		}
	}
	for i, open := range g.NotSolidV {
		if open == 0 {
			g.V[i] = 0
		}
	}
}

// ResetVelocity zeroes both velocity arrays.
func (g *Grid) ResetVelocity() {
	clear(g.U)
	clear(g.V)
}

// UpdateWaterMasks recomputes which cells and faces are occupied by particles.
// Particle positions must already be clamped to the domain.
func (g *Grid) UpdateWaterMasks(p *Particles) {
	clear(g.IsWater)
	clear(g.IsWaterU)
	clear(g.IsWaterV)
	for i := range p.X {
		ix, iy := g.cellOf(p.X[i], p.Y[i])
		g.IsWater[g.cIdx(ix, iy)] = true
		g.IsWaterU[g.uIdx(ix, iy)] = 1
		g.IsWaterU[g.uIdx(ix+1, iy)] = 1
		g.IsWaterV[g.vIdx(ix, iy)] = 1
		g.IsWaterV[g.vIdx(ix, iy+1)] = 1
	}
}

// cellOf returns the cell containing (x, y), clamped to the grid.
func (g *Grid) cellOf(x, y float64) (int, int) {
	return clampCell(x, g.W), clampCell(y, g.H)
}

func clampCell(v float64, n int) int {
	if !(v > 0) {
		return 0
	}
	i := int(math.Floor(v))
	if i > n-1 {
		return n - 1
	}
	return i
}

// WaterCells counts cells that held at least one particle at the last mask update.
func (g *Grid) WaterCells() int {
	n := 0
	for _, w := range g.IsWater {
		if w {
			n++
		}
	}
	return n
}

// FluidCells counts non-solid cells.
func (g *Grid) FluidCells() int {
	n := 0
	for _, s := range g.State {
		if s != CellSolid {
			n++
		}
	}
	return n
}

// Divergence returns the net outflow of cell (x, y). The cell must be in range.
func (g *Grid) Divergence(x, y int) float64 {
	return g.U[g.uIdx(x+1, y)] - g.U[g.uIdx(x, y)] +
		g.V[g.vIdx(x, y+1)] - g.V[g.vIdx(x, y)]
}

// DivergenceL1 sums |divergence| over all non-solid cells.
func (g *Grid) DivergenceL1() float64 {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			c := g.cIdx(x, y)
			if g.State[c] == CellSolid {
				g.div[c] = 0
				continue
			}
			g.div[c] = g.Divergence(x, y)
		}
	}
	return floats.Norm(g.div, 1)
}

// MeanDivergence is DivergenceL1 divided by the number of non-solid cells.
func (g *Grid) MeanDivergence() float64 {
	n := g.FluidCells()
	if n == 0 {
		return 0
	}
	return g.DivergenceL1() / float64(n)
}

// AverageWaterDensity averages Density over cells flagged as water.
// It returns 0 when no cell holds water.
func (g *Grid) AverageWaterDensity() float64 {
	var sum float64
	n := 0
	for c, w := range g.IsWater {
		if w {
			sum += g.Density[c]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
