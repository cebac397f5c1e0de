package fluid

import (
	"fmt"
	"math"
)

// Ordering selects the sweep order used by the projector.
type Ordering uint8

const (
	// OrderGaussSeidel visits cells row-major, each cell seeing its predecessors' updates.
	OrderGaussSeidel Ordering = iota
	// OrderRedBlack relaxes the odd checkerboard colour, then the even one.
	OrderRedBlack
)

func (o Ordering) String() string {
	switch o {
	case OrderGaussSeidel:
		return "gauss_seidel"
	case OrderRedBlack:
		return "red_black"
	}
	return fmt.Sprintf("Ordering(%d)", uint8(o))
}

// ParseOrdering maps a config name to an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "gauss_seidel", "gs":
		return OrderGaussSeidel, nil
	case "red_black", "rb":
		return OrderRedBlack, nil
	}
	return 0, fmt.Errorf("%w: unknown solver ordering %q", ErrInvalidParams, s)
}

// Region is an axis-aligned rectangle in grid units.
type Region struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Rect is an integer cell rectangle, used for interior obstacles.
type Rect struct {
	X, Y int
	W, H int
}

// Params holds everything needed to construct a Simulator.
type Params struct {
	Width  int // cells along x, including the solid border
	Height int // cells along y, including the solid border

	Gravity      float64 // added to particle vy every step, scaled by DT
	DT           float64
	ClampEpsilon float64 // particles leaving the domain are snapped to extent-ClampEpsilon

	NumParticles int
	Spawn        Region
	Obstacles    []Rect

	Iterations  int
	Ordering    Ordering
	Relaxation  float64 // 1 is plain Gauss-Seidel, (1,2) over-relaxes
	DensityBias bool
	Stiffness   float64 // weight of the over-compression term when DensityBias is set
	Workers     int     // red-black worker count, 0 means GOMAXPROCS
}

// DefaultParams returns a small tank with a water column on the left.
func DefaultParams() Params {
	return Params{
		Width:        100,
		Height:       100,
		Gravity:      5,
		DT:           0.05,
		ClampEpsilon: 1e-4,
		NumParticles: 5000,
		Spawn:        Region{MinX: 3, MinY: 3, MaxX: 62, MaxY: 96},
		Iterations:   30,
		Ordering:     OrderGaussSeidel,
		Relaxation:   1,
		DensityBias:  true,
		Stiffness:    1,
	}
}

// Validate reports the first unusable field.
func (p Params) Validate() error {
	switch {
	case p.Width < 3 || p.Height < 3:
		return fmt.Errorf("%w: grid %dx%d has no interior cells", ErrInvalidParams, p.Width, p.Height)
	case !(p.DT > 0) || math.IsInf(p.DT, 0):
		return fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidParams, p.DT)
	case math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0):
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidParams, p.Gravity)
	case !(p.ClampEpsilon > 0) || p.ClampEpsilon >= 1:
		return fmt.Errorf("%w: clamp epsilon must be in (0,1), got %v", ErrInvalidParams, p.ClampEpsilon)
	case p.NumParticles < 0:
		return fmt.Errorf("%w: negative particle count %d", ErrInvalidParams, p.NumParticles)
	case p.Iterations < 0:
		return fmt.Errorf("%w: negative iteration count %d", ErrInvalidParams, p.Iterations)
	case !(p.Relaxation > 0 && p.Relaxation < 2):
		return fmt.Errorf("%w: relaxation must be in (0,2), got %v", ErrInvalidParams, p.Relaxation)
	case !(p.Stiffness >= 0) || math.IsInf(p.Stiffness, 0):
		return fmt.Errorf("%w: stiffness must be non-negative, got %v", ErrInvalidParams, p.Stiffness)
	case p.Ordering != OrderGaussSeidel && p.Ordering != OrderRedBlack:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Ordering)
	case p.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidParams, p.Workers)
	}
	if p.NumParticles > 0 {
		s := p.Spawn
		if !(s.MaxX > s.MinX && s.MaxY > s.MinY) {
			return fmt.Errorf("%w: empty spawn region %+v", ErrInvalidParams, s)
		}
		if s.MinX < 0 || s.MinY < 0 || s.MaxX > float64(p.Width) || s.MaxY > float64(p.Height) {
			return fmt.Errorf("%w: spawn region %+v outside %dx%d grid", ErrInvalidParams, s, p.Width, p.Height)
		}
	}
	for _, r := range p.Obstacles {
		if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 || r.X+r.W > p.Width || r.Y+r.H > p.Height {
			return fmt.Errorf("%w: obstacle %+v outside %dx%d grid", ErrInvalidParams, r, p.Width, p.Height)
		}
	}
	return nil
}
