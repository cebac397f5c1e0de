package fluid

// Projector drives grid velocities towards zero divergence by relaxing
// one cell at a time.
type Projector struct {
	Relaxation float64
	Stiffness  float64
	Ordering   Ordering

	pool *rowPool
}

// NewProjector returns a projector. workers only affects OrderRedBlack;
// 0 selects GOMAXPROCS.
func NewProjector(relaxation, stiffness float64, ordering Ordering, workers int) *Projector {
	return &Projector{
		Relaxation: relaxation,
		Stiffness:  stiffness,
		Ordering:   ordering,
		pool:       newRowPool(workers),
	}
}

// Close stops the red-black workers, if any were started.
func (p *Projector) Close() {
	if p.pool != nil {
		p.pool.stopWorkers()
	}
}

// sweep carries the per-step inputs shared by every relaxed cell.
type sweep struct {
	g       *Grid
	density []float64 // nil disables the compression term
	avg     float64
	k       float64
	omega   float64
}

func (p *Projector) sweepFor(g *Grid, density []float64, avg float64) sweep {
	s := sweep{g: g, omega: p.Relaxation, k: p.Stiffness, avg: avg, density: density}
	if !(avg > 0) || !(s.k > 0) {
		s.density = nil
	}
	return s
}

// ProjectStep performs one full relaxation pass over the grid.
// density and avg enable the over-compression term; pass nil and 0 to disable it.
func (p *Projector) ProjectStep(g *Grid, density []float64, avg float64) {
	s := p.sweepFor(g, density, avg)
	if p.Ordering == OrderRedBlack {
		p.redBlackStep(s)
		return
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			s.relax(x, y)
		}
	}
}

// Run performs iters projection passes.
func (p *Projector) Run(g *Grid, iters int, density []float64, avg float64) {
	for range iters {
		p.ProjectStep(g, density, avg)
	}
}

// ProjectCell relaxes a single cell and reports whether it was adjusted.
// Solid cells and cells with no open face are left alone.
func (p *Projector) ProjectCell(g *Grid, x, y int, density []float64, avg float64) bool {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return false
	}
	s := p.sweepFor(g, density, avg)
	return s.relax(x, y)
}

func (s *sweep) relax(x, y int) bool {
	g := s.g
	c := g.cIdx(x, y)
	if g.State[c] == CellSolid {
		return false
	}
	ul, ur := g.uIdx(x, y), g.uIdx(x+1, y)
	vu, vd := g.vIdx(x, y), g.vIdx(x, y+1)

	sl, sr := g.NotSolidU[ul], g.NotSolidU[ur]
	su, sd := g.NotSolidV[vu], g.NotSolidV[vd]
	open := sl + sr + su + sd
	if open == 0 {
		return false
	}

	div := g.U[ur] - g.U[ul] + g.V[vd] - g.V[vu]
	if s.density != nil {
		if over := s.density[c] - s.avg; over > 0 {
			div -= s.k * over
		}
	}

	corr := -div / open * s.omega
	g.U[ur] += corr * sr
	g.U[ul] -= corr * sl
	g.V[vd] += corr * sd
	g.V[vu] -= corr * su
	return true
}
