package fluid

import (
	"fmt"
	"math/rand"
)

// Step phase names reported to a PhaseTimer.
const (
	PhaseIntegrate = "integrate"
	PhaseClamp     = "clamp"
	PhaseMasks     = "masks"
	PhaseScatter   = "scatter"
	PhaseSolids    = "solids"
	PhaseDensity   = "density"
	PhaseProject   = "project"
	PhaseGather    = "gather"
)

// PhaseTimer receives a call as each step phase begins.
type PhaseTimer interface {
	StartPhase(name string)
}

// StepStats summarises one simulation step.
type StepStats struct {
	Step             int
	DivergenceBefore float64 // L1 over non-solid cells, after scatter
	DivergenceAfter  float64 // L1 over non-solid cells, after projection
	AverageDensity   float64
	WaterCells       int
	MaxSpeed         float64
	MeanSpeed        float64
}

// Simulator advances a PIC fluid: particles carry velocity, the grid
// enforces incompressibility.
type Simulator struct {
	params Params

	Grid      *Grid
	Particles *Particles
	Projector *Projector

	weightsU []float64
	weightsV []float64

	timer PhaseTimer
	stats StepStats
	steps int
}

// New validates params, builds the grid with its border and obstacles,
// and seeds particles from rng.
func New(params Params, rng *rand.Rand) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g, err := NewGrid(params.Width, params.Height)
	if err != nil {
		return nil, err
	}
	for _, r := range params.Obstacles {
		g.FillSolid(r)
	}

	p := NewParticles(params.NumParticles)
	p.Seed(rng, params.Spawn)

	return &Simulator{
		params:    params,
		Grid:      g,
		Particles: p,
		Projector: NewProjector(params.Relaxation, params.Stiffness, params.Ordering, params.Workers),
		weightsU:  make([]float64, len(g.U)),
		weightsV:  make([]float64, len(g.V)),
	}, nil
}

// Params returns the parameters currently in effect.
func (s *Simulator) Params() Params { return s.params }

// Steps returns the number of completed steps.
func (s *Simulator) Steps() int { return s.steps }

// Stats returns the summary of the last step.
func (s *Simulator) Stats() StepStats { return s.stats }

// SetPhaseTimer installs t to receive phase boundaries. nil disables timing.
func (s *Simulator) SetPhaseTimer(t PhaseTimer) { s.timer = t }

// SetGravity changes gravity for subsequent steps.
func (s *Simulator) SetGravity(g float64) { s.params.Gravity = g }

// SetIterations changes the projection iteration count. Negative values are ignored.
func (s *Simulator) SetIterations(n int) {
	if n >= 0 {
		s.params.Iterations = n
	}
}

// SetDensityBias toggles the over-compression term.
func (s *Simulator) SetDensityBias(on bool) { s.params.DensityBias = on }

// SetStiffness changes the over-compression weight. Negative values are ignored.
func (s *Simulator) SetStiffness(k float64) {
	if k >= 0 {
		s.params.Stiffness = k
		s.Projector.Stiffness = k
	}
}

// SetRelaxation changes the over-relaxation factor. Values outside (0,2) are ignored.
func (s *Simulator) SetRelaxation(omega float64) {
	if omega > 0 && omega < 2 {
		s.params.Relaxation = omega
		s.Projector.Relaxation = omega
	}
}

// SetOrdering switches the projector sweep order.
func (s *Simulator) SetOrdering(o Ordering) {
	s.params.Ordering = o
	s.Projector.Ordering = o
}

func (s *Simulator) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step advances the simulation by one time step.
func (s *Simulator) Step() {
	g, p := s.Grid, s.Particles

	s.phase(PhaseIntegrate)
	p.Integrate(s.params.Gravity, s.params.DT)

	s.phase(PhaseClamp)
	p.ClampToBounds(float64(g.W), float64(g.H), s.params.ClampEpsilon)

	s.phase(PhaseMasks)
	g.UpdateWaterMasks(p)

	s.phase(PhaseScatter)
	s.particlesToGrid()

	s.phase(PhaseSolids)
	g.ZeroSolidFaces()

	s.phase(PhaseDensity)
	avg := s.updateDensity()

	s.phase(PhaseProject)
	before := g.DivergenceL1()
	if s.params.DensityBias {
		s.Projector.Run(g, s.params.Iterations, g.Density, avg)
	} else {
		s.Projector.Run(g, s.params.Iterations, nil, 0)
	}
	after := g.DivergenceL1()

	s.phase(PhaseGather)
	s.gridToParticles()

	s.steps++
	s.stats = StepStats{
		Step:             s.steps,
		DivergenceBefore: before,
		DivergenceAfter:  after,
		AverageDensity:   avg,
		WaterCells:       g.WaterCells(),
		MaxSpeed:         p.MaxSpeed(),
		MeanSpeed:        p.MeanSpeed(),
	}
}

// Sample offsets relative to particle positions: u nodes sit at the middle
// of vertical faces, v nodes at the middle of horizontal faces, density at
// cell centres.
const half = 0.5

func (s *Simulator) particlesToGrid() {
	g, p := s.Grid, s.Particles
	clear(g.U)
	clear(g.V)
	clear(s.weightsU)
	clear(s.weightsV)
	for i := range p.X {
		x, y := p.X[i], p.Y[i]
		g.Scatter(x, y-half, p.VX[i], s.weightsU, g.U, FamilyU)
		g.Scatter(x-half, y, p.VY[i], s.weightsV, g.V, FamilyV)
	}
	Normalize(g.U, s.weightsU)
	Normalize(g.V, s.weightsV)
}

// updateDensity splats unit mass per particle into the cell centres and
// returns the mean over water cells.
func (s *Simulator) updateDensity() float64 {
	g, p := s.Grid, s.Particles
	clear(g.Density)
	for i := range p.X {
		g.SplatWeights(p.X[i]-half, p.Y[i]-half, g.Density, FamilyCell)
	}
	return g.AverageWaterDensity()
}

func (s *Simulator) gridToParticles() {
	g, p := s.Grid, s.Particles
	for i := range p.X {
		x, y := p.X[i], p.Y[i]
		p.VX[i] = g.Gather(x, y-half, g.U, g.IsWaterU, FamilyU)
		p.VY[i] = g.Gather(x-half, y, g.V, g.IsWaterV, FamilyV)
	}
}

// Reset reseeds the particles from rng and clears grid velocities.
func (s *Simulator) Reset(rng *rand.Rand) {
	s.Particles.Seed(rng, s.params.Spawn)
	s.Grid.ResetVelocity()
	s.steps = 0
	s.stats = StepStats{}
}

// Restore replaces particle state, typically from a snapshot.
// All four slices must have equal length.
func (s *Simulator) Restore(x, y, vx, vy []float64, steps int) error {
	n := len(x)
	if len(y) != n || len(vx) != n || len(vy) != n {
		return fmt.Errorf("%w: particle slices have mismatched lengths %d/%d/%d/%d",
			ErrInvalidParams, len(x), len(y), len(vx), len(vy))
	}
	if steps < 0 {
		return fmt.Errorf("%w: negative step count %d", ErrInvalidParams, steps)
	}
	p := NewParticles(n)
	copy(p.X, x)
	copy(p.Y, y)
	copy(p.VX, vx)
	copy(p.VY, vy)
	s.Particles = p
	s.params.NumParticles = n
	s.Grid.ResetVelocity()
	s.steps = steps
	return nil
}

// Close releases solver workers.
func (s *Simulator) Close() {
	s.Projector.Close()
}
