// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slosh/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Particles ParticlesConfig `yaml:"particles"`
	Solver    SolverConfig    `yaml:"solver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Render    RenderConfig    `yaml:"render"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the staggered grid shape.
type GridConfig struct {
	Width     int              `yaml:"width"`
	Height    int              `yaml:"height"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig is an interior solid rectangle in cell coordinates.
type ObstacleConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	DT           float64 `yaml:"dt"`
	ClampEpsilon float64 `yaml:"clamp_epsilon"`
}

// ParticlesConfig holds particle count and initial placement.
type ParticlesConfig struct {
	Count int         `yaml:"count"`
	Spawn SpawnConfig `yaml:"spawn"`
}

// SpawnConfig is the initial particle region as fractions of the grid.
type SpawnConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// SolverConfig holds incompressibility projection parameters.
type SolverConfig struct {
	Iterations  int     `yaml:"iterations"`
	Ordering    string  `yaml:"ordering"`
	Relaxation  float64 `yaml:"relaxation"`
	DensityBias bool    `yaml:"density_bias"`
	Stiffness   float64 `yaml:"stiffness"`
	Workers     int     `yaml:"workers"`
}

// TelemetryConfig holds stats and anomaly detection parameters.
type TelemetryConfig struct {
	StatsWindow     float64 `yaml:"stats_window"`
	PerfWindow      int     `yaml:"perf_window"`
	SpikeMultiplier float64 `yaml:"spike_multiplier"`
	SettleSpeed     float64 `yaml:"settle_speed"`
	SettleWindows   int     `yaml:"settle_windows"`
}

// RenderConfig holds viewer defaults.
type RenderConfig struct {
	ParticleRadius float32 `yaml:"particle_radius"`
	ShowGrid       bool    `yaml:"show_grid"`
	ShowDensity    bool    `yaml:"show_density"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Ordering    fluid.Ordering
	CellSize    float32 // screen pixels per grid cell
	StatsWindow int     // steps per stats window
	Params      fluid.Params
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config and
// validates the resulting solver parameters.
func (c *Config) computeDerived() error {
	ord, err := fluid.ParseOrdering(c.Solver.Ordering)
	if err != nil {
		return err
	}
	c.Derived.Ordering = ord

	if c.Grid.Width > 0 && c.Grid.Height > 0 {
		c.Derived.CellSize = float32(math.Min(
			float64(c.Screen.Width)/float64(c.Grid.Width),
			float64(c.Screen.Height)/float64(c.Grid.Height)))
	}

	c.Derived.StatsWindow = 1
	if c.Physics.DT > 0 {
		c.Derived.StatsWindow = max(1, int(math.Round(c.Telemetry.StatsWindow/c.Physics.DT)))
	}

	c.Derived.Params = c.params()
	if err := c.Derived.Params.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// params converts the loaded config into solver parameters. Spawn fractions
// are scaled to the grid and kept off the solid border.
func (c *Config) params() fluid.Params {
	w, h := float64(c.Grid.Width), float64(c.Grid.Height)
	sp := c.Particles.Spawn
	spawn := fluid.Region{
		MinX: math.Max(sp.MinX*w, 1),
		MinY: math.Max(sp.MinY*h, 1),
		MaxX: math.Min(sp.MaxX*w, w-1),
		MaxY: math.Min(sp.MaxY*h, h-1),
	}

	obstacles := make([]fluid.Rect, len(c.Grid.Obstacles))
	for i, o := range c.Grid.Obstacles {
		obstacles[i] = fluid.Rect{X: o.X, Y: o.Y, W: o.W, H: o.H}
	}

	return fluid.Params{
		Width:        c.Grid.Width,
		Height:       c.Grid.Height,
		Gravity:      c.Physics.Gravity,
		DT:           c.Physics.DT,
		ClampEpsilon: c.Physics.ClampEpsilon,
		NumParticles: c.Particles.Count,
		Spawn:        spawn,
		Obstacles:    obstacles,
		Iterations:   c.Solver.Iterations,
		Ordering:     c.Derived.Ordering,
		Relaxation:   c.Solver.Relaxation,
		DensityBias:  c.Solver.DensityBias,
		Stiffness:    c.Solver.Stiffness,
		Workers:      c.Solver.Workers,
	}
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() error {
	return c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
