package main

import (
	"math"
	"slices"
	"sync"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/game"
	"github.com/pthm-cable/slosh/telemetry"
)

// Fitness weights (lower fitness = better).
const (
	weightResidual  = 1.0 // residual / scattered divergence
	weightDensityCV = 0.5 // spread of water-cell density
	weightCost      = 0.1 // iterations relative to the upper bound

	warmupWindows     = 2   // skip first N windows while the column settles
	nonFinitePenalty  = 1e6 // any NaN or Inf particle
	invalidParamsCost = 1e9
)

// FitnessEvaluator runs headless simulations and scores solver quality.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	last        Score
}

// Score breaks a fitness value into its components.
type Score struct {
	Fitness   float64
	Residual  float64
	DensityCV float64
	NonFinite int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the averaged score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for a raw parameter vector, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return invalidParamsCost
	}
	cost := weightCost * float64(cfg.Solver.Iterations) / fe.params.Specs[2].Max

	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = scoreWindows(fe.runSimulation(cfg, s))
		}(i, seed)
	}
	wg.Wait()

	var avg Score
	for _, s := range scores {
		avg.Fitness += s.Fitness
		avg.Residual += s.Residual
		avg.DensityCV += s.DensityCV
		avg.NonFinite += s.NonFinite
	}
	n := float64(len(scores))
	avg.Fitness = avg.Fitness/n + cost
	avg.Residual /= n
	avg.DensityCV /= n

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avg.Fitness)
	fe.last = avg
	fe.mu.Unlock()

	return avg.Fitness
}

// runSimulation runs one seed to maxTicks and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// copyConfig returns a copy of the base config that can be modified freely.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Grid.Obstacles = slices.Clone(fe.baseConfig.Grid.Obstacles)
	return &cfg
}

// scoreWindows turns a run's stats windows into a score.
// A run with no usable windows scores as badly as a non-finite one.
func scoreWindows(windows []telemetry.WindowStats) Score {
	var s Score
	for _, w := range windows {
		s.NonFinite = max(s.NonFinite, w.NonFinite)
	}
	if s.NonFinite > 0 || len(windows) <= warmupWindows {
		s.Fitness = nonFinitePenalty
		return s
	}

	var before, after, cv float64
	valid := windows[warmupWindows:]
	for _, w := range valid {
		before += w.DivBeforeMean
		after += w.DivAfterMean
		cv += w.DensityCV()
	}
	if before > 0 {
		s.Residual = after / before
	}
	s.DensityCV = cv / float64(len(valid))

	s.Fitness = weightResidual*s.Residual + weightDensityCV*s.DensityCV
	if math.IsNaN(s.Fitness) || math.IsInf(s.Fitness, 0) {
		s.Fitness = nonFinitePenalty
	}
	return s
}
