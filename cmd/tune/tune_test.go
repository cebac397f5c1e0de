package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/telemetry"
)

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	want := pv.DefaultVector()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: config has %v, default %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{2, 1.5, 40}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: got %v want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestApplyToConfigClampsAndRounds(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	if err := pv.ApplyToConfig(cfg, []float64{-1, 3, 12.6}); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
	if cfg.Solver.Stiffness != 0 {
		t.Errorf("stiffness = %v, want clamped 0", cfg.Solver.Stiffness)
	}
	if cfg.Solver.Relaxation != 1.95 {
		t.Errorf("relaxation = %v, want clamped 1.95", cfg.Solver.Relaxation)
	}
	if cfg.Solver.Iterations != 13 {
		t.Errorf("iterations = %d, want 13", cfg.Solver.Iterations)
	}
	if cfg.Derived.Params.Iterations != 13 || cfg.Derived.Params.Relaxation != 1.95 {
		t.Errorf("derived params not refreshed: %+v", cfg.Derived.Params)
	}
}

func TestScoreWindows(t *testing.T) {
	w := func(before, after, mean, std float64) telemetry.WindowStats {
		return telemetry.WindowStats{DivBeforeMean: before, DivAfterMean: after, DensityMean: mean, DensityStd: std}
	}

	t.Run("skips warmup", func(t *testing.T) {
		s := scoreWindows([]telemetry.WindowStats{
			w(1, 1, 1, 1), w(1, 1, 1, 1), // warmup
			w(10, 1, 2, 0.5), w(30, 3, 2, 0.5),
		})
		if math.Abs(s.Residual-0.1) > 1e-12 {
			t.Errorf("residual = %v, want 0.1", s.Residual)
		}
		if math.Abs(s.DensityCV-0.25) > 1e-12 {
			t.Errorf("density cv = %v, want 0.25", s.DensityCV)
		}
		want := weightResidual*0.1 + weightDensityCV*0.25
		if math.Abs(s.Fitness-want) > 1e-12 {
			t.Errorf("fitness = %v, want %v", s.Fitness, want)
		}
	})

	t.Run("non-finite penalised", func(t *testing.T) {
		bad := w(1, 0, 1, 0)
		bad.NonFinite = 4
		s := scoreWindows([]telemetry.WindowStats{w(1, 0, 1, 0), w(1, 0, 1, 0), bad})
		if s.Fitness != nonFinitePenalty || s.NonFinite != 4 {
			t.Errorf("got %+v", s)
		}
	})

	t.Run("too short", func(t *testing.T) {
		if s := scoreWindows(nil); s.Fitness != nonFinitePenalty {
			t.Errorf("fitness = %v, want penalty", s.Fitness)
		}
	})
}

func TestEvaluateSmallTank(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Grid.Width, cfg.Grid.Height = 12, 12
	cfg.Particles.Count = 80
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 100, []int64{1, 2}, cfg)
	fe.statsWindow = 1.0 // 20 steps per window, 5 windows

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(f) || f >= nonFinitePenalty {
		t.Fatalf("fitness = %v for default settings", f)
	}
	if s := fe.LastScore(); s.Residual < 0 || math.IsInf(s.Residual, 0) {
		t.Errorf("residual ratio = %v", s.Residual)
	}
	if cfg.Solver.Iterations != 30 {
		t.Errorf("base config modified: iterations %d", cfg.Solver.Iterations)
	}
}
