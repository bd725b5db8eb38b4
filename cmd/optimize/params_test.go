package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/telemetry"
)

func TestApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	pv.ApplyToConfig(cfg, []float64{0.25, 12.6, 3, 2, 5})

	if cfg.Lysis.Chance != 0.25 {
		t.Errorf("lysis_chance = %v, want 0.25", cfg.Lysis.Chance)
	}
	if cfg.Lysis.BurstTime != 13 {
		t.Errorf("burst_time = %d, want 13", cfg.Lysis.BurstTime)
	}
	if cfg.Lysis.Res != 3 {
		t.Errorf("sym_lysis_res = %v, want 3", cfg.Lysis.Res)
	}
	if cfg.Transmission.Vertical != 1 {
		t.Errorf("vertical_transmission = %v, want clamped to 1", cfg.Transmission.Vertical)
	}
	if cfg.Symbiont.HorizTransRes != 10 {
		t.Errorf("sym_horiz_trans_res = %v, want clamped to 10", cfg.Symbiont.HorizTransRes)
	}
	if !cfg.Lysis.Enabled || cfg.Simulation.Mode != config.ModeLysis {
		t.Error("applied config should run phages with lysis on")
	}

	got := pv.ExtractFromConfig(cfg)
	want := []float64{0.25, 13, 3, 1, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("extract[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeBounds(t *testing.T) {
	pv := NewParamVector()

	n := pv.Normalize(pv.DefaultVector())
	for i, v := range n {
		if v < 0 || v > 1 {
			t.Errorf("%s default normalizes to %v, outside [0, 1]", pv.Specs[i].Name, v)
		}
	}

	raw := pv.Denormalize(n)
	for i, v := range raw {
		if math.Abs(v-pv.Specs[i].Default) > 1e-9 {
			t.Errorf("%s = %v after denormalize, want %v", pv.Specs[i].Name, v, pv.Specs[i].Default)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	steady := make([]telemetry.UpdateStats, 10)
	for i := range steady {
		steady[i] = telemetry.UpdateStats{Hosts: 100, InfectedHosts: 50}
	}
	if q := computeQuality(steady); math.Abs(q-1) > 1e-9 {
		t.Errorf("steady half-infected quality = %v, want 1", q)
	}

	if q := computeQuality(steady[:2]); q != 0 {
		t.Errorf("warmup-only quality = %v, want 0", q)
	}

	allInfected := make([]telemetry.UpdateStats, 10)
	for i := range allInfected {
		allInfected[i] = telemetry.UpdateStats{Hosts: 100, InfectedHosts: 100}
	}
	if q := computeQuality(allInfected); math.Abs(q-0.5) > 1e-9 {
		t.Errorf("fully infected quality = %v, want 0.5", q)
	}
}

func TestEvaluate(t *testing.T) {
	cfg := config.Default()
	cfg.World.GridX, cfg.World.GridY = 10, 10
	cfg.Simulation.InitialHosts = 30
	cfg.Simulation.InitialSyms = 30
	cfg.Telemetry.DataInterval = 10
	cfg.ComputeDerived()

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 50, []int64{1, 2}, cfg)

	fitness := fe.Evaluate(pv.DefaultVector())
	if fitness > 0 || fitness < -50*1.2 {
		t.Errorf("fitness = %v, want within [-60, 0]", fitness)
	}
	if math.IsInf(fe.bestFitness, 1) {
		t.Error("best fitness not recorded")
	}
}
