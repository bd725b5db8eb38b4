// Package main provides CMA-ES optimization of phage life-history parameters.
package main

import (
	"math"

	"github.com/pthm-cable/symsoup/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	apply   func(cfg *config.Config, v float64)
	extract func(cfg *config.Config) float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "lysis_chance", Path: "lysis.lysis_chance", Min: 0, Max: 1, Default: 0.5,
				apply:   func(c *config.Config, v float64) { c.Lysis.Chance = v },
				extract: func(c *config.Config) float64 { return c.Lysis.Chance },
			},
			{
				Name: "burst_time", Path: "lysis.burst_time", Min: 1, Max: 50, Default: 10,
				apply:   func(c *config.Config, v float64) { c.Lysis.BurstTime = int(math.Round(v)) },
				extract: func(c *config.Config) float64 { return float64(c.Lysis.BurstTime) },
			},
			{
				Name: "sym_lysis_res", Path: "lysis.sym_lysis_res", Min: 0.1, Max: 20, Default: 1,
				apply:   func(c *config.Config, v float64) { c.Lysis.Res = v },
				extract: func(c *config.Config) float64 { return c.Lysis.Res },
			},
			{
				Name: "vertical_transmission", Path: "transmission.vertical_transmission", Min: 0, Max: 1, Default: 1,
				apply:   func(c *config.Config, v float64) { c.Transmission.Vertical = v },
				extract: func(c *config.Config) float64 { return c.Transmission.Vertical },
			},
			{
				Name: "sym_horiz_trans_res", Path: "symbiont.sym_horiz_trans_res", Min: 10, Max: 500, Default: 100,
				apply:   func(c *config.Config, v float64) { c.Symbiont.HorizTransRes = v },
				extract: func(c *config.Config) float64 { return c.Symbiont.HorizTransRes },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config and recomputes
// derived values. Lysis is always switched on: the search is over phages.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].apply(cfg, v)
	}
	cfg.Lysis.Enabled = true
	cfg.Simulation.Mode = config.ModeLysis
	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.extract(cfg)
	}
	return v
}
