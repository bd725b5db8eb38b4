package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/sim"
	"github.com/pthm-cable/symsoup/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxUpdates int
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.UpdateStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxUpdates int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxUpdates:  maxUpdates,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.UpdateStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Coexistence ends when either hosts or phages are gone. The first updates
// are ignored while initial infections spread.
const warmupUpdates = 10

// runResult holds the results from a single simulation run.
type runResult struct {
	coexistence int                     // updates before hosts or phages died out (or maxUpdates)
	windows     []telemetry.UpdateStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.UpdateStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence time: longer coexistence = lower fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel; each run owns its world and random source
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windows)
			results[idx] = seedResult{
				fitness: computeFitness(result.coexistence, quality),
				quality: quality,
				windows: result.windows,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeed := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < results[bestSeed].fitness {
			bestSeed = i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = results[bestSeed].windows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until coexistence ends or
// maxUpdates, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Simulation.Seed = seed

	result := &runResult{}

	s, err := sim.New(sim.Options{
		Config: cfg,
		StatsCallback: func(stats telemetry.UpdateStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		return result
	}
	defer s.Close()

	s.Run(fe.maxUpdates, func(s *sim.Sim) bool {
		if s.UpdateCount() < warmupUpdates {
			return false
		}
		c := s.World().Census()
		return c.Hosts == 0 || c.Phages == 0
	})

	result.coexistence = s.UpdateCount()
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(coexistence × (1.0 + 0.2 × quality))
// Coexistence dominates; quality separates configs that both last the run.
func computeFitness(coexistence int, quality float64) float64 {
	return -(float64(coexistence) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightBalance   = 0.5
	qualityWeightStability = 0.5

	qualityWarmupWindows = 2 // skip first N windows
)

// computeQuality scores coexistence ∈ [0, 1] from window stats: a balanced
// infected fraction and a stable host population score highest.
func computeQuality(windows []telemetry.UpdateStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var balanceSum float64
	hosts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Hosts == 0 {
			continue
		}
		p := float64(w.InfectedHosts) / float64(w.Hosts)
		balanceSum += 4 * p * (1 - p)
		hosts = append(hosts, float64(w.Hosts))
	}

	if len(hosts) == 0 {
		return 0
	}

	balanceScore := balanceSum / float64(len(hosts))

	stabilityScore := 0.0
	if len(hosts) >= 2 {
		c := cv(hosts)
		stabilityScore = math.Exp(-c * c)
	}

	return clamp01(qualityWeightBalance*balanceScore + qualityWeightStability*stabilityScore)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
