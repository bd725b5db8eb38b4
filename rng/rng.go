// Package rng provides the seedable random stream shared by every stochastic
// decision in a run. One Source is created per world and handed to every
// organism; draws happen in a fixed order so a seed reproduces a run exactly.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a deterministic stream of uniform and Gaussian variates.
// Not safe for concurrent use.
type Source struct {
	src rand.Source
	r   *rand.Rand
}

// New creates a Source from a seed.
func New(seed int64) *Source {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Source{src: src, r: rand.New(src)}
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Between returns a uniform value in [lo, hi).
func (s *Source) Between(lo, hi float64) float64 {
	return lo + s.r.Float64()*(hi-lo)
}

// IntN returns a uniform int in [0, n). Returns 0 when n <= 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// P returns true with probability p.
func (s *Source) P(p float64) bool {
	return s.r.Float64() < p
}

// Normal draws from N(mu, sigma^2).
func (s *Source) Normal(mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}
