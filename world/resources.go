package world

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// ResourceField scales each cell's resource intake by a smooth spatial
// pattern. A heterogeneity of 0 gives every cell a factor of 1; at 1
// factors span [0, 2].
type ResourceField struct {
	width, height int
	factor        []float64
}

// NewResourceField builds a field for a width x height grid from simplex
// noise sampled at the given spatial frequency.
func NewResourceField(width, height int, seed int64, heterogeneity, scale float64) *ResourceField {
	rf := &ResourceField{
		width:  width,
		height: height,
		factor: make([]float64, width*height),
	}

	noise := opensimplex.NewNormalized(seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := noise.Eval2(float64(x)*scale, float64(y)*scale) // [0, 1)
			rf.factor[y*width+x] = math.Max(0, 1+heterogeneity*(2*n-1))
		}
	}

	return rf
}

// Factor returns the intake multiplier at a cell index, or 1 out of range.
func (rf *ResourceField) Factor(index int) float64 {
	if rf == nil || index < 0 || index >= len(rf.factor) {
		return 1
	}
	return rf.factor[index]
}

// Mean returns the average factor over the grid.
func (rf *ResourceField) Mean() float64 {
	if rf == nil || len(rf.factor) == 0 {
		return 1
	}
	var sum float64
	for _, f := range rf.factor {
		sum += f
	}
	return sum / float64(len(rf.factor))
}

// ResourcePool is the world's shared supply. A negative level means unlimited.
type ResourcePool struct {
	level  float64
	inflow float64
}

// NewResourcePool creates a pool holding total, refilled by inflow each update.
func NewResourcePool(total, inflow float64) ResourcePool {
	return ResourcePool{level: total, inflow: inflow}
}

// Unlimited reports whether the pool never runs out.
func (p *ResourcePool) Unlimited() bool { return p.level < 0 }

// Level returns the remaining supply, or -1 when unlimited.
func (p *ResourcePool) Level() float64 {
	if p.Unlimited() {
		return -1
	}
	return p.level
}

// Replenish adds one update's inflow.
func (p *ResourcePool) Replenish() {
	if !p.Unlimited() {
		p.level += p.inflow
	}
}

// Take removes up to want from the pool and returns the amount removed.
func (p *ResourcePool) Take(want float64) float64 {
	if want <= 0 {
		return 0
	}
	if p.Unlimited() {
		return want
	}
	got := math.Min(want, p.level)
	p.level -= got
	return got
}
