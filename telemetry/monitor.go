package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Monitor keeps the values reported for one quantity and bins them into a
// fixed-count histogram over [min, max].
//
// Bins are right-closed: bin i holds values in (min+i*w, min+(i+1)*w], and
// the first bin also holds min itself. Values outside the range land in the
// nearest end bin.
type Monitor struct {
	min, max float64
	counts   []int
	values   []float64
}

// NewMonitor creates a monitor with bins histogram bins over [min, max].
func NewMonitor(min, max float64, bins int) *Monitor {
	if bins < 1 {
		bins = 1
	}
	return &Monitor{
		min:    min,
		max:    max,
		counts: make([]int, bins),
	}
}

// AddDatum records one value.
func (m *Monitor) AddDatum(v float64) {
	m.values = append(m.values, v)
	m.counts[m.bin(v)]++
}

func (m *Monitor) bin(v float64) int {
	n := len(m.counts)
	x := float64(n) * (v - m.min) / (m.max - m.min)
	i := int(math.Ceil(x)) - 1
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Count returns the number of values recorded since the last Reset.
func (m *Monitor) Count() int { return len(m.values) }

// Mean returns the arithmetic mean, or NaN when empty.
func (m *Monitor) Mean() float64 {
	if len(m.values) == 0 {
		return math.NaN()
	}
	return stat.Mean(m.values, nil)
}

// StdDev returns the sample standard deviation, or 0 with fewer than two values.
func (m *Monitor) StdDev() float64 {
	if len(m.values) < 2 {
		return 0
	}
	return stat.StdDev(m.values, nil)
}

// Min returns the smallest value, or NaN when empty.
func (m *Monitor) Min() float64 {
	if len(m.values) == 0 {
		return math.NaN()
	}
	return floats.Min(m.values)
}

// Max returns the largest value, or NaN when empty.
func (m *Monitor) Max() float64 {
	if len(m.values) == 0 {
		return math.NaN()
	}
	return floats.Max(m.values)
}

// Total returns the sum of recorded values.
func (m *Monitor) Total() float64 { return floats.Sum(m.values) }

// HistCounts returns the per-bin counts. The slice is owned by the monitor.
func (m *Monitor) HistCounts() []int { return m.counts }

// Bins returns the number of histogram bins.
func (m *Monitor) Bins() int { return len(m.counts) }

// Reset clears all recorded values and bin counts.
func (m *Monitor) Reset() {
	m.values = m.values[:0]
	clear(m.counts)
}

// MeanOr returns the mean, or def when the monitor is empty.
func (m *Monitor) MeanOr(def float64) float64 {
	if len(m.values) == 0 {
		return def
	}
	return stat.Mean(m.values, nil)
}
