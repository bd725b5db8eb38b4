// Package world implements the spatial grid that hosts and free-living
// symbionts live on, the neighbour policy organisms use to place offspring,
// and the two-phase update that processes a snapshot of the population
// before applying births, infections and moves.
package world

import (
	"slices"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/organism"
	"github.com/pthm-cable/symsoup/rng"
	"github.com/pthm-cable/symsoup/telemetry"
)

var _ organism.Environment = (*World)(nil)

// World is a width x height toroidal grid. Each cell holds at most one host
// and a stack of free-living symbionts. Cells are indexed row-major.
//
// The grid slots own every organism in the world; hosts own their residents.
// Every organism is also registered in the world's arena until it is purged.
// Nothing is processed or freed while a sweep is iterating over it: births,
// infections and moves requested during Update are queued and applied once
// the sweep ends.
type World struct {
	cfg *config.Config
	rng *rng.Source

	width, height int
	arena         *organism.Arena
	hosts         []*organism.Host
	free          [][]*organism.Symbiont

	vertTrans  float64
	freeLiving bool

	pool  ResourcePool
	field *ResourceField

	update  int
	inSweep bool
	pending []func()

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	nodes     dataNodes
	census    telemetry.Census
}

// New creates a world sized from the config's grid_x and grid_y.
func New(r *rng.Source, cfg *config.Config) *World {
	w := &World{
		cfg:        cfg,
		rng:        r,
		arena:      organism.NewArena(),
		vertTrans:  cfg.Transmission.Vertical,
		freeLiving: cfg.Transmission.FreeLiving,
		pool:       NewResourcePool(cfg.Resources.LimitedTotal, cfg.Resources.LimitedInflow),
		collector:  telemetry.NewCollector(cfg.Telemetry.DataInterval),
		nodes:      newDataNodes(cfg),
	}
	w.Resize(cfg.World.GridX, cfg.World.GridY)
	return w
}

// Resize discards the population and sets new grid dimensions.
// Dimensions below 1 are raised to 1.
func (w *World) Resize(width, height int) {
	for _, h := range w.hosts {
		if h != nil {
			h.SetDead()
			w.arena.RemoveHost(h)
		}
	}
	for _, stack := range w.free {
		for _, s := range stack {
			if s != nil {
				s.SetDead()
				w.arena.RemoveSymbiont(s)
			}
		}
	}

	width, height = max(width, 1), max(height, 1)
	w.width, w.height = width, height
	w.hosts = make([]*organism.Host, width*height)
	w.free = make([][]*organism.Symbiont, width*height)

	w.field = nil
	if h := w.cfg.Resources.Heterogeneity; h > 0 {
		w.field = NewResourceField(width, height, w.cfg.Simulation.Seed, h, w.cfg.Resources.NoiseScale)
	}
}

// Width returns the grid width.
func (w *World) Width() int { return w.width }

// Height returns the grid height.
func (w *World) Height() int { return w.height }

// Size returns the number of cells.
func (w *World) Size() int { return len(w.hosts) }

// UpdateCount returns the number of completed updates.
func (w *World) UpdateCount() int { return w.update }

// Rand returns the world's random source, shared with every organism in it.
func (w *World) Rand() *rng.Source { return w.rng }

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// SetVertTrans sets the probability that a symbiont's vertical transmission
// attempt goes ahead.
func (w *World) SetVertTrans(p float64) { w.vertTrans = p }

// SetFreeLivingSyms enables or disables free-living symbionts.
func (w *World) SetFreeLivingSyms(on bool) { w.freeLiving = on }

// SetPerfCollector attaches per-phase timing. Nil disables it.
func (w *World) SetPerfCollector(p *telemetry.PerfCollector) { w.perf = p }

// Collector returns the event counters fed by this world.
func (w *World) Collector() *telemetry.Collector { return w.collector }

// ResourceLevel returns what remains in a limited pool, or -1 when unlimited.
func (w *World) ResourceLevel() float64 { return w.pool.Level() }

// HostAt returns the host in a cell, or nil if empty or out of range.
func (w *World) HostAt(index int) *organism.Host {
	if index < 0 || index >= len(w.hosts) {
		return nil
	}
	return w.hosts[index]
}

// FreeSymsAt returns the free-living stack of a cell. It may contain nil
// slots until the next purge. Callers must not modify it.
func (w *World) FreeSymsAt(index int) []*organism.Symbiont {
	if index < 0 || index >= len(w.free) {
		return nil
	}
	return w.free[index]
}

// AddOrgAt places a host in a cell, or a symbiont in a cell's free-living
// stack at pos.Slot. A host replaces and kills any previous occupant, as does
// a symbiont placed on an occupied slot. A slot past the end of the stack is
// clamped to an append. Out-of-range cells, negative slots and unknown
// organism types are ignored and reported as false.
func (w *World) AddOrgAt(org organism.Organism, pos organism.Position) bool {
	if pos.Index < 0 || pos.Index >= len(w.hosts) || pos.Slot < 0 {
		return false
	}

	switch o := org.(type) {
	case *organism.Host:
		w.placeHost(o, pos.Index)
	case *organism.Symbiont:
		o.ClearHost()
		stack := w.free[pos.Index]
		if pos.Slot >= len(stack) {
			w.free[pos.Index] = append(stack, o)
			break
		}
		if old := stack[pos.Slot]; old != nil && old != o {
			old.SetDead()
		}
		stack[pos.Slot] = o
	default:
		return false
	}
	return true
}

func (w *World) placeHost(h *organism.Host, index int) {
	if old := w.hosts[index]; old != nil && old != h {
		w.release(old)
	}
	w.hosts[index] = h
}

// release kills a host leaving the grid along with everything it carries
// and drops them all from the arena.
func (w *World) release(h *organism.Host) {
	h.SetDead()
	for _, s := range h.Symbionts() {
		s.SetDead()
	}
	for _, s := range h.ReproSymbionts() {
		s.SetDead()
	}
	w.arena.RemoveHost(h)
	w.collector.RecordHostDeath()
}

// Neighbors returns the Moore neighbourhood of a cell with toroidal wrap,
// excluding the cell itself and listing each neighbour once.
func (w *World) Neighbors(index int) []int {
	if index < 0 || index >= len(w.hosts) {
		return nil
	}

	x, y := index%w.width, index/w.width
	out := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + w.width) % w.width
			ny := (y + dy + w.height) % w.height
			n := ny*w.width + nx
			if n == index || slices.Contains(out, n) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// RandomNeighbor returns a uniformly chosen neighbour of index, or -1 if it has none.
func (w *World) RandomNeighbor(index int) int {
	ns := w.Neighbors(index)
	if len(ns) == 0 {
		return -1
	}
	return ns[w.rng.IntN(len(ns))]
}

// randomLiveNeighbor returns a uniformly chosen live host next to index, or nil.
func (w *World) randomLiveNeighbor(index int) *organism.Host {
	var live []*organism.Host
	for _, n := range w.Neighbors(index) {
		if h := w.hosts[n]; h != nil && !h.Dead() {
			live = append(live, h)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return live[w.rng.IntN(len(live))]
}

// freeCount returns the number of live free-living symbionts in a cell.
func (w *World) freeCount(index int) int {
	n := 0
	for _, s := range w.free[index] {
		if s != nil && !s.Dead() && s.Host() == nil {
			n++
		}
	}
	return n
}

// freeHasRoom reports whether a birth or move may add to a cell's stack.
func (w *World) freeHasRoom(index int) bool {
	return w.freeCount(index) < w.cfg.Transmission.FreeSymLimit
}

// later runs fn after the current sweep, or immediately outside one.
func (w *World) later(fn func()) {
	if w.inSweep {
		w.pending = append(w.pending, fn)
		return
	}
	fn()
}

// flushPending applies queued changes in the order they were requested.
func (w *World) flushPending() {
	pending := w.pending
	w.pending = nil
	for _, fn := range pending {
		fn()
	}
}
