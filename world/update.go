package world

import (
	"github.com/pthm-cable/symsoup/organism"
	"github.com/pthm-cable/symsoup/telemetry"
)

// Update runs one time step: sample (when configured before the sweep),
// replenish resources, process every live host in grid order and then every
// free-living symbiont, apply queued births, infections and moves, purge the
// dead, and sample (when configured after).
func (w *World) Update() {
	w.perf.StartUpdate()

	w.perf.StartPhase(telemetry.PhaseSample)
	w.nodes.burstSize.Reset()
	if w.cfg.Derived.SamplePre {
		w.sample()
	}

	w.perf.StartPhase(telemetry.PhaseResources)
	w.pool.Replenish()

	// Births queued during the sweep never land in w.hosts or w.free until
	// flushPending, so ranging over them here sees only the snapshot.
	w.inSweep = true

	w.perf.StartPhase(telemetry.PhaseHosts)
	for i, h := range w.hosts {
		if h != nil && !h.Dead() {
			h.Process(i)
		}
	}

	w.perf.StartPhase(telemetry.PhaseFreeSyms)
	if w.freeLiving {
		w.processFreeSyms()
	}

	w.inSweep = false

	w.perf.StartPhase(telemetry.PhaseInjection)
	w.flushPending()

	w.perf.StartPhase(telemetry.PhasePurge)
	w.purge()

	w.perf.StartPhase(telemetry.PhaseTelemetry)
	if !w.cfg.Derived.SamplePre {
		w.sample()
	}

	w.update++
	w.perf.EndUpdate()
}

func (w *World) processFreeSyms() {
	for i, stack := range w.free {
		for _, s := range stack {
			if s == nil || s.Dead() || s.Host() != nil {
				continue
			}
			s.Process(i)
			if !s.Dead() {
				w.settle(s, i)
			}
		}
	}
}

// settle decides whether a free-living symbiont tries to infect the host in
// its cell or moves to a neighbouring cell. Both happen after the sweep.
func (w *World) settle(s *organism.Symbiont, index int) {
	tc := w.cfg.Transmission
	if h := w.hosts[index]; h != nil && !h.Dead() && w.rng.P(tc.InfectionChance) {
		w.later(func() {
			h := w.hosts[index]
			if s.Dead() || h == nil || h.Dead() || !h.HasRoom() {
				return // stays free-living
			}
			w.detachFree(s, index)
			h.AddSymbiont(s)
			w.collector.RecordInfection()
		})
		return
	}

	if tc.MoveFreeSyms {
		w.later(func() {
			n := w.RandomNeighbor(index)
			if s.Dead() || n < 0 || !w.freeHasRoom(n) {
				return // stays put
			}
			w.detachFree(s, index)
			w.free[n] = append(w.free[n], s)
		})
	}
}

// detachFree empties the slot holding s in a cell's free-living stack.
func (w *World) detachFree(s *organism.Symbiont, index int) {
	for j, o := range w.free[index] {
		if o == s {
			w.free[index][j] = nil
			return
		}
	}
}

// purge removes dead hosts from the grid and compacts free-living stacks,
// dropping the dead from the arena.
func (w *World) purge() {
	for i, h := range w.hosts {
		if h != nil && h.Dead() {
			w.release(h)
			w.hosts[i] = nil
		}
	}

	for i, stack := range w.free {
		kept := stack[:0]
		for _, s := range stack {
			switch {
			case s == nil:
			case s.Dead():
				w.arena.RemoveSymbiont(s)
			case s.Host() == nil:
				kept = append(kept, s)
			}
		}
		clear(stack[len(kept):])
		if len(kept) == 0 {
			kept = nil
		}
		w.free[i] = kept
	}
}
