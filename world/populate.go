package world

import (
	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/organism"
)

// NewHost creates a host of the kind the configured mode calls for.
func (w *World) NewHost() *organism.Host {
	sc := w.cfg.Simulation
	if sc.Mode == config.ModePGG {
		return organism.NewPGGHost(w.rng, w, w.cfg, sc.HostIntVal)
	}
	return organism.NewBacterium(w.rng, w, w.cfg, sc.HostIntVal)
}

// NewSymbiont creates a symbiont of the kind the configured mode calls for.
func (w *World) NewSymbiont() *organism.Symbiont {
	sc := w.cfg.Simulation
	switch sc.Mode {
	case config.ModeLysis:
		return organism.NewPhage(w.rng, w, w.cfg, sc.SymIntVal)
	case config.ModePGG:
		return organism.NewPGGSymbiont(w.rng, w, w.cfg, sc.SymIntVal, w.cfg.PGG.Donation)
	}
	return organism.NewSymbiont(w.rng, w, w.cfg, sc.SymIntVal)
}

// SpawnInitialPopulation places initial_hosts hosts in distinct random empty
// cells, then infects random hosts with room with initial_syms symbionts.
// When no host has room, remaining symbionts become free-living if allowed
// and are dropped otherwise. Returns the numbers placed.
func (w *World) SpawnInitialPopulation() (hosts, syms int) {
	var empty []int
	for i, h := range w.hosts {
		if h == nil {
			empty = append(empty, i)
		}
	}

	for hosts < w.cfg.Simulation.InitialHosts && len(empty) > 0 {
		k := w.rng.IntN(len(empty))
		cell := empty[k]
		empty[k] = empty[len(empty)-1]
		empty = empty[:len(empty)-1]

		w.AddOrgAt(w.NewHost(), organism.At(cell))
		hosts++
	}

	var open []*organism.Host
	for _, h := range w.hosts {
		if h != nil && !h.Dead() && h.HasRoom() {
			open = append(open, h)
		}
	}

	for syms < w.cfg.Simulation.InitialSyms {
		if len(open) == 0 {
			if !w.freeLiving {
				break
			}
			cell := w.rng.IntN(len(w.free))
			w.AddOrgAt(w.NewSymbiont(), organism.Position{Index: cell, Slot: len(w.free[cell])})
			syms++
			continue
		}

		k := w.rng.IntN(len(open))
		h := open[k]
		h.AddSymbiont(w.NewSymbiont())
		syms++
		if !h.HasRoom() {
			open[k] = open[len(open)-1]
			open = open[:len(open)-1]
		}
	}

	return hosts, syms
}
