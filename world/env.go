package world

import "github.com/pthm-cable/symsoup/organism"

// Arena returns the storage every organism of the world is registered in.
func (w *World) Arena() *organism.Arena { return w.arena }

// PullResources returns up to want units for the organism at location,
// scaled by the resource field and limited by the pool.
func (w *World) PullResources(want float64, location int) float64 {
	return w.pool.Take(want * w.field.Factor(location))
}

// WillTransmit draws whether a vertical transmission attempt goes ahead.
func (w *World) WillTransmit() bool {
	return w.rng.P(w.vertTrans)
}

// FreeLiving reports whether symbionts may live outside hosts.
func (w *World) FreeLiving() bool {
	return w.freeLiving
}

// SymDoBirth places a horizontally transmitted offspring. With free-living
// symbionts it joins a random neighbouring cell's stack, and is discarded
// when that stack already holds free_sym_limit symbionts; otherwise it
// infects a random live neighbouring host.
func (w *World) SymDoBirth(sym *organism.Symbiont, location int) {
	w.collector.RecordSymBirth()
	w.later(func() {
		if !w.freeLiving {
			w.injectNeighbor(sym, location)
			return
		}
		n := w.RandomNeighbor(location)
		if n < 0 || !w.freeHasRoom(n) {
			w.discard(sym)
			return
		}
		sym.ClearHost()
		w.free[n] = append(w.free[n], sym)
	})
}

// HostDoBirth places a host offspring in a random neighbouring cell,
// replacing whatever lived there. Vertical transmissions count only once the
// offspring has landed.
func (w *World) HostDoBirth(baby *organism.Host, location int) {
	w.later(func() {
		n := w.RandomNeighbor(location)
		if n < 0 {
			baby.SetDead()
			for _, s := range baby.Symbionts() {
				s.SetDead()
			}
			w.arena.RemoveHost(baby)
			w.collector.RecordDiscard()
			return
		}
		w.placeHost(baby, n)
		w.collector.RecordHostBirth()
		for range baby.Symbionts() {
			w.collector.RecordVertTransmit()
		}
	})
}

// InjectNeighbor moves a lysis offspring into a random live host next to location.
func (w *World) InjectNeighbor(sym *organism.Symbiont, location int) {
	w.later(func() { w.injectNeighbor(sym, location) })
}

// RecordBurst reports a lysis burst releasing size offspring.
func (w *World) RecordBurst(size int) {
	w.collector.RecordBurst(size)
	w.nodes.burstSize.AddDatum(float64(size))
}

// injectNeighbor picks the destination when the injection is applied, so
// hosts born or killed earlier in the same update are taken into account.
func (w *World) injectNeighbor(sym *organism.Symbiont, location int) {
	h := w.randomLiveNeighbor(location)
	if h == nil || !h.AddSymbiont(sym) {
		w.discard(sym)
		return
	}
	w.collector.RecordInfection()
}

func (w *World) discard(sym *organism.Symbiont) {
	sym.SetDead()
	w.arena.RemoveSymbiont(sym)
	w.collector.RecordDiscard()
}
