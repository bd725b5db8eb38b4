package organism

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

// HostKind selects a host variant.
type HostKind uint8

const (
	KindBacterium HostKind = iota // plain host
	KindPGGHost                   // pools symbiont donations as a public good
)

func (k HostKind) String() string {
	switch k {
	case KindBacterium:
		return "bacterium"
	case KindPGGHost:
		return "pgg_host"
	}
	return "unknown"
}

// hostOps is the per-kind behaviour of a host.
type hostOps struct {
	distribute func(h *Host, resources float64)
}

var hostTable = [...]hostOps{
	KindBacterium: {distribute: distributeShares},
	KindPGGHost:   {distribute: distributePublicGoods},
}

// Host carries resident symbionts and a queue of lysis offspring, both held
// as a Residents component in the arena. Residents are bounded by sym_limit.
// Only the host mutates its own resident list.
type Host struct {
	base
	Kind HostKind

	pool float64 // public-goods pool, PGG hosts only
}

// NewBacterium creates a plain host. Pass config.RandomTrait to draw intVal.
func NewBacterium(r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Host {
	return newHost(KindBacterium, r, env, cfg, intVal)
}

// NewPGGHost creates a public-goods host.
func NewPGGHost(r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Host {
	return newHost(KindPGGHost, r, env, cfg, intVal)
}

func newHost(kind HostKind, r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Host {
	h := &Host{base: newBase(r, env, cfg, intVal), Kind: kind}
	h.entity = h.arena.addHost(h)
	return h
}

// IsHost reports true.
func (h *Host) IsHost() bool { return true }

// Symbionts returns the residents in processing order. The slice is a copy.
func (h *Host) Symbionts() []*Symbiont {
	res := h.arena.residentsOf(h)
	if res == nil {
		return nil
	}
	return h.arena.resolve(res.Syms)
}

// ReproSymbionts returns the queued lysis offspring. The slice is a copy.
func (h *Host) ReproSymbionts() []*Symbiont {
	res := h.arena.residentsOf(h)
	if res == nil {
		return nil
	}
	return h.arena.resolve(res.Repro)
}

// HasSym reports whether the host has any resident.
func (h *Host) HasSym() bool { return h.symCount() > 0 }

// HasRoom reports whether another resident would fit. A host removed from
// the arena has no room.
func (h *Host) HasRoom() bool {
	res := h.arena.residentsOf(h)
	return res != nil && len(res.Syms) < h.cfg.Symbiont.Limit
}

func (h *Host) symCount() int {
	if res := h.arena.residentsOf(h); res != nil {
		return len(res.Syms)
	}
	return 0
}

// residentAt resolves the j-th resident, or nil past the end of the list.
func (h *Host) residentAt(j int) *Symbiont {
	res := h.arena.residentsOf(h)
	if res == nil || j >= len(res.Syms) {
		return nil
	}
	return h.arena.sym(res.Syms[j])
}

// Pool returns the public-goods pool accumulated this update.
func (h *Host) Pool() float64 { return h.pool }

// AddSymbiont makes s a resident. The addition is refused when the host is
// already at sym_limit; the caller keeps ownership of a refused symbiont.
// Both organisms must live in the same arena.
func (h *Host) AddSymbiont(s *Symbiont) bool {
	if !h.HasRoom() {
		return false
	}
	res := h.arena.residentsOf(h)
	res.Syms = append(res.Syms, s.entity)
	s.SetHost(h)
	return true
}

// dropResident takes e off the resident list, keeping the order of the rest.
func (h *Host) dropResident(e ecs.Entity) {
	res := h.arena.residentsOf(h)
	if res == nil {
		return
	}
	for j, o := range res.Syms {
		if o == e {
			res.Syms = append(res.Syms[:j], res.Syms[j+1:]...)
			return
		}
	}
}

// AddReproSym queues a lysis offspring.
func (h *Host) AddReproSym(s *Symbiont) {
	if res := h.arena.residentsOf(h); res != nil {
		res.Repro = append(res.Repro, s.entity)
	}
}

// ClearReproSyms empties the offspring queue. The offspring stay in the
// arena; whoever took them decides their fate.
func (h *Host) ClearReproSyms() {
	if res := h.arena.residentsOf(h); res != nil {
		res.Repro = res.Repro[:0]
	}
}

// Process runs one update for the host at location: resource intake,
// residents, dead-resident purge, reproduction and ageing.
// A dead host is a no-op.
func (h *Host) Process(location int) {
	if h.dead {
		return
	}

	resources := h.env.PullResources(h.cfg.Resources.Distribute, location)
	h.DistribResources(resources)

	// Residents added during the loop wait for the next update
	n := h.symCount()
	for j := 0; j < n; j++ {
		if h.dead {
			break // a burst killed the host
		}
		if s := h.residentAt(j); s != nil && !s.dead {
			s.Process(location)
		}
	}

	h.purgeDeadSyms()

	if h.dead {
		return
	}

	// Hosts being lysed do not reproduce
	if h.points >= h.cfg.Host.ReproRes && len(h.ReproSymbionts()) == 0 {
		baby := h.Reproduce()
		for _, s := range h.Symbionts() {
			s.VerticalTransmission(baby)
		}
		h.env.HostDoBirth(baby, location)
	}

	h.growOlder(h.cfg.Host.AgeMax)
}

// purgeDeadSyms removes dead residents in place, keeping survivor order,
// and drops them from the arena.
func (h *Host) purgeDeadSyms() {
	res := h.arena.residentsOf(h)
	if res == nil {
		return
	}

	var dead []ecs.Entity
	kept := res.Syms[:0]
	for _, e := range res.Syms {
		if s := h.arena.sym(e); s != nil && !s.dead {
			kept = append(kept, e)
		} else {
			dead = append(dead, e)
		}
	}
	res.Syms = kept

	for _, e := range dead {
		h.arena.remove(e)
	}
}

// Reproduce creates a mutated offspring of the same kind and pays host_repro_res.
func (h *Host) Reproduce() *Host {
	baby := newHost(h.Kind, h.rng, h.env, h.cfg, h.intVal)
	baby.mutateIntVal(h.cfg.Derived.HostMutationRate, h.cfg.Derived.HostMutationSize)
	h.points -= h.cfg.Host.ReproRes
	if h.points < 0 {
		h.points = 0
	}
	return baby
}

// DistribResources splits an update's intake between the host and its residents.
func (h *Host) DistribResources(resources float64) {
	hostTable[h.Kind].distribute(h, resources)
}

// StealResources is called by a parasite with interaction value symIntVal.
// Cooperative hosts have no defence; a defended host loses nothing to a
// parasite no more aggressive than its defence.
func (h *Host) StealResources(symIntVal float64) float64 {
	defense := math.Min(h.intVal, 0)
	if symIntVal >= defense {
		return 0
	}
	stolen := h.points * (defense - symIntVal)
	h.points -= stolen
	return stolen
}

func (h *Host) liveSymCount() int {
	n := 0
	for _, s := range h.Symbionts() {
		if !s.dead {
			n++
		}
	}
	return n
}

// distributeShares gives a positive host's donation to its residents in equal
// shares and spends a negative host's defence. The host keeps the rest plus
// whatever mutualists return. An uninfected host keeps everything.
func distributeShares(h *Host, resources float64) {
	live := h.liveSymCount()
	if live == 0 {
		h.points += resources
		return
	}

	var donation float64
	if h.intVal >= 0 {
		donation = resources * h.intVal
		h.points += resources - donation
	} else {
		defense := -h.intVal * resources
		h.points += resources - defense
	}

	piece := donation / float64(live)
	for _, s := range h.Symbionts() {
		if s.dead {
			continue
		}
		h.points += s.ProcessResources(piece)
	}
}

// distributePublicGoods runs the ordinary split, then shares the pool
// residents donated into, scaled by pgg_synergy.
func distributePublicGoods(h *Host, resources float64) {
	distributeShares(h, resources)

	if live := h.liveSymCount(); live > 0 && h.pool > 0 {
		share := h.pool * h.cfg.PGG.Synergy / float64(live)
		for _, s := range h.Symbionts() {
			if !s.dead {
				s.points += share
			}
		}
	}
	h.pool = 0
}
