package organism

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

// SymbiontKind selects a symbiont variant.
type SymbiontKind uint8

const (
	KindSymbiont    SymbiontKind = iota // plain symbiont
	KindPhage                           // temperate phage with a lysis program
	KindPGGSymbiont                     // donates to its host's public pool
)

func (k SymbiontKind) String() string {
	switch k {
	case KindSymbiont:
		return "symbiont"
	case KindPhage:
		return "phage"
	case KindPGGSymbiont:
		return "pgg_symbiont"
	}
	return "unknown"
}

// symOps is the per-kind behaviour of a symbiont.
type symOps struct {
	process              func(s *Symbiont, location int)
	processResources     func(s *Symbiont, piece float64) float64
	verticalTransmission func(s *Symbiont, hostBaby *Host)
	mutate               func(s *Symbiont)
}

var symbiontTable [KindPGGSymbiont + 1]symOps

// Filled at init: Reproduce reads the table, so a static initializer cycles.
func init() {
	symbiontTable = [...]symOps{
		KindSymbiont: {
			process:              processSymbiont,
			processResources:     shareResources,
			verticalTransmission: transmitVertically,
			mutate:               mutateSymbiont,
		},
		KindPhage: {
			process:              processPhage,
			processResources:     shareResources,
			verticalTransmission: transmitPhage,
			mutate:               mutatePhage,
		},
		KindPGGSymbiont: {
			process:              processSymbiont,
			processResources:     donateResources,
			verticalTransmission: transmitVertically,
			mutate:               mutatePGG,
		},
	}
}

// Symbiont lives inside a host or, when the world allows it, on its own.
// Phage and public-goods fields are zero for kinds that do not use them.
type Symbiont struct {
	base
	Kind SymbiontKind

	burstTimer  int
	lysisChance float64
	lysogenic   bool

	donation float64
}

// NewSymbiont creates a plain symbiont. Pass config.RandomTrait to draw intVal.
func NewSymbiont(r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Symbiont {
	return newSymbiont(KindSymbiont, r, env, cfg, intVal)
}

func newSymbiont(kind SymbiontKind, r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Symbiont {
	s := &Symbiont{base: newBase(r, env, cfg, intVal), Kind: kind}
	s.entity = s.arena.addSym(s)
	return s
}

// IsHost reports false.
func (s *Symbiont) IsHost() bool { return false }

// Host returns the host the symbiont lives in, or nil if it is free-living
// or its host has been removed.
func (s *Symbiont) Host() *Host {
	c := s.arena.carrierOf(s)
	if c == nil {
		return nil
	}
	return s.arena.host(c.Host)
}

// SetHost sets the reference to the owning host. It does not add s to the
// host's resident list; use Host.AddSymbiont for that.
func (s *Symbiont) SetHost(h *Host) {
	if c := s.arena.carrierOf(s); c != nil {
		c.Host = h.entity
	}
}

// ClearHost makes the symbiont free-living, taking it off its host's
// resident list.
func (s *Symbiont) ClearHost() {
	c := s.arena.carrierOf(s)
	if c == nil {
		return
	}
	if h := s.arena.host(c.Host); h != nil {
		h.dropResident(s.entity)
	}
	c.Host = ecs.Entity{}
}

// Process runs one update for the symbiont at location.
// A dead symbiont is a no-op.
func (s *Symbiont) Process(location int) {
	if s.dead {
		return
	}
	symbiontTable[s.Kind].process(s, location)
}

// ProcessResources takes this symbiont's share of the host's donation and
// returns what goes back to the host.
func (s *Symbiont) ProcessResources(piece float64) float64 {
	return symbiontTable[s.Kind].processResources(s, piece)
}

// VerticalTransmission attempts to place a copy of the symbiont in a newborn
// host. The symbiont and its own host are left untouched unless a copy is
// made, in which case the transmission cost is paid.
func (s *Symbiont) VerticalTransmission(hostBaby *Host) {
	if s.dead || hostBaby == nil {
		return
	}
	symbiontTable[s.Kind].verticalTransmission(s, hostBaby)
}

// Reproduce creates a mutated, hostless offspring with no points.
// Reproduction costs are paid by the caller.
func (s *Symbiont) Reproduce() *Symbiont {
	baby := newSymbiont(s.Kind, s.rng, s.env, s.cfg, s.intVal)
	baby.lysisChance = s.lysisChance
	baby.donation = s.donation
	symbiontTable[s.Kind].mutate(baby)
	if baby.Kind == KindPhage {
		baby.drawDisposition()
	}
	return baby
}

// processSymbiont is the ordinary life of a symbiont: forage when
// free-living, transmit horizontally when rich enough, then age.
func processSymbiont(s *Symbiont, location int) {
	if s.Host() == nil && s.env.FreeLiving() {
		s.points += s.env.PullResources(s.cfg.Resources.FreeSymDistribute, location)
	}

	if s.points >= s.cfg.Symbiont.HorizTransRes {
		baby := s.Reproduce()
		s.points -= s.cfg.Symbiont.HorizTransRes
		s.env.SymDoBirth(baby, location)
	}

	s.growOlder(s.cfg.Symbiont.AgeMax)
}

// shareResources handles a resident's share. Parasites steal from the host
// on top of their share and return nothing; mutualists hand back a fraction
// of their share multiplied by synergy.
func shareResources(s *Symbiont, piece float64) float64 {
	if s.intVal < 0 {
		var stolen float64
		if h := s.Host(); h != nil {
			stolen = h.StealResources(s.intVal)
		}
		s.points += piece + stolen
		return 0
	}

	returned := piece * s.intVal
	s.points += piece - returned
	return returned * s.cfg.Symbiont.Synergy
}

// transmitVertically copies the symbiont into hostBaby when the world's
// transmission draw succeeds and the symbiont can pay sym_vert_trans_res.
func transmitVertically(s *Symbiont, hostBaby *Host) {
	if !s.env.WillTransmit() || s.points < s.cfg.Symbiont.VertTransRes {
		return
	}
	s.placeCopy(hostBaby)
}

func (s *Symbiont) placeCopy(hostBaby *Host) {
	baby := s.Reproduce()
	if !hostBaby.AddSymbiont(baby) {
		baby.SetDead()
		s.arena.RemoveSymbiont(baby)
		return
	}
	s.points -= s.cfg.Symbiont.VertTransRes
}

func mutateSymbiont(s *Symbiont) {
	s.mutateIntVal(s.cfg.Mutation.Rate, s.cfg.Mutation.Size)
}
