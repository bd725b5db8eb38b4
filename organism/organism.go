// Package organism implements hosts and symbionts: resource accounting,
// reproduction, death, the phage lysis/lysogeny program and vertical
// transmission.
//
// Hosts and symbionts are tagged variants. Each concrete behaviour (plain
// bacterium, public-goods host, plain symbiont, phage, public-goods symbiont)
// is selected by a Kind value and dispatched through a fixed per-kind
// operation table rather than through embedding chains.
//
// Organisms never touch the grid directly. Everything spatial (neighbour
// choice, offspring placement, the resource supply) goes through the
// [Environment] they were built with, which the world implements. Every
// organism is registered in the environment's [Arena]; hosts hold their
// residents and symbionts hold their host as entity handles.
package organism

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

// Position addresses a grid cell and, for free-living symbionts, a slot in
// the cell's free-living stack. Hosts always use Slot 0.
type Position struct {
	Index int
	Slot  int
}

// At returns the host-layer position of a cell.
func At(index int) Position {
	return Position{Index: index}
}

// Environment is what organisms need from the world they live in.
type Environment interface {
	// Arena returns the storage every organism of the world is registered in.
	Arena() *Arena
	// PullResources returns up to want units for the organism at location.
	PullResources(want float64, location int) float64
	// WillTransmit draws whether a vertical transmission attempt goes ahead.
	WillTransmit() bool
	// FreeLiving reports whether symbionts may live outside hosts.
	FreeLiving() bool
	// SymDoBirth places a horizontally transmitted symbiont near location.
	SymDoBirth(sym *Symbiont, location int)
	// HostDoBirth places a host offspring near location.
	HostDoBirth(baby *Host, location int)
	// InjectNeighbor moves a lysis offspring into a random live neighbouring
	// host of location. Offspring that find no room are discarded.
	InjectNeighbor(sym *Symbiont, location int)
	// RecordBurst reports a lysis burst releasing size offspring.
	RecordBurst(size int)
}

// Organism is the capability set shared by hosts and symbionts.
type Organism interface {
	IntVal() float64
	SetIntVal(v float64)
	Points() float64
	SetPoints(p float64)
	AddPoints(p float64)
	Dead() bool
	SetDead()
	Age() int
	IsHost() bool
	Process(location int)
}

// base holds the state every organism carries.
type base struct {
	rng   *rng.Source
	env   Environment
	cfg   *config.Config
	arena *Arena

	entity ecs.Entity

	intVal float64 // interaction value in [-1, 1]
	points float64
	dead   bool
	age    int
}

func newBase(r *rng.Source, env Environment, cfg *config.Config, intVal float64) base {
	if intVal == config.RandomTrait {
		intVal = r.Between(-1, 1)
	}
	return base{rng: r, env: env, cfg: cfg, arena: env.Arena(), intVal: intVal}
}

// Entity returns the organism's handle in its world's arena.
func (b *base) Entity() ecs.Entity { return b.entity }

func (b *base) IntVal() float64      { return b.intVal }
func (b *base) SetIntVal(v float64)  { b.intVal = clamp(v, -1, 1) }
func (b *base) Points() float64      { return b.points }
func (b *base) SetPoints(p float64)  { b.points = p }
func (b *base) AddPoints(p float64)  { b.points += p }
func (b *base) Dead() bool           { return b.dead }
func (b *base) SetDead()             { b.dead = true }
func (b *base) Age() int             { return b.age }

// growOlder ages the organism one update and kills it past maxAge.
// A negative maxAge means no age limit.
func (b *base) growOlder(maxAge int) {
	b.age++
	if maxAge >= 0 && b.age > maxAge {
		b.dead = true
	}
}

// mutateIntVal perturbs the interaction value with probability rate.
// Returns whether a mutation happened so variants can mutate their own traits.
func (b *base) mutateIntVal(rate, size float64) bool {
	if !b.rng.P(rate) {
		return false
	}
	b.intVal = clamp(b.intVal+b.rng.Normal(0, size), -1, 1)
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
