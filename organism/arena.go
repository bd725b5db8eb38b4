package organism

import "github.com/mlange-42/ark/ecs"

// Residents is a host entity's ordered resident list and its queue of lysis
// offspring. Resident order is processing order.
type Residents struct {
	Syms  []ecs.Entity
	Repro []ecs.Entity
}

// Carrier is a symbiont's non-owning reference to its host entity.
// The zero entity means free-living.
type Carrier struct {
	Host ecs.Entity
}

type hostBody struct{ h *Host }

type symBody struct{ s *Symbiont }

// Arena stores every host and symbiont of a world as an entity. Hosts and
// symbionts refer to each other only through entity handles, so a reference
// to an organism that has been removed resolves to nil instead of dangling.
//
// Component pointers returned by the maps are only valid until the next
// entity is created or removed; never hold one across those calls.
type Arena struct {
	world *ecs.World

	hostMapper *ecs.Map2[hostBody, Residents]
	symMapper  *ecs.Map2[symBody, Carrier]
	hostFilter *ecs.Filter1[hostBody]
	symFilter  *ecs.Filter1[symBody]

	hostMap   *ecs.Map1[hostBody]
	residents *ecs.Map1[Residents]
	symMap    *ecs.Map1[symBody]
	carriers  *ecs.Map1[Carrier]
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	world := ecs.NewWorld()
	return &Arena{
		world:      world,
		hostMapper: ecs.NewMap2[hostBody, Residents](world),
		symMapper:  ecs.NewMap2[symBody, Carrier](world),
		hostFilter: ecs.NewFilter1[hostBody](world),
		symFilter:  ecs.NewFilter1[symBody](world),
		hostMap:    ecs.NewMap1[hostBody](world),
		residents:  ecs.NewMap1[Residents](world),
		symMap:     ecs.NewMap1[symBody](world),
		carriers:   ecs.NewMap1[Carrier](world),
	}
}

func (a *Arena) addHost(h *Host) ecs.Entity {
	return a.hostMapper.NewEntity(&hostBody{h: h}, &Residents{})
}

func (a *Arena) addSym(s *Symbiont) ecs.Entity {
	return a.symMapper.NewEntity(&symBody{s: s}, &Carrier{})
}

func (a *Arena) alive(e ecs.Entity) bool {
	return !e.IsZero() && a.world.Alive(e)
}

// host resolves a host handle, or nil if it was removed.
func (a *Arena) host(e ecs.Entity) *Host {
	if !a.alive(e) || !a.hostMap.Has(e) {
		return nil
	}
	return a.hostMap.Get(e).h
}

// sym resolves a symbiont handle, or nil if it was removed.
func (a *Arena) sym(e ecs.Entity) *Symbiont {
	if !a.alive(e) || !a.symMap.Has(e) {
		return nil
	}
	return a.symMap.Get(e).s
}

func (a *Arena) residentsOf(h *Host) *Residents {
	if !a.alive(h.entity) {
		return nil
	}
	return a.residents.Get(h.entity)
}

func (a *Arena) carrierOf(s *Symbiont) *Carrier {
	if !a.alive(s.entity) {
		return nil
	}
	return a.carriers.Get(s.entity)
}

func (a *Arena) resolve(es []ecs.Entity) []*Symbiont {
	if len(es) == 0 {
		return nil
	}
	out := make([]*Symbiont, 0, len(es))
	for _, e := range es {
		if s := a.sym(e); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (a *Arena) remove(e ecs.Entity) {
	if a.alive(e) {
		a.world.RemoveEntity(e)
	}
}

// RemoveHost drops a host from the arena together with its residents and
// queued offspring. Removing a host twice is a no-op.
func (a *Arena) RemoveHost(h *Host) {
	res := a.residentsOf(h)
	if res == nil {
		return
	}
	owned := make([]ecs.Entity, 0, len(res.Syms)+len(res.Repro))
	owned = append(owned, res.Syms...)
	owned = append(owned, res.Repro...)

	a.remove(h.entity)
	for _, e := range owned {
		a.remove(e)
	}
}

// RemoveSymbiont drops a symbiont from the arena. It does not edit the
// resident list of a host still holding it; hosts skip handles that no
// longer resolve.
func (a *Arena) RemoveSymbiont(s *Symbiont) {
	a.remove(s.entity)
}

// Len returns the number of hosts and symbionts stored.
func (a *Arena) Len() (hosts, syms int) {
	q := a.hostFilter.Query()
	for q.Next() {
		hosts++
	}
	qs := a.symFilter.Query()
	for qs.Next() {
		syms++
	}
	return hosts, syms
}
