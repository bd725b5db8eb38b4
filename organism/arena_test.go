package organism

import (
	"testing"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

func TestSymbiontTableCoversKinds(t *testing.T) {
	for _, k := range []SymbiontKind{KindSymbiont, KindPhage, KindPGGSymbiont} {
		ops := symbiontTable[k]
		if ops.process == nil || ops.processResources == nil || ops.verticalTransmission == nil || ops.mutate == nil {
			t.Errorf("kind %v has missing operations", k)
		}
	}

	// Reproduce dispatches mutate through the table for every kind
	cfg := testConfig(t, nil)
	r := rng.New(30)
	env := &stubEnv{}
	for _, s := range []*Symbiont{NewSymbiont(r, env, cfg, 0), NewPhage(r, env, cfg, 0), NewPGGSymbiont(r, env, cfg, 0, 0.5)} {
		if baby := s.Reproduce(); baby.Kind != s.Kind {
			t.Errorf("offspring kind = %v, want %v", baby.Kind, s.Kind)
		}
	}
}

func TestArenaHandles(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Symbiont.Limit = 3 })
	r := rng.New(31)
	env := &stubEnv{}

	h := NewBacterium(r, env, cfg, 0)
	s1 := NewSymbiont(r, env, cfg, 0)
	s2 := NewSymbiont(r, env, cfg, 0)
	h.AddSymbiont(s1)
	h.AddSymbiont(s2)
	queued := NewPhage(r, env, cfg, 0)
	h.AddReproSym(queued)

	if hosts, syms := env.Arena().Len(); hosts != 1 || syms != 3 {
		t.Fatalf("Len() = %d, %d, want 1, 3", hosts, syms)
	}
	if s1.Host() != h || s1.Entity() == s2.Entity() {
		t.Fatal("residents should resolve their host through distinct handles")
	}

	env.Arena().RemoveHost(h)

	if hosts, syms := env.Arena().Len(); hosts != 0 || syms != 0 {
		t.Errorf("after RemoveHost Len() = %d, %d, want 0, 0", hosts, syms)
	}
	if s1.Host() != nil || h.Symbionts() != nil || h.ReproSymbionts() != nil {
		t.Error("handles to a removed host should resolve to nil")
	}
	if h.HasRoom() || h.AddSymbiont(NewSymbiont(r, env, cfg, 0)) {
		t.Error("a removed host should refuse residents")
	}

	// a second removal is a no-op
	env.Arena().RemoveHost(h)
}

func TestPurgeDropsDeadResidents(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Symbiont.Limit = 3 })
	r := rng.New(32)
	env := &stubEnv{}

	h := NewBacterium(r, env, cfg, 0)
	a, b := NewSymbiont(r, env, cfg, 0), NewSymbiont(r, env, cfg, 0)
	h.AddSymbiont(a)
	h.AddSymbiont(b)
	a.SetDead()

	h.Process(0)

	if _, syms := env.Arena().Len(); syms != 1 {
		t.Errorf("arena holds %d symbionts, want 1", syms)
	}
	if got := h.Symbionts(); len(got) != 1 || got[0] != b {
		t.Errorf("residents = %v, want only the survivor", got)
	}
	if a.Host() != nil {
		t.Error("a purged symbiont should no longer resolve its host")
	}
}

func TestClearHost(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Symbiont.Limit = 3 })
	r := rng.New(33)
	env := &stubEnv{}

	h := NewBacterium(r, env, cfg, 0)
	syms := []*Symbiont{NewSymbiont(r, env, cfg, 0), NewSymbiont(r, env, cfg, 0), NewSymbiont(r, env, cfg, 0)}
	for _, s := range syms {
		h.AddSymbiont(s)
	}

	syms[1].ClearHost()

	if syms[1].Host() != nil {
		t.Error("ClearHost left the host reference")
	}
	got := h.Symbionts()
	if len(got) != 2 || got[0] != syms[0] || got[1] != syms[2] {
		t.Errorf("residents after ClearHost = %v, want first and last in order", got)
	}
	if !h.HasRoom() {
		t.Error("host should have room after losing a resident")
	}
}

func TestRefusedVerticalCopyLeavesArena(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Symbiont.Limit = 0 })
	r := rng.New(34)
	env := &stubEnv{transmit: true}

	s := NewSymbiont(r, env, cfg, 0)
	baby := NewBacterium(r, env, cfg, 0)

	s.VerticalTransmission(baby)

	if _, syms := env.Arena().Len(); syms != 1 {
		t.Errorf("arena holds %d symbionts, want only the parent", syms)
	}
}
