package organism

import (
	"testing"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

func lysisConfig(t *testing.T, edit func(*config.Config)) *config.Config {
	return testConfig(t, func(c *config.Config) {
		c.Lysis.Enabled = true
		if edit != nil {
			edit(c)
		}
	})
}

func TestPhageProcess(t *testing.T) {
	t.Run("burst timer at burst time lyses the host", func(t *testing.T) {
		cfg := lysisConfig(t, nil)
		r := rng.New(5)
		env := &stubEnv{}

		p := NewPhage(r, env, cfg, -1)
		p1 := NewPhage(r, env, cfg, -1)
		p2 := NewPhage(r, env, cfg, -1)
		h := NewBacterium(r, env, cfg, 0)

		p.SetHost(h)
		p.SetBurstTimer(15)
		h.AddReproSym(p1)
		h.AddReproSym(p2)

		if p.LysisState() != StateLyticBursting {
			t.Fatalf("state = %v, want lytic_bursting", p.LysisState())
		}

		p.Process(2)

		if !h.Dead() {
			t.Error("host should be dead after the burst")
		}
		if len(h.ReproSymbionts()) != 0 {
			t.Errorf("repro queue has %d offspring, want 0", len(h.ReproSymbionts()))
		}
		if len(env.injected) != 2 || env.injected[0] != p1 || env.injected[1] != p2 {
			t.Error("both queued offspring should be injected in queue order")
		}
		if len(env.bursts) != 1 || env.bursts[0] != 2 {
			t.Errorf("bursts = %v, want [2]", env.bursts)
		}
		if p.BurstTimer() != 0 {
			t.Errorf("burst timer = %d, want reset to 0", p.BurstTimer())
		}
	})

	t.Run("burst timer below burst time reproduces into the queue", func(t *testing.T) {
		cfg := lysisConfig(t, nil)
		r := rng.New(5)
		env := &stubEnv{}

		h := NewBacterium(r, env, cfg, 0)
		p3 := NewPhage(r, env, cfg, -1)
		h.AddReproSym(NewPhage(r, env, cfg, -1))
		h.AddReproSym(NewPhage(r, env, cfg, -1))
		p3.SetPoints(10)
		p3.SetHost(h)

		if p3.LysisState() != StateLysogenicIncubating {
			t.Fatalf("state = %v, want lysogenic_incubating", p3.LysisState())
		}

		p3.Process(2)

		if h.Dead() {
			t.Error("host should survive incubation")
		}
		if len(h.ReproSymbionts()) <= 2 {
			t.Errorf("repro queue = %d, want more than 2", len(h.ReproSymbionts()))
		}
		if p3.Points() >= 10 {
			t.Errorf("phage points = %v, want less than 10", p3.Points())
		}
		if p3.BurstTimer() != 1 {
			t.Errorf("burst timer = %d, want 1", p3.BurstTimer())
		}
		if len(env.injected) != 0 {
			t.Error("no injection before the burst")
		}
	})

	t.Run("lysis disabled behaves like a plain symbiont", func(t *testing.T) {
		cfg := testConfig(t, func(c *config.Config) { c.Lysis.Enabled = false })
		r := rng.New(5)
		env := &stubEnv{}

		h := NewBacterium(r, env, cfg, 0)
		p := NewPhage(r, env, cfg, 0)
		h.AddSymbiont(p)
		p.SetBurstTimer(50)
		p.SetPoints(cfg.Symbiont.HorizTransRes)

		if p.LysisState() != StateFreeReproducing {
			t.Fatalf("state = %v, want free_reproducing", p.LysisState())
		}

		p.Process(0)

		if h.Dead() || p.BurstTimer() != 50 {
			t.Error("lysis program ran with lysis disabled")
		}
		if len(env.symBirths) != 1 {
			t.Errorf("sym births = %d, want 1 horizontal offspring", len(env.symBirths))
		}
	})

	t.Run("free phage does not lyse", func(t *testing.T) {
		cfg := lysisConfig(t, nil)
		env := &stubEnv{}
		p := NewPhage(rng.New(5), env, cfg, 0)
		p.SetBurstTimer(100)

		p.Process(0)

		if len(env.bursts) != 0 || p.BurstTimer() != 100 {
			t.Error("hostless phage should not run the lysis program")
		}
	})
}

func TestLysisStep(t *testing.T) {
	tests := []struct {
		name       string
		points     float64
		wantPoints float64
		wantQueued int
	}{
		{"not enough resources", 3, 3, 0},
		{"exactly enough resources", 5, 0, 1},
		{"leftover resources", 7, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := lysisConfig(t, func(c *config.Config) { c.Lysis.Res = 5 })
			r := rng.New(9)
			env := &stubEnv{}

			p := NewPhage(r, env, cfg, 0)
			h := NewBacterium(r, env, cfg, 0)
			h.AddSymbiont(p)
			p.SetPoints(tt.points)
			p.SetBurstTimer(0)

			p.LysisStep()

			if p.BurstTimer() != 1 {
				t.Errorf("burst timer = %d, want 1", p.BurstTimer())
			}
			if got := len(h.ReproSymbionts()); got != tt.wantQueued {
				t.Errorf("queued offspring = %d, want %d", got, tt.wantQueued)
			}
			if p.Points() != tt.wantPoints {
				t.Errorf("points = %v, want %v", p.Points(), tt.wantPoints)
			}
			for _, baby := range h.ReproSymbionts() {
				if baby.Kind != KindPhage || baby.Host() != nil || baby.Points() != 0 {
					t.Errorf("unexpected offspring kind %v host %v points %v", baby.Kind, baby.Host(), baby.Points())
				}
			}
		})
	}
}

func TestLysisBurstEmptyQueue(t *testing.T) {
	cfg := lysisConfig(t, nil)
	r := rng.New(6)
	env := &stubEnv{}

	h := NewBacterium(r, env, cfg, 0)
	p := NewPhage(r, env, cfg, 0)
	h.AddSymbiont(p)

	p.LysisBurst(0)

	if !h.Dead() {
		t.Error("host should die even with nothing queued")
	}
	if len(env.injected) != 0 {
		t.Error("nothing should be injected")
	}
	if len(env.bursts) != 1 || env.bursts[0] != 0 {
		t.Errorf("bursts = %v, want [0]", env.bursts)
	}
}

func TestPhageDisposition(t *testing.T) {
	r := rng.New(1)
	env := &stubEnv{}

	lysogenic := NewPhage(r, env, lysisConfig(t, func(c *config.Config) { c.Lysis.Chance = 0 }), 0)
	if !lysogenic.Lysogenic() || lysogenic.LysisChance() != 0 {
		t.Error("lysis_chance 0 should give a lysogenic phage")
	}

	lytic := NewPhage(r, env, lysisConfig(t, func(c *config.Config) { c.Lysis.Chance = 1 }), 0)
	if lytic.Lysogenic() || lytic.LysisChance() != 1 {
		t.Error("lysis_chance 1 should give a lytic phage")
	}

	own := lysisConfig(t, func(c *config.Config) { c.Lysis.Chance = -1 })
	seen := map[float64]bool{}
	for i := 0; i < 10; i++ {
		p := NewPhage(r, env, own, 0)
		if p.LysisChance() < 0 || p.LysisChance() > 1 {
			t.Fatalf("drawn lysis chance %v outside [0, 1]", p.LysisChance())
		}
		seen[p.LysisChance()] = true
	}
	if len(seen) < 2 {
		t.Error("lysis_chance -1 should draw a chance per phage")
	}

	lytic.SetLysisChance(0)
	if !lytic.Lysogenic() {
		t.Error("SetLysisChance(0) should redraw a lysogenic disposition")
	}
}

func TestPhageVerticalTransmission(t *testing.T) {
	tests := []struct {
		name        string
		lysisChance float64
		vertTrans   bool
		want        int
	}{
		{"lytic with transmission enabled", 1, true, 0},
		{"lytic with transmission disabled", 1, false, 0},
		{"lysogenic with transmission enabled", 0, true, 1},
		{"lysogenic with transmission disabled", 0, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := lysisConfig(t, func(c *config.Config) { c.Lysis.Chance = tt.lysisChance })
			r := rng.New(-1)
			env := &stubEnv{transmit: tt.vertTrans}

			h := NewBacterium(r, env, cfg, 0.5)
			p := NewPhage(r, env, cfg, -0.5)
			h.AddSymbiont(p)
			hostBaby := NewBacterium(r, env, cfg, h.IntVal())

			p.VerticalTransmission(hostBaby)

			if got := len(hostBaby.Symbionts()); got != tt.want {
				t.Errorf("newborn residents = %d, want %d", got, tt.want)
			}
			if len(h.Symbionts()) != 1 || p.Host() != h {
				t.Error("parent host and phage should be untouched")
			}
			if tt.want == 1 && hostBaby.Symbionts()[0].Host() != hostBaby {
				t.Error("transmitted copy should live in the newborn")
			}
		})
	}
}

func TestHostPurgesDeadPhages(t *testing.T) {
	tests := []struct {
		name  string
		lysis bool
		n     int
		dead  int
	}{
		{"incubating phages", true, 2, 0},
		{"lysis disabled", false, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Lysis.Enabled = tt.lysis
				c.Lysis.Chance = 0
				c.Symbiont.Limit = tt.n
			})
			r := rng.New(11)
			env := &stubEnv{}

			h := NewBacterium(r, env, cfg, 0)
			for i := 0; i < tt.n; i++ {
				h.AddSymbiont(NewPhage(r, env, cfg, 0))
			}
			var survivors []*Symbiont
			for i, s := range h.Symbionts() {
				if i == tt.dead {
					s.SetDead()
					continue
				}
				survivors = append(survivors, s)
			}

			h.Process(0)

			got := h.Symbionts()
			if len(got) != tt.n-1 {
				t.Fatalf("residents = %d, want %d", len(got), tt.n-1)
			}
			for i := range survivors {
				if got[i] != survivors[i] {
					t.Errorf("resident %d is not the original survivor", i)
				}
			}
			if h.Dead() {
				t.Error("host should survive the purge")
			}
		})
	}
}
