package organism

import (
	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

// LysisState is the phase of a phage's lysis program.
type LysisState uint8

const (
	StateFreeReproducing     LysisState = iota // lysis off or no host: ordinary symbiont life
	StateLysogenicIncubating                   // resident, accumulating offspring
	StateLyticBursting                         // burst timer reached burst_time
)

func (s LysisState) String() string {
	switch s {
	case StateFreeReproducing:
		return "free_reproducing"
	case StateLysogenicIncubating:
		return "lysogenic_incubating"
	case StateLyticBursting:
		return "lytic_bursting"
	}
	return "unknown"
}

// NewPhage creates a phage. Its lytic or lysogenic disposition is drawn from
// lysis_chance here and kept for life; a lysis_chance of -1 gives each phage
// its own uniformly drawn chance.
func NewPhage(r *rng.Source, env Environment, cfg *config.Config, intVal float64) *Symbiont {
	p := newSymbiont(KindPhage, r, env, cfg, intVal)
	p.lysisChance = cfg.Lysis.Chance
	if p.lysisChance < 0 {
		p.lysisChance = r.Float64()
	}
	p.drawDisposition()
	return p
}

func (s *Symbiont) drawDisposition() {
	s.lysogenic = !s.rng.P(s.lysisChance)
}

// BurstTimer returns the number of updates spent incubating in the current host.
func (s *Symbiont) BurstTimer() int { return s.burstTimer }

// SetBurstTimer sets the burst timer.
func (s *Symbiont) SetBurstTimer(t int) { s.burstTimer = t }

// LysisChance returns the phage's probability of being lytic.
func (s *Symbiont) LysisChance() float64 { return s.lysisChance }

// SetLysisChance sets the lysis chance and redraws the disposition.
func (s *Symbiont) SetLysisChance(c float64) {
	s.lysisChance = clamp(c, 0, 1)
	s.drawDisposition()
}

// Lysogenic reports whether the phage was drawn lysogenic.
func (s *Symbiont) Lysogenic() bool { return s.lysogenic }

// LysisState reports which branch Process will take next update.
func (s *Symbiont) LysisState() LysisState {
	if s.Kind != KindPhage || !s.cfg.Lysis.Enabled || s.Host() == nil {
		return StateFreeReproducing
	}
	if s.burstTimer >= s.cfg.Lysis.BurstTime {
		return StateLyticBursting
	}
	return StateLysogenicIncubating
}

func processPhage(s *Symbiont, location int) {
	switch s.LysisState() {
	case StateFreeReproducing:
		processSymbiont(s, location)
		return
	case StateLyticBursting:
		s.LysisBurst(location)
	case StateLysogenicIncubating:
		s.LysisStep()
	}
	s.growOlder(s.cfg.Symbiont.AgeMax)
}

// LysisStep advances the burst timer and, if the phage holds at least
// sym_lysis_res points, queues one offspring in the host and pays for it.
func (s *Symbiont) LysisStep() {
	s.burstTimer++
	h := s.Host()
	if h == nil || s.points < s.cfg.Lysis.Res {
		return
	}
	baby := s.Reproduce()
	h.AddReproSym(baby)
	s.points -= s.cfg.Lysis.Res
}

// LysisBurst releases the host's queued offspring into neighbouring hosts
// and kills the host. Offspring with nowhere to go are discarded.
func (s *Symbiont) LysisBurst(location int) {
	h := s.Host()
	if h == nil {
		return
	}

	queued := h.ReproSymbionts()
	s.env.RecordBurst(len(queued))
	for _, baby := range queued {
		s.env.InjectNeighbor(baby, location)
	}

	h.ClearReproSyms()
	h.SetDead()
	s.burstTimer = 0
}

// transmitPhage copies a lysogenic phage into hostBaby; a lytic phage never
// transmits. With lysis off a phage transmits like a plain symbiont.
func transmitPhage(s *Symbiont, hostBaby *Host) {
	if !s.cfg.Lysis.Enabled {
		transmitVertically(s, hostBaby)
		return
	}
	if !s.lysogenic || s.points < s.cfg.Symbiont.VertTransRes {
		return
	}
	s.placeCopy(hostBaby)
}

// mutatePhage mutates the interaction value and, when phages carry their own
// lysis chance, the chance as well.
func mutatePhage(s *Symbiont) {
	if !s.mutateIntVal(s.cfg.Mutation.Rate, s.cfg.Mutation.Size) {
		return
	}
	if s.cfg.Lysis.Chance < 0 {
		s.lysisChance = clamp(s.lysisChance+s.rng.Normal(0, s.cfg.Mutation.Size), 0, 1)
	}
}
