package organism

import (
	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
)

// NewPGGSymbiont creates a public-goods symbiont with the given donation
// fraction. A negative donation draws one uniformly in [0, 1].
func NewPGGSymbiont(r *rng.Source, env Environment, cfg *config.Config, intVal, donation float64) *Symbiont {
	s := newSymbiont(KindPGGSymbiont, r, env, cfg, intVal)
	if donation < 0 {
		donation = r.Float64()
	}
	s.donation = clamp(donation, 0, 1)
	return s
}

// Donation returns the fraction of each share the symbiont gives to the
// host's public pool.
func (s *Symbiont) Donation() float64 { return s.donation }

// SetDonation sets the donation fraction, clamped to [0, 1].
func (s *Symbiont) SetDonation(d float64) { s.donation = clamp(d, 0, 1) }

// donateResources puts donation of the share into a PGG host's pool and
// treats the remainder like an ordinary share. Hosts without a pool get no
// donation and the symbiont keeps the whole share.
func donateResources(s *Symbiont, piece float64) float64 {
	if h := s.Host(); h != nil && h.Kind == KindPGGHost {
		given := piece * s.donation
		h.pool += given
		piece -= given
	}
	return shareResources(s, piece)
}

func mutatePGG(s *Symbiont) {
	if !s.mutateIntVal(s.cfg.Mutation.Rate, s.cfg.Mutation.Size) {
		return
	}
	s.donation = clamp(s.donation+s.rng.Normal(0, s.cfg.Mutation.Size), 0, 1)
}
