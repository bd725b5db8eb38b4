package world

import (
	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/organism"
	"github.com/pthm-cable/symsoup/telemetry"
)

// dataNodes are the per-update monitors the world fills at its sampling point.
type dataNodes struct {
	donation    *telemetry.Monitor // PGG symbiont donation
	hostIntVal  *telemetry.Monitor
	symIntVal   *telemetry.Monitor
	lysisChance *telemetry.Monitor
	burstSize   *telemetry.Monitor // offspring released per burst this update
}

func newDataNodes(cfg *config.Config) dataNodes {
	tc := cfg.Telemetry
	return dataNodes{
		donation:    telemetry.NewMonitor(tc.HistMin, tc.HistMax, tc.HistBins),
		hostIntVal:  telemetry.NewMonitor(-1, 1, 20),
		symIntVal:   telemetry.NewMonitor(-1, 1, 20),
		lysisChance: telemetry.NewMonitor(0, 1, 10),
		burstSize:   telemetry.NewMonitor(0, float64(max(cfg.Lysis.BurstTime, 1)), 10),
	}
}

// PGGDataNode returns the monitor of PGG symbiont donation values, sampled
// once per update over every live PGG symbiont, resident or free-living.
func (w *World) PGGDataNode() *telemetry.Monitor { return w.nodes.donation }

// HostIntValDataNode returns the monitor of host interaction values.
func (w *World) HostIntValDataNode() *telemetry.Monitor { return w.nodes.hostIntVal }

// SymIntValDataNode returns the monitor of symbiont interaction values.
func (w *World) SymIntValDataNode() *telemetry.Monitor { return w.nodes.symIntVal }

// LysisChanceDataNode returns the monitor of phage lysis chances.
func (w *World) LysisChanceDataNode() *telemetry.Monitor { return w.nodes.lysisChance }

// BurstSizeDataNode returns the monitor of burst sizes in the latest update.
func (w *World) BurstSizeDataNode() *telemetry.Monitor { return w.nodes.burstSize }

// Census returns the population snapshot from the latest sampling point.
func (w *World) Census() telemetry.Census { return w.census }

// sample refills the trait monitors and the census from the live population.
func (w *World) sample() {
	n := &w.nodes
	n.donation.Reset()
	n.hostIntVal.Reset()
	n.symIntVal.Reset()
	n.lysisChance.Reset()

	var c telemetry.Census
	visit := func(s *organism.Symbiont) {
		n.symIntVal.AddDatum(s.IntVal())
		switch s.Kind {
		case organism.KindPhage:
			c.Phages++
			if s.Lysogenic() {
				c.Lysogenic++
			}
			n.lysisChance.AddDatum(s.LysisChance())
		case organism.KindPGGSymbiont:
			n.donation.AddDatum(s.Donation())
		}
	}

	for _, h := range w.hosts {
		if h == nil || h.Dead() {
			continue
		}
		c.Hosts++
		n.hostIntVal.AddDatum(h.IntVal())

		infected := false
		for _, s := range h.Symbionts() {
			if s.Dead() {
				continue
			}
			infected = true
			c.ResidentSyms++
			visit(s)
		}
		if infected {
			c.InfectedHosts++
		}
	}

	for _, stack := range w.free {
		for _, s := range stack {
			if s == nil || s.Dead() {
				continue
			}
			c.FreeSyms++
			visit(s)
		}
	}

	c.HostIntVal = n.hostIntVal.Mean()
	c.SymIntVal = n.symIntVal.Mean()
	c.LysisChance = n.lysisChance.Mean()
	c.Donation = n.donation.Mean()
	w.census = c
}
