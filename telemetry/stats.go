package telemetry

import (
	"log/slog"
	"math"
)

// Census is a snapshot of the population, taken by the world at a sampling point.
type Census struct {
	Hosts         int
	InfectedHosts int // hosts with at least one resident
	ResidentSyms  int
	FreeSyms      int
	Phages        int
	Lysogenic     int // phages drawn lysogenic

	HostIntVal  float64 // mean host interaction value
	SymIntVal   float64 // mean symbiont interaction value
	LysisChance float64 // mean phage lysis chance
	Donation    float64 // mean PGG donation
}

// UpdateStats holds aggregated statistics for a data interval.
type UpdateStats struct {
	WindowStart int `csv:"-" json:"window_start"`
	Update      int `csv:"update" json:"update"`

	// Population at window end
	Hosts         int `csv:"hosts" json:"hosts"`
	InfectedHosts int `csv:"infected_hosts" json:"infected_hosts"`
	ResidentSyms  int `csv:"resident_syms" json:"resident_syms"`
	FreeSyms      int `csv:"free_syms" json:"free_syms"`
	Phages        int `csv:"phages" json:"phages"`

	// Trait means at window end
	MeanHostIntVal    float64 `csv:"mean_host_int_val" json:"mean_host_int_val"`
	MeanSymIntVal     float64 `csv:"mean_sym_int_val" json:"mean_sym_int_val"`
	MeanLysisChance   float64 `csv:"mean_lysis_chance" json:"mean_lysis_chance"`
	LysogenicFraction float64 `csv:"lysogenic_fraction" json:"lysogenic_fraction"`
	MeanDonation      float64 `csv:"mean_donation" json:"mean_donation"`

	// Events during window
	HostBirths    int     `csv:"host_births" json:"host_births"`
	HostDeaths    int     `csv:"host_deaths" json:"host_deaths"`
	SymBirths     int     `csv:"sym_births" json:"sym_births"`
	Infections    int     `csv:"infections" json:"infections"`
	VertTransmits int     `csv:"vert_transmits" json:"vert_transmits"`
	Bursts        int     `csv:"bursts" json:"bursts"`
	MeanBurstSize float64 `csv:"mean_burst_size" json:"mean_burst_size"`
	Discarded     int     `csv:"discarded" json:"discarded"`
}

// nanToZero keeps CSV and JSON output numeric for empty populations.
func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// LogValue implements slog.LogValuer for structured logging.
func (s UpdateStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("update", s.Update),
		slog.Int("hosts", s.Hosts),
		slog.Int("infected_hosts", s.InfectedHosts),
		slog.Int("resident_syms", s.ResidentSyms),
		slog.Int("free_syms", s.FreeSyms),
		slog.Int("phages", s.Phages),
		slog.Float64("mean_host_int_val", s.MeanHostIntVal),
		slog.Float64("mean_sym_int_val", s.MeanSymIntVal),
		slog.Float64("mean_lysis_chance", s.MeanLysisChance),
		slog.Float64("lysogenic_fraction", s.LysogenicFraction),
		slog.Float64("mean_donation", s.MeanDonation),
		slog.Int("host_births", s.HostBirths),
		slog.Int("host_deaths", s.HostDeaths),
		slog.Int("sym_births", s.SymBirths),
		slog.Int("infections", s.Infections),
		slog.Int("vert_transmits", s.VertTransmits),
		slog.Int("bursts", s.Bursts),
		slog.Float64("mean_burst_size", s.MeanBurstSize),
		slog.Int("discarded", s.Discarded),
	)
}

// LogStats logs the update stats using slog.
func (s UpdateStats) LogStats() {
	slog.Info("stats", "stats", s)
}
