package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one world update.
const (
	PhaseSample    = "sample"
	PhaseResources = "resources"
	PhaseHosts     = "hosts"
	PhaseFreeSyms  = "free_syms"
	PhaseInjection = "injection"
	PhasePurge     = "purge"
	PhaseTelemetry = "telemetry"
)

var phaseOrder = []string{
	PhaseSample, PhaseResources, PhaseHosts, PhaseFreeSyms,
	PhaseInjection, PhasePurge, PhaseTelemetry,
}

// PerfSample holds timing data for a single update.
type PerfSample struct {
	UpdateDuration time.Duration
	Phases         map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
// A nil collector ignores every call.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	updateStart   time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize updates.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 100
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartUpdate begins timing a new update.
func (p *PerfCollector) StartUpdate() {
	if p == nil {
		return
	}
	p.updateStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndUpdate finishes timing the current update and records the sample.
func (p *PerfCollector) EndUpdate() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		UpdateDuration: now.Sub(p.updateStart),
		Phases:         p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgUpdateDuration time.Duration
	MinUpdateDuration time.Duration
	MaxUpdateDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total update time
	PhasePct map[string]float64

	UpdatesPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minD, maxD time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.UpdateDuration

		if i == 0 || s.UpdateDuration < minD {
			minD = s.UpdateDuration
		}
		if s.UpdateDuration > maxD {
			maxD = s.UpdateDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgUpdateDuration: avg,
		MinUpdateDuration: minD,
		MaxUpdateDuration: maxD,
		PhaseAvg:          phaseAvg,
		PhasePct:          phasePct,
		UpdatesPerSecond:  perSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_update_us", s.AvgUpdateDuration.Microseconds(),
		"min_update_us", s.MinUpdateDuration.Microseconds(),
		"max_update_us", s.MaxUpdateDuration.Microseconds(),
		"updates_per_sec", int(s.UpdatesPerSecond),
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Update        int     `csv:"update"`
	AvgUpdateUS   int64   `csv:"avg_update_us"`
	MinUpdateUS   int64   `csv:"min_update_us"`
	MaxUpdateUS   int64   `csv:"max_update_us"`
	UpdatesPerSec float64 `csv:"updates_per_sec"`
	SamplePct     float64 `csv:"sample_pct"`
	ResourcesPct  float64 `csv:"resources_pct"`
	HostsPct      float64 `csv:"hosts_pct"`
	FreeSymsPct   float64 `csv:"free_syms_pct"`
	InjectionPct  float64 `csv:"injection_pct"`
	PurgePct      float64 `csv:"purge_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(update int) PerfStatsCSV {
	return PerfStatsCSV{
		Update:        update,
		AvgUpdateUS:   s.AvgUpdateDuration.Microseconds(),
		MinUpdateUS:   s.MinUpdateDuration.Microseconds(),
		MaxUpdateUS:   s.MaxUpdateDuration.Microseconds(),
		UpdatesPerSec: s.UpdatesPerSecond,
		SamplePct:     s.PhasePct[PhaseSample],
		ResourcesPct:  s.PhasePct[PhaseResources],
		HostsPct:      s.PhasePct[PhaseHosts],
		FreeSymsPct:   s.PhasePct[PhaseFreeSyms],
		InjectionPct:  s.PhasePct[PhaseInjection],
		PurgePct:      s.PhasePct[PhasePurge],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
