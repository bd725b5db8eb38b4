// Package sim drives a world headlessly: it seeds the population, advances
// updates and routes window statistics to logs, CSV files, the event
// detector and the live stream.
package sim

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/rng"
	"github.com/pthm-cable/symsoup/telemetry"
	"github.com/pthm-cable/symsoup/world"
)

// Options configures a Sim.
type Options struct {
	Config    *config.Config // required; Simulation.Seed must already be resolved
	LogStats  bool           // log window stats and events via slog
	OutputDir string         // CSV and config snapshot directory ("" disables)

	// Streamer receives every window's stats when set.
	Streamer *telemetry.Streamer

	// StatsCallback is called with every flushed window.
	StatsCallback func(telemetry.UpdateStats)
}

// Sim owns one world and its telemetry sinks.
type Sim struct {
	cfg   *config.Config
	world *world.World

	perf     *telemetry.PerfCollector
	output   *telemetry.OutputManager
	events   *telemetry.EventDetector
	streamer *telemetry.Streamer

	logStats      bool
	statsCallback func(telemetry.UpdateStats)
}

// New builds a world from opts.Config and spawns the initial population.
func New(opts Options) (*Sim, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("sim: nil config")
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	s := &Sim{
		cfg:           cfg,
		world:         world.New(rng.New(cfg.Simulation.Seed), cfg),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:        output,
		events:        telemetry.NewEventDetector(cfg.Telemetry.EventHistorySize),
		streamer:      opts.Streamer,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	s.world.SetPerfCollector(s.perf)

	hosts, syms := s.world.SpawnInitialPopulation()
	slog.Info("population spawned",
		"mode", cfg.Simulation.Mode,
		"grid_x", s.world.Width(),
		"grid_y", s.world.Height(),
		"hosts", hosts,
		"syms", syms,
	)

	return s, nil
}

// World returns the simulated world.
func (s *Sim) World() *world.World { return s.world }

// UpdateCount returns the number of completed updates.
func (s *Sim) UpdateCount() int { return s.world.UpdateCount() }

// Update advances the world one update and flushes telemetry at window ends.
func (s *Sim) Update() {
	s.world.Update()
	s.flushTelemetry()
}

// Run advances until maxUpdates updates have completed, or forever when
// maxUpdates is 0, stopping early when stop returns true.
func (s *Sim) Run(maxUpdates int, stop func(*Sim) bool) {
	for maxUpdates <= 0 || s.UpdateCount() < maxUpdates {
		s.Update()
		if stop != nil && stop(s) {
			return
		}
	}
}

// Close flushes and closes the output files.
func (s *Sim) Close() error {
	return s.output.Close()
}
