package sim

import "log/slog"

// flushTelemetry checks if the data interval has elapsed and fans the
// window's stats out to every sink.
func (s *Sim) flushTelemetry() {
	update := s.world.UpdateCount()
	collector := s.world.Collector()
	if !collector.ShouldFlush(update) {
		return
	}

	stats := collector.Flush(update, s.world.Census())
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := s.output.WritePerf(perfStats, update); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	if s.streamer != nil {
		s.streamer.Publish(stats)
	}

	for _, e := range s.events.Check(stats) {
		if s.logStats {
			e.LogEvent()
		}
		if err := s.output.WriteEvent(e); err != nil {
			slog.Error("failed to write event", "error", err)
		}
	}
}
