package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pthm-cable/symsoup/config"
	"github.com/pthm-cable/symsoup/sim"
	"github.com/pthm-cable/symsoup/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one simulation and returns the process exit code. Deferred
// shutdown of the stats stream runs before main exits.
func run(args []string) int {
	// CLI flags
	fs := flag.NewFlagSet("symsoup", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := fs.Bool("log-stats", false, "Output window stats via slog")
	outputDir := fs.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := fs.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	maxUpdates := fs.Int("max-updates", -1, "Stop after N updates (-1 = use config, 0 = unlimited)")
	wsAddr := fs.String("ws-addr", "", "Serve live window stats over websocket at this address (e.g. :8080)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	// Resolve the seed once so the config snapshot records it
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}

	updates := cfg.Simulation.Updates
	if *maxUpdates >= 0 {
		updates = *maxUpdates
	}

	var streamer *telemetry.Streamer
	if *wsAddr != "" {
		streamer = telemetry.NewStreamer()
		defer streamer.Close()

		mux := http.NewServeMux()
		mux.Handle("/stats", streamer)
		srv := &http.Server{Addr: *wsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("stats stream server failed", "error", err)
			}
		}()
		defer srv.Close()

		slog.Info("streaming stats", "addr", *wsAddr, "path", "/stats")
	}

	s, err := sim.New(sim.Options{
		Config:    cfg,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Streamer:  streamer,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}

	slog.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"mode", cfg.Simulation.Mode,
		"max_updates", updates,
		"output_dir", *outputDir,
	)

	start := time.Now()
	s.Run(updates, nil)

	census := s.World().Census()
	slog.Info("simulation finished",
		"updates", s.UpdateCount(),
		"elapsed", time.Since(start).String(),
		"hosts", census.Hosts,
		"resident_syms", census.ResidentSyms,
		"free_syms", census.FreeSyms,
	)

	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		return 1
	}
	return 0
}
