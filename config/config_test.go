package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Derived.GridSize != cfg.World.GridX*cfg.World.GridY {
		t.Errorf("grid size = %d, want %d", cfg.Derived.GridSize, cfg.World.GridX*cfg.World.GridY)
	}
	if cfg.Lysis.Enabled {
		t.Error("lysis should be off by default")
	}
	if cfg.Telemetry.HistBins != 11 {
		t.Errorf("hist bins = %d, want 11", cfg.Telemetry.HistBins)
	}
	if !cfg.Derived.SamplePre {
		t.Error("default sample timing should be pre")
	}
	if cfg.Derived.HostMutationSize != cfg.Mutation.Size {
		t.Errorf("host mutation size should inherit %v, got %v", cfg.Mutation.Size, cfg.Derived.HostMutationSize)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("world:\n  grid_x: 2\n  grid_y: 1\nlysis:\n  lysis: true\n  sym_lysis_res: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Derived.GridSize != 2 {
		t.Errorf("grid size = %d, want 2", cfg.Derived.GridSize)
	}
	if !cfg.Lysis.Enabled || cfg.Lysis.Res != 5 {
		t.Errorf("lysis overlay not applied: %+v", cfg.Lysis)
	}
	// Untouched sections keep their defaults
	if cfg.Host.ReproRes != 1000 {
		t.Errorf("host_repro_res = %v, want default 1000", cfg.Host.ReproRes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty grid", func(c *Config) { c.World.GridX = 0 }},
		{"negative sym limit", func(c *Config) { c.Symbiont.Limit = -1 }},
		{"negative free sym limit", func(c *Config) { c.Transmission.FreeSymLimit = -1 }},
		{"lysis chance above one", func(c *Config) { c.Lysis.Chance = 1.5 }},
		{"bad sample timing", func(c *Config) { c.Telemetry.SampleTiming = "later" }},
		{"inverted histogram", func(c *Config) { c.Telemetry.HistMax = c.Telemetry.HistMin }},
		{"unknown mode", func(c *Config) { c.Simulation.Mode = "ecto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestRandomLysisChanceAllowed(t *testing.T) {
	cfg := Default()
	cfg.Lysis.Chance = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("-1 lysis chance should be valid: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Symbiont.Limit = 7

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Symbiont.Limit != 7 {
		t.Errorf("sym_limit = %d, want 7", loaded.Symbiont.Limit)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Lysis.BurstTime = 99

	if cfg.Lysis.BurstTime == 99 {
		t.Error("clone shares state with original")
	}
}
