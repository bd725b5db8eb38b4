package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSmallConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`world:
  grid_x: 6
  grid_y: 6
simulation:
  seed: 7
  initial_hosts: 10
  initial_syms: 10
telemetry:
  data_interval: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	cfgPath := writeSmallConfig(t)

	// a regular file where the output directory should go makes sim setup fail
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad flag", []string{"-no-such-flag"}, 2},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, 1},
		{"output setup fails with stream running", []string{"-config", cfgPath, "-output-dir", blocked, "-ws-addr", "127.0.0.1:0"}, 1},
		{"short run", []string{"-config", cfgPath, "-max-updates", "4", "-output-dir", filepath.Join(t.TempDir(), "out")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}
