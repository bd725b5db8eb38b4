package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/symsoup/telemetry"
)

func writeStats(t *testing.T, rows []telemetry.UpdateStats) string {
	t.Helper()
	dir := t.TempDir()
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	for _, r := range rows {
		if err := om.WriteStats(r); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return filepath.Join(dir, telemetry.StatsFile)
}

func sampleRows() []telemetry.UpdateStats {
	return []telemetry.UpdateStats{
		{Update: 100, Hosts: 40, Phages: 10, MeanLysisChance: 0.2},
		{Update: 200, Hosts: 60, Phages: 30, MeanLysisChance: 0.4},
		{Update: 300, Hosts: 20, Phages: 50, MeanLysisChance: 0.6},
	}
}

func TestStatsColumns(t *testing.T) {
	names := columnNames()
	if names[0] != "update" || names[1] != "hosts" {
		t.Errorf("columns start %v, want update, hosts", names[:2])
	}
	for _, n := range names {
		if n == "-" || n == "" {
			t.Errorf("untagged column %q listed", n)
		}
	}
}

func TestSeries(t *testing.T) {
	tests := []struct {
		column string
		want   []float64
	}{
		{"hosts", []float64{40, 60, 20}},
		{"mean_lysis_chance", []float64{0.2, 0.4, 0.6}},
		{"update", []float64{100, 200, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := series(sampleRows(), tt.column)
			if err != nil {
				t.Fatalf("series: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := series(sampleRows(), "nope"); err == nil {
		t.Error("unknown column should fail")
	}
}

func TestSummarize(t *testing.T) {
	sums := summarize(sampleRows())
	if sums[0].Column != "hosts" {
		t.Fatalf("first summary = %q, want hosts", sums[0].Column)
	}
	h := sums[0]
	if h.Min != 20 || h.Max != 60 || h.Mean != 40 || h.Last != 20 {
		t.Errorf("hosts summary = %+v", h)
	}
	if summarize(nil) != nil {
		t.Error("empty input should give no summary")
	}
}

func TestCommands(t *testing.T) {
	path := writeStats(t, sampleRows())

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"plot", []string{"plot", path, "--column", "phages"}, []string{"phages (updates 100-300)"}},
		{"summary", []string{"summary", path}, []string{"3 windows", "hosts", "mean_lysis_chance"}},
		{"columns", []string{"columns"}, []string{"infected_hosts", "mean_burst_size"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute: %v\n%s", err, out.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestPlotUnknownColumn(t *testing.T) {
	path := writeStats(t, sampleRows())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"plot", path, "--column", "nope"})

	if err := cmd.Execute(); err == nil {
		t.Error("plotting an unknown column should fail")
	}
}
