package main

import (
	"fmt"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/symsoup/telemetry"
)

// column is one numeric field of the stats CSV.
type column struct {
	name  string
	index int
}

// statsColumns lists the CSV columns of telemetry.UpdateStats in file order.
func statsColumns() []column {
	t := reflect.TypeOf(telemetry.UpdateStats{})
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("csv")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: i})
	}
	return cols
}

func columnNames() []string {
	var names []string
	for _, c := range statsColumns() {
		names = append(names, c.name)
	}
	return names
}

// series extracts one column from every row.
func series(rows []telemetry.UpdateStats, name string) ([]float64, error) {
	i := slices.IndexFunc(statsColumns(), func(c column) bool { return c.name == name })
	if i < 0 {
		return nil, fmt.Errorf("unknown column %q (have %v)", name, columnNames())
	}
	field := statsColumns()[i].index

	out := make([]float64, len(rows))
	for r, row := range rows {
		v := reflect.ValueOf(row).Field(field)
		switch {
		case v.CanInt():
			out[r] = float64(v.Int())
		case v.CanFloat():
			out[r] = v.Float()
		}
	}
	return out, nil
}

// summary is the aggregate of one column over a run.
type summary struct {
	Column string
	Min    float64
	Mean   float64
	Max    float64
	Last   float64
}

// summarize aggregates every column except the update index.
func summarize(rows []telemetry.UpdateStats) []summary {
	if len(rows) == 0 {
		return nil
	}

	var out []summary
	for _, c := range statsColumns() {
		if c.name == "update" {
			continue
		}
		vals, _ := series(rows, c.name)
		out = append(out, summary{
			Column: c.name,
			Min:    floats.Min(vals),
			Mean:   stat.Mean(vals, nil),
			Max:    floats.Max(vals),
			Last:   vals[len(vals)-1],
		})
	}
	return out
}
