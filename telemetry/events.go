package telemetry

import (
	"fmt"
	"log/slog"
)

// EventType identifies a population-level event.
type EventType string

const (
	EventPhageExtinction  EventType = "phage_extinction"
	EventHostCollapse     EventType = "host_collapse"
	EventSymbiontFixation EventType = "symbiont_fixation"
	EventHostRecovery     EventType = "host_recovery"
)

// Event is a notable moment detected from consecutive UpdateStats.
type Event struct {
	Type        EventType `csv:"type"`
	Update      int       `csv:"update"`
	Description string    `csv:"description"`
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info("event",
		"type", string(e.Type),
		"update", e.Update,
		"description", e.Description,
	)
}

// EventDetector watches the stats stream for extinctions, collapses and fixation.
type EventDetector struct {
	// Rolling history (circular buffer)
	history     []UpdateStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	collapsed   bool // a collapse was reported and hosts have not recovered
	collapseLow int  // lowest host count since the collapse
	sawPhages   bool // phages were present since the last extinction
	fixed       bool // fixation already reported and still holding
}

// NewEventDetector creates a detector with the given history size.
func NewEventDetector(historySize int) *EventDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &EventDetector{
		history:     make([]UpdateStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered events.
func (d *EventDetector) Check(stats UpdateStats) []Event {
	var events []Event

	if e := d.checkPhageExtinction(stats); e != nil {
		events = append(events, *e)
	}
	if e := d.checkRecovery(stats); e != nil {
		events = append(events, *e)
	} else if e := d.checkHostCollapse(stats); e != nil {
		events = append(events, *e)
	}
	if e := d.checkFixation(stats); e != nil {
		events = append(events, *e)
	}

	d.addToHistory(stats)

	return events
}

func (d *EventDetector) addToHistory(stats UpdateStats) {
	d.history[d.historyIdx] = stats
	d.historyIdx = (d.historyIdx + 1) % d.historySize
	if d.historyIdx == 0 {
		d.historyFull = true
	}
}

func (d *EventDetector) getHistory() []UpdateStats {
	if d.historyFull {
		return d.history
	}
	return d.history[:d.historyIdx]
}

func (d *EventDetector) checkPhageExtinction(stats UpdateStats) *Event {
	if stats.Phages > 0 {
		d.sawPhages = true
		return nil
	}
	if !d.sawPhages {
		return nil
	}
	d.sawPhages = false

	return &Event{
		Type:        EventPhageExtinction,
		Update:      stats.Update,
		Description: "No phages remain",
	}
}

func (d *EventDetector) checkHostCollapse(stats UpdateStats) *Event {
	if d.collapsed {
		if stats.Hosts < d.collapseLow {
			d.collapseLow = stats.Hosts
		}
		return nil
	}

	// Peak over the rolling history
	peak := 0
	for _, h := range d.getHistory() {
		peak = max(peak, h.Hosts)
	}
	if peak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Hosts)/float64(peak)
	if drop <= 0.5 {
		return nil
	}

	d.collapsed = true
	d.collapseLow = stats.Hosts

	return &Event{
		Type:        EventHostCollapse,
		Update:      stats.Update,
		Description: fmt.Sprintf("Hosts fell %.0f%% from peak %d to %d", drop*100, peak, stats.Hosts),
	}
}

func (d *EventDetector) checkRecovery(stats UpdateStats) *Event {
	if !d.collapsed {
		return nil
	}
	if stats.Hosts < max(2*d.collapseLow, 10) {
		return nil
	}
	d.collapsed = false

	return &Event{
		Type:        EventHostRecovery,
		Update:      stats.Update,
		Description: fmt.Sprintf("Hosts recovered from %d to %d", d.collapseLow, stats.Hosts),
	}
}

func (d *EventDetector) checkFixation(stats UpdateStats) *Event {
	all := stats.Hosts > 0 && stats.InfectedHosts == stats.Hosts
	if !all {
		d.fixed = false
		return nil
	}
	if d.fixed {
		return nil
	}
	d.fixed = true

	return &Event{
		Type:        EventSymbiontFixation,
		Update:      stats.Update,
		Description: fmt.Sprintf("All %d hosts carry symbionts", stats.Hosts),
	}
}
