package telemetry

// Collector accumulates events within data intervals and produces UpdateStats.
type Collector struct {
	interval int

	// Current window tracking
	windowStart int

	// Event counters for current window
	hostBirths    int
	hostDeaths    int
	symBirths     int
	infections    int
	vertTransmits int
	bursts        int
	burstTotal    int
	discarded     int
}

// NewCollector creates a collector that flushes every interval updates.
func NewCollector(interval int) *Collector {
	if interval < 1 {
		interval = 1
	}
	return &Collector{interval: interval}
}

// RecordHostBirth records a host offspring placed in the grid.
func (c *Collector) RecordHostBirth() {
	c.hostBirths++
}

// RecordHostDeath records a host removed from the grid.
func (c *Collector) RecordHostDeath() {
	c.hostDeaths++
}

// RecordSymBirth records a horizontally transmitted symbiont offspring.
func (c *Collector) RecordSymBirth() {
	c.symBirths++
}

// RecordInfection records a symbiont entering a host from outside.
func (c *Collector) RecordInfection() {
	c.infections++
}

// RecordVertTransmit records a symbiont copied into a newborn host.
func (c *Collector) RecordVertTransmit() {
	c.vertTransmits++
}

// RecordBurst records a lysis burst releasing size offspring.
func (c *Collector) RecordBurst(size int) {
	c.bursts++
	c.burstTotal += size
}

// RecordDiscard records an offspring that found no valid destination.
func (c *Collector) RecordDiscard() {
	c.discarded++
}

// ShouldFlush returns true if a full data interval has passed.
func (c *Collector) ShouldFlush(update int) bool {
	return update-c.windowStart >= c.interval
}

// Interval returns the number of updates per window.
func (c *Collector) Interval() int {
	return c.interval
}

// Flush produces UpdateStats from the window counters and the census taken
// at update, then resets counters for the next window.
func (c *Collector) Flush(update int, census Census) UpdateStats {
	var meanBurst, lysogenicFrac float64
	if c.bursts > 0 {
		meanBurst = float64(c.burstTotal) / float64(c.bursts)
	}
	if census.Phages > 0 {
		lysogenicFrac = float64(census.Lysogenic) / float64(census.Phages)
	}

	stats := UpdateStats{
		WindowStart: c.windowStart,
		Update:      update,

		Hosts:         census.Hosts,
		InfectedHosts: census.InfectedHosts,
		ResidentSyms:  census.ResidentSyms,
		FreeSyms:      census.FreeSyms,
		Phages:        census.Phages,

		MeanHostIntVal:    nanToZero(census.HostIntVal),
		MeanSymIntVal:     nanToZero(census.SymIntVal),
		MeanLysisChance:   nanToZero(census.LysisChance),
		LysogenicFraction: lysogenicFrac,
		MeanDonation:      nanToZero(census.Donation),

		HostBirths:    c.hostBirths,
		HostDeaths:    c.hostDeaths,
		SymBirths:     c.symBirths,
		Infections:    c.infections,
		VertTransmits: c.vertTransmits,
		Bursts:        c.bursts,
		MeanBurstSize: meanBurst,
		Discarded:     c.discarded,
	}

	// Reset for next window
	c.windowStart = update
	c.hostBirths = 0
	c.hostDeaths = 0
	c.symBirths = 0
	c.infections = 0
	c.vertTransmits = 0
	c.bursts = 0
	c.burstTotal = 0
	c.discarded = 0

	return stats
}
