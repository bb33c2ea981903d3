package telemetry

import "github.com/pthm-cable/replicants/components"

// TypeSnapshot is the state of one unit type sampled at window end.
type TypeSnapshot struct {
	Population  int
	PoolSize    int
	Cooldown    float32
	DisableProb float32
}

// Collector accumulates events within time windows and produces WindowStats.
// It implements systems.Recorder.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	labels  []string // indexed by unit type
	counts  []eventCounts
	samples [][]float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per fixed tick (used for tick-to-time conversion)
// labels: unit type names indexed by type
func NewCollector(windowDurationSec float64, dt float32, labels []string) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		labels:              labels,
		counts:              make([]eventCounts, len(labels)),
		samples:             make([][]float64, len(labels)),
	}
}

func (c *Collector) record(t components.UnitType, ev EventType) {
	if int(t) < len(c.counts) {
		c.counts[t][ev]++
	}
}

func (c *Collector) RecordSpawn(t components.UnitType)        { c.record(t, EventSpawn) }
func (c *Collector) RecordDespawn(t components.UnitType)      { c.record(t, EventDespawn) }
func (c *Collector) RecordReplication(t components.UnitType)  { c.record(t, EventReplication) }
func (c *Collector) RecordSuppressed(t components.UnitType)   { c.record(t, EventSuppressed) }
func (c *Collector) RecordPoolGrowth(t components.UnitType)   { c.record(t, EventPoolGrowth) }
func (c *Collector) RecordUnderflow(t components.UnitType)    { c.record(t, EventUnderflow) }
func (c *Collector) RecordDroppedSpawn(t components.UnitType) { c.record(t, EventDroppedSpawn) }

// Count returns the current window's count of ev for type t.
func (c *Collector) Count(t components.UnitType, ev EventType) int {
	return c.counts[t][ev]
}

// SamplePopulation records one population sample per type. populations is
// indexed by unit type.
func (c *Collector) SamplePopulation(populations []int) {
	for t, n := range populations {
		if t < len(c.samples) {
			c.samples[t] = append(c.samples[t], float64(n))
		}
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces one WindowStats per unit type and resets counters for the
// next window. snapshots is indexed by unit type.
func (c *Collector) Flush(currentTick int32, snapshots []TypeSnapshot) []WindowStats {
	out := make([]WindowStats, 0, len(c.labels))
	for t, label := range c.labels {
		var snap TypeSnapshot
		if t < len(snapshots) {
			snap = snapshots[t]
		}
		mean, std, p10, p50, p90 := ComputePopulationStats(c.samples[t])
		n := &c.counts[t]

		out = append(out, WindowStats{
			WindowStartTick: c.windowStartTick,
			WindowEndTick:   currentTick,
			SimTimeSec:      float64(currentTick) * float64(c.dt),
			Type:            label,

			Population:  snap.Population,
			PoolSize:    snap.PoolSize,
			Cooldown:    float64(snap.Cooldown),
			DisableProb: float64(snap.DisableProb),

			Spawns:        n[EventSpawn],
			Despawns:      n[EventDespawn],
			Replications:  n[EventReplication],
			Suppressed:    n[EventSuppressed],
			PoolGrowth:    n[EventPoolGrowth],
			Underflows:    n[EventUnderflow],
			DroppedSpawns: n[EventDroppedSpawn],

			PopMean: mean,
			PopStd:  std,
			PopP10:  p10,
			PopP50:  p50,
			PopP90:  p90,
		})

		// Reset for next window
		n.reset()
		c.samples[t] = c.samples[t][:0]
	}
	c.windowStartTick = currentTick
	return out
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
