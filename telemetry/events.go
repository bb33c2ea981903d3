// Package telemetry provides population tracking, window stats, perf timing
// and CSV output for the simulation.
package telemetry

// EventType identifies a counted simulation event.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventDespawn
	EventReplication
	EventSuppressed
	EventPoolGrowth
	EventUnderflow
	EventDroppedSpawn

	numEventTypes
)

// String returns the CSV/log name of the event.
func (e EventType) String() string {
	switch e {
	case EventSpawn:
		return "spawns"
	case EventDespawn:
		return "despawns"
	case EventReplication:
		return "replications"
	case EventSuppressed:
		return "suppressed"
	case EventPoolGrowth:
		return "pool_growth"
	case EventUnderflow:
		return "underflows"
	case EventDroppedSpawn:
		return "dropped_spawns"
	default:
		return "unknown"
	}
}

// eventCounts holds one counter per EventType.
type eventCounts [numEventTypes]int

func (c *eventCounts) reset() {
	*c = eventCounts{}
}
