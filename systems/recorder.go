package systems

import "github.com/pthm-cable/replicants/components"

// Recorder receives simulation events for telemetry.
type Recorder interface {
	RecordSpawn(t components.UnitType)
	RecordDespawn(t components.UnitType)
	RecordReplication(t components.UnitType)
	RecordSuppressed(t components.UnitType)
	RecordPoolGrowth(t components.UnitType)
	RecordUnderflow(t components.UnitType)
	RecordDroppedSpawn(t components.UnitType)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) RecordSpawn(components.UnitType)        {}
func (NopRecorder) RecordDespawn(components.UnitType)      {}
func (NopRecorder) RecordReplication(components.UnitType)  {}
func (NopRecorder) RecordSuppressed(components.UnitType)   {}
func (NopRecorder) RecordPoolGrowth(components.UnitType)   {}
func (NopRecorder) RecordUnderflow(components.UnitType)    {}
func (NopRecorder) RecordDroppedSpawn(components.UnitType) {}
