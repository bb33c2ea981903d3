// Package components defines ECS components for the simulation.
package components

// UnitType identifies a unit kind. It indexes the configured unit types.
type UnitType uint8

// BehaviorKind selects how a unit replicates.
type BehaviorKind uint8

const (
	BehaviorImmediate BehaviorKind = iota // Clone spawns on the contact tick
	BehaviorDelayed                       // Clone spawns once the cooldown elapses
)

// String returns the config name of the behavior.
func (b BehaviorKind) String() string {
	switch b {
	case BehaviorImmediate:
		return "immediate"
	case BehaviorDelayed:
		return "delayed"
	default:
		return "unknown"
	}
}

// Position represents a unit's world position.
type Position struct {
	Vec3
}

// Velocity represents a unit's planar velocity.
type Velocity struct {
	Vec3
}

// Unit holds per-unit simulation state. It survives pooling; Initialize on
// the simulation side resets everything except Type, Speed and geometry.
type Unit struct {
	Type       UnitType
	Behavior   BehaviorKind
	SpawnID    uint64 // Drawn fresh on every activation
	Speed      float32
	HalfHeight float32 // Resting height above the floor
	Radius     float32

	Dest    Vec3
	HasDest bool

	CooldownTimer   float32
	OnCooldown      bool
	SpawnSuppressed bool // Re-rolled every fixed tick while above the lower load limit
	SpawnPending    bool // Delayed replication in flight

	LastContact Vec3
}

// Active tags a unit that is checked out of its pool and live in the arena.
type Active struct {
	Since float32 // Sim time of activation
}
