package systems

// SystemInfo describes a simulation system.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping: "frame", "fixed" or "internal"
}

// SystemRegistry holds metadata about all systems.
// Perf phases and log output use its IDs and names.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the systems run each tick, in execution order.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: "movement", Name: "Movement", Description: "Advances units toward their destinations", Category: "frame"})

	r.Register(SystemInfo{ID: "units", Name: "Units", Description: "Accumulates cooldowns and rolls spawn suppression", Category: "fixed"})
	r.Register(SystemInfo{ID: "scheduler", Name: "Scheduler", Description: "Fires due delayed spawns", Category: "fixed"})
	r.Register(SystemInfo{ID: "contacts", Name: "Contacts", Description: "Finds overlapping unit pairs", Category: "fixed"})
	r.Register(SystemInfo{ID: "collision", Name: "Collision", Description: "Despawns, reflects and replicates on contact", Category: "fixed"})

	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Samples populations and flushes windows", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
