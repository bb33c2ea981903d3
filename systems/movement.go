package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// ArrivalEpsilon is the default distance under which a destination counts as reached.
const ArrivalEpsilon = 0.2

// MovementSystem advances active units toward their destinations.
type MovementSystem struct {
	filter  *ecs.Filter4[components.Position, components.Velocity, components.Unit, components.Active]
	motion  *Motion
	epsilon float32
}

// NewMovementSystem creates a movement system.
func NewMovementSystem(w *ecs.World, motion *Motion, epsilon float32) *MovementSystem {
	if epsilon <= 0 {
		epsilon = ArrivalEpsilon
	}
	return &MovementSystem{
		filter:  ecs.NewFilter4[components.Position, components.Velocity, components.Unit, components.Active](w),
		motion:  motion,
		epsilon: epsilon,
	}
}

// Update runs one variable-length movement step.
func (s *MovementSystem) Update(dt float32) {
	arena := s.motion.Arena()

	query := s.filter.Query()
	for query.Next() {
		pos, vel, unit, _ := query.Get()

		// Degenerate state (no destination or no velocity) heals here
		if !unit.HasDest || vel.IsZero() {
			s.motion.retarget(pos, vel, unit)
			continue
		}

		pos.Vec3 = pos.Add(vel.Scale(dt))

		if pos.Flat().DistanceTo(unit.Dest.Flat()) < s.epsilon || !arena.Contains(pos.Vec3, 0) {
			s.motion.retarget(pos, vel, unit)
		}
	}
}
