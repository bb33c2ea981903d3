package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// Motion owns destination choice and course setting for units.
type Motion struct {
	arena Arena
	rng   Rand

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	unitMap *ecs.Map1[components.Unit]
}

// NewMotion creates a Motion confined to arena.
func NewMotion(w *ecs.World, arena Arena, rng Rand) *Motion {
	return &Motion{
		arena:   arena,
		rng:     rng,
		posMap:  ecs.NewMap1[components.Position](w),
		velMap:  ecs.NewMap1[components.Velocity](w),
		unitMap: ecs.NewMap1[components.Unit](w),
	}
}

// Arena returns the bounds units are confined to.
func (m *Motion) Arena() Arena { return m.arena }

// RandomDestination samples x and z independently inside the arena at the
// given resting height.
func (m *Motion) RandomDestination(height float32) components.Vec3 {
	return components.Vec3{
		X: randRange(m.rng, m.arena.MinX, m.arena.MaxX),
		Y: height,
		Z: randRange(m.rng, m.arena.MinZ, m.arena.MaxZ),
	}
}

// DestinationToward picks a point along dir from pos that stays inside the
// arena. The multiplier is drawn from [1, bound], where bound is the largest
// step along dir before crossing an edge on either axis. ok is false when dir
// is degenerate or pos already sits on or past the edge it points at.
func (m *Motion) DestinationToward(pos, dir components.Vec3, height float32) (dest components.Vec3, ok bool) {
	dir = dir.Flat().Normalize()
	if dir.IsZero() {
		return components.Vec3{}, false
	}

	bound := axisBound(pos.X, dir.X, m.arena.MinX, m.arena.MaxX)
	if zb := axisBound(pos.Z, dir.Z, m.arena.MinZ, m.arena.MaxZ); zb < bound {
		bound = zb
	}
	if !(bound > 0) || math.IsInf(float64(bound), 1) {
		return components.Vec3{}, false
	}

	mult := bound
	if bound > 1 {
		mult = randRange(m.rng, 1, bound)
	}
	dest = pos.Add(dir.Scale(mult))
	dest.Y = height
	return dest, true
}

// axisBound returns how many multiples of d fit between p and the edge in
// front of it. A zero component never limits the step.
func axisBound(p, d, lo, hi float32) float32 {
	switch {
	case d < 0:
		return (p - lo) / -d
	case d > 0:
		return (hi - p) / d
	default:
		return float32(math.Inf(1))
	}
}

// Initialize resets a freshly activated unit: new destination, cleared
// replication state, and an initial cooldown.
func (m *Motion) Initialize(e ecs.Entity) {
	pos, vel, unit := m.posMap.Get(e), m.velMap.Get(e), m.unitMap.Get(e)
	m.retarget(pos, vel, unit)
	unit.CooldownTimer = 0
	unit.OnCooldown = true
	unit.SpawnSuppressed = false
	unit.SpawnPending = false
	unit.LastContact = components.Vec3{}
}

// RetargetToward gives the unit a destination biased along dir, falling back
// to an unbiased one when no biased destination exists.
func (m *Motion) RetargetToward(e ecs.Entity, dir components.Vec3) {
	m.retargetToward(m.posMap.Get(e), m.velMap.Get(e), m.unitMap.Get(e), dir)
}

func (m *Motion) retarget(pos *components.Position, vel *components.Velocity, unit *components.Unit) {
	m.setCourse(pos, vel, unit, m.RandomDestination(unit.HalfHeight))
}

func (m *Motion) retargetToward(pos *components.Position, vel *components.Velocity, unit *components.Unit, dir components.Vec3) {
	dest, ok := m.DestinationToward(pos.Vec3, dir, unit.HalfHeight)
	if !ok {
		m.retarget(pos, vel, unit)
		return
	}
	m.setCourse(pos, vel, unit, dest)
}

// setCourse points the planar velocity at dest.
func (m *Motion) setCourse(pos *components.Position, vel *components.Velocity, unit *components.Unit, dest components.Vec3) {
	unit.Dest = dest
	unit.HasDest = true
	vel.Vec3 = dest.Sub(pos.Vec3).Flat().Normalize().Scale(unit.Speed)
}
