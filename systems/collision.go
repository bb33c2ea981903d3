package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// ContactPhase distinguishes a fresh contact from a sustained one.
type ContactPhase uint8

const (
	ContactEnter ContactPhase = iota
	ContactStay
)

// Contact is one side of a collision as seen by Self. Every overlapping pair
// produces two contacts, one per participant.
type Contact struct {
	Self, Other     ecs.Entity
	SelfID, OtherID uint64 // Spawn IDs when the contact was produced
	Point           components.Vec3
	Normal          components.Vec3 // Points from Other toward Self
	Phase           ContactPhase
}

// CollisionSystem reacts to contacts: despawn on a hostile touch, reflect and
// replicate on a friendly one, separate while overlapping.
type CollisionSystem struct {
	pool      *ObjectPool
	motion    *Motion
	spawners  []*Spawner // indexed by unit type
	scheduler *SpawnScheduler
	recorder  Recorder
	clock     func() float32

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	unitMap *ecs.Map1[components.Unit]
}

// NewCollisionSystem creates the collision reaction system.
func NewCollisionSystem(w *ecs.World, pool *ObjectPool, motion *Motion, spawners []*Spawner, scheduler *SpawnScheduler, recorder Recorder, clock func() float32) *CollisionSystem {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if scheduler == nil {
		scheduler = NewSpawnScheduler()
	}
	if clock == nil {
		clock = func() float32 { return 0 }
	}
	return &CollisionSystem{
		pool:      pool,
		motion:    motion,
		spawners:  spawners,
		scheduler: scheduler,
		recorder:  recorder,
		clock:     clock,
		posMap:    ecs.NewMap1[components.Position](w),
		velMap:    ecs.NewMap1[components.Velocity](w),
		unitMap:   ecs.NewMap1[components.Unit](w),
	}
}

// Scheduler returns the delayed-spawn queue.
func (s *CollisionSystem) Scheduler() *SpawnScheduler { return s.scheduler }

// Handle processes contacts in order. Contacts made stale by earlier
// reactions in the same batch are skipped.
func (s *CollisionSystem) Handle(contacts []Contact) {
	for i := range contacts {
		c := &contacts[i]
		if !s.current(c) {
			continue
		}
		switch c.Phase {
		case ContactEnter:
			s.HandleEnter(c)
		case ContactStay:
			s.HandleStay(c)
		}
	}
}

// current reports whether both participants are still the units the contact
// was produced for. The other unit may already be released; only reuse
// invalidates it.
func (s *CollisionSystem) current(c *Contact) bool {
	if !s.pool.IsActive(c.Self) {
		return false
	}
	return s.unitMap.Get(c.Self).SpawnID == c.SelfID &&
		s.unitMap.Get(c.Other).SpawnID == c.OtherID
}

// HandleEnter reacts to a fresh contact.
func (s *CollisionSystem) HandleEnter(c *Contact) {
	unit := s.unitMap.Get(c.Self)
	other := s.unitMap.Get(c.Other)

	if unit.Type != other.Type {
		s.despawn(c.Self, unit.Type)
		return
	}
	if unit.SpawnSuppressed {
		return
	}

	pos, vel := s.posMap.Get(c.Self), s.velMap.Get(c.Self)
	normal := c.Normal.Flat().Normalize()
	dir := vel.Flat().Normalize().Reflect(normal).Flat().Normalize()
	if dir.IsZero() {
		dir = normal
	}
	s.motion.retargetToward(pos, vel, unit, dir)
	unit.LastContact = c.Point

	if unit.OnCooldown || unit.SpawnID <= other.SpawnID {
		return
	}
	if replicate, ok := replicatorFor(unit.Behavior); ok {
		replicate(s, c.Self, unit, c.Point)
	}
}

// HandleStay pushes the unit away from the unit it overlaps.
func (s *CollisionSystem) HandleStay(c *Contact) {
	unit := s.unitMap.Get(c.Self)
	if unit.SpawnSuppressed {
		return
	}
	pos, vel := s.posMap.Get(c.Self), s.velMap.Get(c.Self)
	away := pos.Sub(s.posMap.Get(c.Other).Vec3).Flat()
	if away.IsZero() {
		away = c.Normal
	}
	s.motion.retargetToward(pos, vel, unit, away)
}

// despawn releases e and decrements its spawner. The decrement only happens
// when the release actually deactivated e, so each spawn is paired with at
// most one decrement.
func (s *CollisionSystem) despawn(e ecs.Entity, t components.UnitType) {
	if !s.pool.Release(e) {
		return
	}
	s.spawners[t].DecreaseSpawnCount()
	s.recorder.RecordDespawn(t)
}
