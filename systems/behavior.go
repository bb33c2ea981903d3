package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// replicateFunc performs a replication initiated by e at point. unit is e's
// component; implementations must finish writing it before spawning, since a
// spawn invalidates component pointers.
type replicateFunc func(s *CollisionSystem, e ecs.Entity, unit *components.Unit, point components.Vec3)

var behaviorKinds = [...]components.BehaviorKind{
	components.BehaviorImmediate,
	components.BehaviorDelayed,
}

// replicatorFor returns the replication routine for kind.
func replicatorFor(kind components.BehaviorKind) (replicateFunc, bool) {
	switch kind {
	case components.BehaviorImmediate:
		return replicateImmediate, true
	case components.BehaviorDelayed:
		return replicateDelayed, true
	}
	return nil, false
}

// ParseBehavior maps a config name to its BehaviorKind.
func ParseBehavior(name string) (components.BehaviorKind, bool) {
	for _, kind := range behaviorKinds {
		if kind.String() == name {
			return kind, true
		}
	}
	return 0, false
}

// replicateImmediate spawns the clone at the contact point on this tick.
func replicateImmediate(s *CollisionSystem, e ecs.Entity, unit *components.Unit, point components.Vec3) {
	t := unit.Type
	unit.OnCooldown = true
	unit.CooldownTimer = 0

	s.spawners[t].SpawnUnit(point)
	s.recorder.RecordReplication(t)
}

// replicateDelayed queues the clone to appear once the current throttle
// cooldown has elapsed. The parent's cooldown is frozen until then.
func replicateDelayed(s *CollisionSystem, e ecs.Entity, unit *components.Unit, point components.Vec3) {
	sp := s.spawners[unit.Type]
	delay := sp.Throttle().Cooldown(sp.LiveCount())

	unit.OnCooldown = true
	unit.SpawnPending = true
	unit.CooldownTimer = 0

	s.scheduler.Schedule(SpawnEvent{
		FireTime: s.clock() + delay,
		Parent:   e,
		ParentID: unit.SpawnID,
		Type:     unit.Type,
		Point:    point,
	})
}

// FireDue spawns every delayed replication due at now. Events whose parent
// was released, or released and reused, are dropped.
func (s *CollisionSystem) FireDue(now float32) int {
	fired := 0
	for _, ev := range s.scheduler.Poll(now) {
		if !s.pool.IsActive(ev.Parent) || s.unitMap.Get(ev.Parent).SpawnID != ev.ParentID {
			slog.Debug("dropping delayed spawn", "parent_id", ev.ParentID, "type", s.spawners[ev.Type].Label())
			s.recorder.RecordDroppedSpawn(ev.Type)
			continue
		}

		s.spawners[ev.Type].SpawnUnit(ev.Point)
		s.recorder.RecordReplication(ev.Type)
		fired++

		parent := s.unitMap.Get(ev.Parent)
		parent.SpawnPending = false
		parent.OnCooldown = false
		parent.CooldownTimer = 0
	}
	return fired
}
