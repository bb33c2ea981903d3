package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// Registry errors. Both indicate a setup mistake, not a runtime condition.
var (
	ErrUnregisteredType = errors.New("unregistered unit type")
	ErrDuplicateSpawner = errors.New("duplicate spawner")
)

// PopulationObserver receives a spawner's label and live count whenever the
// count changes. Notifications are fire-and-forget.
type PopulationObserver interface {
	PopulationChanged(label string, count int)
}

// Spawner places units of one type and tracks how many are live.
type Spawner struct {
	unitType  components.UnitType
	label     string
	position  components.Vec3
	liveCount int
	throttle  LoadThrottle

	pool     *ObjectPool
	motion   *Motion
	observer PopulationObserver
	recorder Recorder
}

// SpawnerOptions configures a Spawner.
type SpawnerOptions struct {
	Type     components.UnitType
	Label    string
	Position components.Vec3
	Throttle LoadThrottle
	Observer PopulationObserver // may be nil
	Recorder Recorder           // may be nil
}

// NewSpawner creates a spawner drawing from pool and initializing units with motion.
func NewSpawner(opts SpawnerOptions, pool *ObjectPool, motion *Motion) *Spawner {
	rec := opts.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Spawner{
		unitType: opts.Type,
		label:    opts.Label,
		position: opts.Position,
		throttle: opts.Throttle,
		pool:     pool,
		motion:   motion,
		observer: opts.Observer,
		recorder: rec,
	}
}

// SpawnUnit activates a unit at point (on the floor at the unit's resting
// height), initializes it and counts it as live.
func (s *Spawner) SpawnUnit(point components.Vec3) ecs.Entity {
	e, grew := s.pool.Acquire(s.unitType)
	if grew {
		s.recorder.RecordPoolGrowth(s.unitType)
	}

	pos := s.motion.posMap.Get(e)
	unit := s.motion.unitMap.Get(e)
	pos.Vec3 = components.Vec3{X: point.X, Y: unit.HalfHeight, Z: point.Z}
	s.motion.Initialize(e)

	s.liveCount++
	s.recorder.RecordSpawn(s.unitType)
	s.notify()
	return e
}

// SpawnAtHome spawns a unit at the spawner's own position.
func (s *Spawner) SpawnAtHome() ecs.Entity {
	return s.SpawnUnit(s.position)
}

// DecreaseSpawnCount records that one of this spawner's units was released.
// A decrement below zero is an invariant violation: it is logged and skipped.
func (s *Spawner) DecreaseSpawnCount() bool {
	if s.liveCount <= 0 {
		slog.Error("population underflow", "type", s.label, "live", s.liveCount)
		s.recorder.RecordUnderflow(s.unitType)
		return false
	}
	s.liveCount--
	s.notify()
	return true
}

func (s *Spawner) notify() {
	if s.observer != nil {
		s.observer.PopulationChanged(s.label, s.liveCount)
	}
}

// Type returns the unit type this spawner places.
func (s *Spawner) Type() components.UnitType { return s.unitType }

// Label returns the display label.
func (s *Spawner) Label() string { return s.label }

// LiveCount returns the number of live units of this type.
func (s *Spawner) LiveCount() int { return s.liveCount }

// Position returns the spawner's world position.
func (s *Spawner) Position() components.Vec3 { return s.position }

// Throttle returns the load throttle for this spawner's type.
func (s *Spawner) Throttle() LoadThrottle { return s.throttle }

// SpawnerRegistry maps unit types to their spawner.
type SpawnerRegistry struct {
	byType map[components.UnitType]*Spawner
	order  []*Spawner
}

// NewSpawnerRegistry builds the lookup. Registering two spawners for the same
// type fails with ErrDuplicateSpawner.
func NewSpawnerRegistry(spawners ...*Spawner) (*SpawnerRegistry, error) {
	r := &SpawnerRegistry{byType: make(map[components.UnitType]*Spawner, len(spawners))}
	for _, sp := range spawners {
		if _, dup := r.byType[sp.Type()]; dup {
			return nil, fmt.Errorf("%w: type %q", ErrDuplicateSpawner, sp.Label())
		}
		r.byType[sp.Type()] = sp
		r.order = append(r.order, sp)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i].Type() < r.order[j].Type() })
	return r, nil
}

// GetSpawnerOfType returns the spawner for t.
func (r *SpawnerRegistry) GetSpawnerOfType(t components.UnitType) (*Spawner, error) {
	sp, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnregisteredType, t)
	}
	return sp, nil
}

// Validate checks that every unit type in 0..numTypes-1 has a spawner.
func (r *SpawnerRegistry) Validate(numTypes int) error {
	var errs []error
	for t := 0; t < numTypes; t++ {
		if _, err := r.GetSpawnerOfType(components.UnitType(t)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Indexed returns spawners indexed by unit type. Validate must have passed.
func (r *SpawnerRegistry) Indexed() []*Spawner {
	n := 0
	for _, sp := range r.order {
		if int(sp.Type())+1 > n {
			n = int(sp.Type()) + 1
		}
	}
	out := make([]*Spawner, n)
	for _, sp := range r.order {
		out[sp.Type()] = sp
	}
	return out
}

// All returns the spawners ordered by unit type.
func (r *SpawnerRegistry) All() []*Spawner {
	return r.order
}

// Counts returns a snapshot of live counts by label.
func (r *SpawnerRegistry) Counts() map[string]int {
	out := make(map[string]int, len(r.order))
	for _, sp := range r.order {
		out[sp.Label()] = sp.LiveCount()
	}
	return out
}
