package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

const (
	typeRed  components.UnitType = 0
	typeBlue components.UnitType = 1
)

// scriptedRand replays vals in a loop.
type scriptedRand struct {
	vals []float32
	i    int
}

func (r *scriptedRand) Float32() float32 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

type countObserver struct {
	last  map[string]int
	calls int
}

func (o *countObserver) PopulationChanged(label string, count int) {
	if o.last == nil {
		o.last = make(map[string]int)
	}
	o.last[label] = count
	o.calls++
}

type countRecorder struct {
	spawns, despawns, replications, suppressed, growth, underflows, dropped int
}

func (r *countRecorder) RecordSpawn(components.UnitType)        { r.spawns++ }
func (r *countRecorder) RecordDespawn(components.UnitType)      { r.despawns++ }
func (r *countRecorder) RecordReplication(components.UnitType)  { r.replications++ }
func (r *countRecorder) RecordSuppressed(components.UnitType)   { r.suppressed++ }
func (r *countRecorder) RecordPoolGrowth(components.UnitType)   { r.growth++ }
func (r *countRecorder) RecordUnderflow(components.UnitType)    { r.underflows++ }
func (r *countRecorder) RecordDroppedSpawn(components.UnitType) { r.dropped++ }

// fixture is a two-type simulation over a 10x10 arena.
type fixture struct {
	world     *ecs.World
	arena     Arena
	ids       *IDSequence
	pool      *ObjectPool
	motion    *Motion
	spawners  []*Spawner
	registry  *SpawnerRegistry
	scheduler *SpawnScheduler
	collision *CollisionSystem
	units     *UnitSystem
	movement  *MovementSystem
	observer  *countObserver
	recorder  *countRecorder
	now       float32

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	unitMap *ecs.Map1[components.Unit]
}

type fixtureOptions struct {
	poolSize int
	throttle LoadThrottle
	behavior components.BehaviorKind
	rng      Rand
}

func defaultThrottle() LoadThrottle {
	return LoadThrottle{LowerLoadLimit: 0, UpperLoadLimit: 10, MinCooldown: 0.5, MaxCooldown: 5.0}
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	if opts.poolSize == 0 {
		opts.poolSize = 4
	}
	if opts.rng == nil {
		opts.rng = rand.New(rand.NewSource(1))
	}

	w := ecs.NewWorld()
	arena, err := NewArena(0, 0, 10, 10)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		world:    w,
		arena:    arena,
		ids:      &IDSequence{},
		observer: &countObserver{},
		recorder: &countRecorder{},
		posMap:   ecs.NewMap1[components.Position](w),
		velMap:   ecs.NewMap1[components.Velocity](w),
		unitMap:  ecs.NewMap1[components.Unit](w),
	}
	clock := func() float32 { return f.now }

	protos := []UnitPrototype{
		{Type: typeRed, Name: "red", Behavior: opts.behavior, Speed: 3, HalfHeight: 0.5, Radius: 0.5, PoolSize: opts.poolSize},
		{Type: typeBlue, Name: "blue", Behavior: opts.behavior, Speed: 3, HalfHeight: 0.5, Radius: 0.5, PoolSize: opts.poolSize},
	}
	f.pool = NewObjectPool(w, protos, f.ids, clock)
	f.motion = NewMotion(w, arena, opts.rng)

	for _, p := range protos {
		f.spawners = append(f.spawners, NewSpawner(SpawnerOptions{
			Type:     p.Type,
			Label:    p.Name,
			Position: components.Vec3{X: 5, Z: 5},
			Throttle: opts.throttle,
			Observer: f.observer,
			Recorder: f.recorder,
		}, f.pool, f.motion))
	}
	f.registry, err = NewSpawnerRegistry(f.spawners...)
	if err != nil {
		t.Fatal(err)
	}

	f.scheduler = NewSpawnScheduler()
	f.collision = NewCollisionSystem(w, f.pool, f.motion, f.registry.Indexed(), f.scheduler, f.recorder, clock)
	f.units = NewUnitSystem(w, f.registry.Indexed(), opts.rng, f.recorder)
	f.movement = NewMovementSystem(w, f.motion, ArrivalEpsilon)
	return f
}

// spawn places a unit of type t at (x, z) and takes it off cooldown.
func (f *fixture) spawn(t components.UnitType, x, z float32) ecs.Entity {
	e := f.spawners[t].SpawnUnit(components.Vec3{X: x, Z: z})
	f.unitMap.Get(e).OnCooldown = false
	return e
}

// enter returns the symmetric enter contacts for a touching a at point.
func (f *fixture) enter(a, b ecs.Entity, point components.Vec3) []Contact {
	pa, pb := f.posMap.Get(a).Vec3, f.posMap.Get(b).Vec3
	n := pa.Sub(pb).Flat().Normalize()
	ia, ib := f.unitMap.Get(a).SpawnID, f.unitMap.Get(b).SpawnID
	return []Contact{
		{Self: a, Other: b, SelfID: ia, OtherID: ib, Point: point, Normal: n, Phase: ContactEnter},
		{Self: b, Other: a, SelfID: ib, OtherID: ia, Point: point, Normal: n.Scale(-1), Phase: ContactEnter},
	}
}

// activeOf returns the number of active units of type t, counted directly.
func (f *fixture) activeOf(t components.UnitType) int {
	filter := ecs.NewFilter2[components.Unit, components.Active](f.world)
	n := 0
	query := filter.Query()
	for query.Next() {
		u, _ := query.Get()
		if u.Type == t {
			n++
		}
	}
	return n
}
