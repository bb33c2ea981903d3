package systems

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// IDSequence hands out spawn IDs. It is monotonic and never reset; IDs are
// never reused, even when a pooled instance is reactivated.
type IDSequence struct {
	last atomic.Uint64
}

// Next returns the next spawn ID (the first is 1).
func (s *IDSequence) Next() uint64 {
	return s.last.Add(1)
}

// Last returns the most recently issued ID.
func (s *IDSequence) Last() uint64 {
	return s.last.Load()
}

// UnitPrototype is the template new pool instances are built from.
type UnitPrototype struct {
	Type       components.UnitType
	Name       string
	Behavior   components.BehaviorKind
	Speed      float32
	HalfHeight float32
	Radius     float32
	PoolSize   int
}

type typePool struct {
	proto     UnitPrototype
	instances []ecs.Entity // in creation order; grows, never shrinks
}

// ObjectPool keeps a per-type free list of unit entities. Inactive instances
// stay in the world without the Active tag.
type ObjectPool struct {
	world     *ecs.World
	mapper    *ecs.Map3[components.Position, components.Velocity, components.Unit]
	unitMap   *ecs.Map1[components.Unit]
	velMap    *ecs.Map1[components.Velocity]
	activeMap *ecs.Map[components.Active]

	pools []typePool
	ids   *IDSequence
	clock func() float32

	// OnGrow is called after a pool had to create an instance on demand.
	OnGrow func(t components.UnitType, size int)
}

// NewObjectPool creates one pool per prototype and prewarms each with
// PoolSize inactive instances. Prototypes must be indexed by their Type.
func NewObjectPool(w *ecs.World, protos []UnitPrototype, ids *IDSequence, clock func() float32) *ObjectPool {
	if clock == nil {
		clock = func() float32 { return 0 }
	}
	p := &ObjectPool{
		world:     w,
		mapper:    ecs.NewMap3[components.Position, components.Velocity, components.Unit](w),
		unitMap:   ecs.NewMap1[components.Unit](w),
		velMap:    ecs.NewMap1[components.Velocity](w),
		activeMap: ecs.NewMap[components.Active](w),
		pools:     make([]typePool, len(protos)),
		ids:       ids,
		clock:     clock,
	}

	for i, proto := range protos {
		if int(proto.Type) != i {
			panic(fmt.Sprintf("pool: prototype %q has type %d at index %d", proto.Name, proto.Type, i))
		}
		tp := &p.pools[i]
		tp.proto = proto
		tp.instances = make([]ecs.Entity, 0, proto.PoolSize)
		for j := 0; j < proto.PoolSize; j++ {
			tp.instances = append(tp.instances, p.instantiate(proto))
		}
	}
	return p
}

// instantiate creates an inactive instance from a prototype.
func (p *ObjectPool) instantiate(proto UnitPrototype) ecs.Entity {
	pos := components.Position{}
	vel := components.Velocity{}
	unit := components.Unit{
		Type:       proto.Type,
		Behavior:   proto.Behavior,
		Speed:      proto.Speed,
		HalfHeight: proto.HalfHeight,
		Radius:     proto.Radius,
	}
	return p.mapper.NewEntity(&pos, &vel, &unit)
}

func (p *ObjectPool) pool(t components.UnitType) *typePool {
	if int(t) >= len(p.pools) {
		panic(fmt.Sprintf("pool: unregistered unit type %d", t))
	}
	return &p.pools[t]
}

// Acquire returns the first inactive instance of type t, activated. When the
// pool is exhausted a new instance is added; grew reports that case.
func (p *ObjectPool) Acquire(t components.UnitType) (e ecs.Entity, grew bool) {
	tp := p.pool(t)
	for _, inst := range tp.instances {
		if !p.activeMap.Has(inst) {
			p.activate(inst)
			return inst, false
		}
	}
	return p.AddToPool(t), true
}

// AddToPool creates a new instance of type t, appends it to the pool and
// activates it.
func (p *ObjectPool) AddToPool(t components.UnitType) ecs.Entity {
	tp := p.pool(t)
	e := p.instantiate(tp.proto)
	tp.instances = append(tp.instances, e)
	p.activate(e)

	slog.Warn("pool exhausted, growing", "type", tp.proto.Name, "size", len(tp.instances))
	if p.OnGrow != nil {
		p.OnGrow(t, len(tp.instances))
	}
	return e
}

func (p *ObjectPool) activate(e ecs.Entity) {
	p.activeMap.Add(e, &components.Active{Since: p.clock()})
	unit := p.unitMap.Get(e)
	unit.SpawnID = p.ids.Next()
}

// Release returns an instance to its pool. Releasing an inactive instance is
// a no-op and reports false.
func (p *ObjectPool) Release(e ecs.Entity) bool {
	if !p.activeMap.Has(e) {
		return false
	}
	p.activeMap.Remove(e)

	unit := p.unitMap.Get(e)
	unit.HasDest = false
	unit.Dest = components.Vec3{}
	unit.CooldownTimer = 0
	unit.OnCooldown = false
	unit.SpawnSuppressed = false
	unit.SpawnPending = false
	unit.LastContact = components.Vec3{}
	p.velMap.Get(e).Vec3 = components.Vec3{}
	return true
}

// IsActive reports whether e is checked out of its pool.
func (p *ObjectPool) IsActive(e ecs.Entity) bool {
	return p.activeMap.Has(e)
}

// Len returns the number of instances (active or not) of type t.
func (p *ObjectPool) Len(t components.UnitType) int {
	return len(p.pool(t).instances)
}

// ActiveCount returns the number of active instances of type t.
func (p *ObjectPool) ActiveCount(t components.UnitType) int {
	n := 0
	for _, inst := range p.pool(t).instances {
		if p.activeMap.Has(inst) {
			n++
		}
	}
	return n
}

// Types returns the number of pooled unit types.
func (p *ObjectPool) Types() int {
	return len(p.pools)
}
