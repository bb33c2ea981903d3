package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

type pairKey struct{ lo, hi uint64 }

func newPairKey(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type feedEntry struct {
	e      ecs.Entity
	pos    components.Vec3
	id     uint64
	radius float32
}

// ContactFeed is a headless stand-in for a physics engine's contact
// callbacks. Each call to Collect finds overlapping active units with a
// spatial grid and a planar circle test, and reports both sides of every
// pair. Pairs that also overlapped on the previous call are reported as Stay.
type ContactFeed struct {
	filter *ecs.Filter3[components.Position, components.Unit, components.Active]
	grid   *SpatialGrid

	entries   []feedEntry
	index     map[ecs.Entity]int
	cands     []ecs.Entity
	maxRadius float32

	prev, cur map[pairKey]struct{}
	contacts  []Contact
}

// NewContactFeed creates a contact feed over arena.
func NewContactFeed(w *ecs.World, arena Arena, cellSize float32) *ContactFeed {
	return &ContactFeed{
		filter: ecs.NewFilter3[components.Position, components.Unit, components.Active](w),
		grid:   NewSpatialGrid(arena, cellSize),
		index:  make(map[ecs.Entity]int),
		prev:   make(map[pairKey]struct{}),
		cur:    make(map[pairKey]struct{}),
	}
}

// Collect returns this tick's contacts. The slice is reused by the next call.
func (f *ContactFeed) Collect() []Contact {
	f.grid.Clear()
	f.entries = f.entries[:0]
	f.contacts = f.contacts[:0]
	clear(f.index)
	f.maxRadius = 0

	query := f.filter.Query()
	for query.Next() {
		pos, unit, _ := query.Get()
		e := query.Entity()
		f.index[e] = len(f.entries)
		f.entries = append(f.entries, feedEntry{e: e, pos: pos.Vec3, id: unit.SpawnID, radius: unit.Radius})
		f.grid.Insert(e, pos.X, pos.Z)
		if unit.Radius > f.maxRadius {
			f.maxRadius = unit.Radius
		}
	}

	for i := range f.entries {
		a := &f.entries[i]
		f.cands = f.grid.QueryInto(f.cands[:0], a.pos.X, a.pos.Z, a.radius+f.maxRadius)
		for _, cand := range f.cands {
			j := f.index[cand]
			if j <= i {
				continue
			}
			b := &f.entries[j]
			d := a.pos.Sub(b.pos).Flat()
			reach := a.radius + b.radius
			if d.Dot(d) >= reach*reach {
				continue
			}
			f.emit(a, b, d)
		}
	}

	f.prev, f.cur = f.cur, f.prev
	clear(f.cur)
	return f.contacts
}

// emit records the pair (a, b). d is the planar offset from b to a.
func (f *ContactFeed) emit(a, b *feedEntry, d components.Vec3) {
	key := newPairKey(a.id, b.id)
	phase := ContactEnter
	if _, ok := f.prev[key]; ok {
		phase = ContactStay
	}
	f.cur[key] = struct{}{}

	normal := d.Normalize()
	if normal.IsZero() {
		normal = components.Vec3{X: 1}
	}
	point := a.pos.Add(b.pos).Scale(0.5)

	f.contacts = append(f.contacts,
		Contact{Self: a.e, Other: b.e, SelfID: a.id, OtherID: b.id, Point: point, Normal: normal, Phase: phase},
		Contact{Self: b.e, Other: a.e, SelfID: b.id, OtherID: a.id, Point: point, Normal: normal.Scale(-1), Phase: phase},
	)
}

// Reset forgets pair history so every overlap is reported as a fresh contact.
func (f *ContactFeed) Reset() {
	clear(f.prev)
	clear(f.cur)
}
