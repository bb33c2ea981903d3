package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/replicants/components"
)

func TestRandomDestinationInsideArena(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	for i := 0; i < 1000; i++ {
		d := f.motion.RandomDestination(0.5)
		if !f.arena.Contains(d, 0) {
			t.Fatalf("destination %+v outside arena", d)
		}
		if d.Y != 0.5 {
			t.Fatalf("destination height = %v, want 0.5", d.Y)
		}
	}
}

func TestDestinationTowardStaysInsideArena(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		pos := components.Vec3{X: rng.Float32() * 10, Z: rng.Float32() * 10}
		angle := rng.Float64() * 2 * math.Pi
		dir := components.Vec3{X: float32(math.Cos(angle)), Z: float32(math.Sin(angle))}

		dest, ok := f.motion.DestinationToward(pos, dir, 0.5)
		if !ok {
			continue
		}
		if !f.arena.Contains(dest, 1e-4) {
			t.Fatalf("pos %+v dir %+v produced %+v outside arena", pos, dir, dest)
		}
		// Destination lies along dir.
		step := dest.Sub(pos).Flat()
		if step.Normalize().Dot(dir) < 0.999 {
			t.Fatalf("destination %+v not along %+v from %+v", dest, dir, pos)
		}
	}
}

func TestDestinationTowardEdgeCases(t *testing.T) {
	f := newFixture(t, fixtureOptions{rng: &scriptedRand{vals: []float32{0.5}}})

	tests := []struct {
		name   string
		pos    components.Vec3
		dir    components.Vec3
		wantOK bool
		want   components.Vec3
	}{
		{
			name: "zero direction",
			pos:  components.Vec3{X: 5, Z: 5},
		},
		{
			name: "vertical direction flattens to zero",
			pos:  components.Vec3{X: 5, Z: 5},
			dir:  components.Vec3{Y: 1},
		},
		{
			name: "on the edge facing out",
			pos:  components.Vec3{X: 10, Z: 5},
			dir:  components.Vec3{X: 1},
		},
		{
			name:   "axis aligned, midpoint of [1, 4]",
			pos:    components.Vec3{X: 6, Z: 5},
			dir:    components.Vec3{X: 1},
			wantOK: true,
			want:   components.Vec3{X: 8.5, Y: 0.5, Z: 5},
		},
		{
			name:   "bound below one stops at the edge",
			pos:    components.Vec3{X: 5, Z: 9.5},
			dir:    components.Vec3{Z: 1},
			wantOK: true,
			want:   components.Vec3{X: 5, Y: 0.5, Z: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.motion.DestinationToward(tt.pos, tt.dir, 0.5)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.DistanceTo(tt.want) > 1e-4 {
				t.Errorf("dest = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRetargetTowardFallsBackToUnbiased(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	e := f.spawn(typeRed, 10, 5)

	f.motion.RetargetToward(e, components.Vec3{X: 1})

	u := f.unitMap.Get(e)
	if !u.HasDest || !f.arena.Contains(u.Dest, 0) {
		t.Errorf("expected an in-arena fallback destination, got %+v", u.Dest)
	}
}

// ---------- Movement ----------

func TestMovementStaysNearArena(t *testing.T) {
	f := newFixture(t, fixtureOptions{poolSize: 16})
	for i := 0; i < 16; i++ {
		f.spawn(components.UnitType(i%2), float32(i%4)*2+1, float32(i/4)*2+1)
	}

	const dt = 1.0 / 60
	// A unit can overshoot an edge by at most one step before it is retargeted.
	eps := float32(2 * 3 * dt)
	for tick := 0; tick < 5000; tick++ {
		f.movement.Update(dt)

		query := f.movement.filter.Query()
		for query.Next() {
			pos, _, _, _ := query.Get()
			if !f.arena.Contains(pos.Vec3, eps) {
				query.Close()
				t.Fatalf("tick %d: position %+v escaped arena", tick, pos.Vec3)
			}
		}
	}
}

func TestMovementHealsDegenerateUnit(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	e := f.spawn(typeRed, 5, 5)
	f.velMap.Get(e).Vec3 = components.Vec3{}
	f.unitMap.Get(e).HasDest = false

	f.movement.Update(1.0 / 60)

	if f.velMap.Get(e).IsZero() || !f.unitMap.Get(e).HasDest {
		t.Error("degenerate unit was not given a new course")
	}
	if p := f.posMap.Get(e); p.X != 5 || p.Z != 5 {
		t.Error("healing step should not move the unit")
	}
}

func TestMovementRetargetsOnArrival(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	e := f.spawn(typeRed, 5, 5)
	u := f.unitMap.Get(e)
	u.Dest = components.Vec3{X: 5.1, Y: 0.5, Z: 5}
	f.velMap.Get(e).Vec3 = components.Vec3{X: 3}

	f.movement.Update(1.0 / 60)

	if got := f.unitMap.Get(e).Dest; got.X == 5.1 && got.Z == 5 {
		t.Error("arrived unit kept its old destination")
	}
}
