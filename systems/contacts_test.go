package systems

import (
	"testing"

	"github.com/pthm-cable/replicants/components"
)

func TestContactFeedPhases(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	feed := NewContactFeed(f.world, f.arena, 2)
	a := f.spawn(typeRed, 4, 4)
	b := f.spawn(typeBlue, 4.6, 4)
	far := f.spawn(typeRed, 9, 9)

	contacts := feed.Collect()
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	for _, c := range contacts {
		if c.Phase != ContactEnter {
			t.Errorf("first overlap should be Enter")
		}
		if c.Self == far || c.Other == far {
			t.Error("distant unit reported in contact")
		}
		if p := c.Point; p.X < 4.29 || p.X > 4.31 || p.Z != 4 {
			t.Errorf("point = %+v, want midpoint (4.3, _, 4)", p)
		}
	}
	var sideA Contact
	for _, c := range contacts {
		if c.Self == a {
			sideA = c
		}
	}
	if sideA.Other != b || sideA.SelfID != f.unitMap.Get(a).SpawnID || sideA.OtherID != f.unitMap.Get(b).SpawnID {
		t.Errorf("a's contact = %+v", sideA)
	}
	if sideA.Normal.X > -0.999 {
		t.Errorf("a's normal should point from b to a (-x), got %+v", sideA.Normal)
	}

	contacts = feed.Collect()
	if len(contacts) != 2 || contacts[0].Phase != ContactStay {
		t.Fatalf("persisting overlap should be Stay, got %+v", contacts)
	}

	f.posMap.Get(b).Vec3 = components.Vec3{X: 7, Y: 0.5, Z: 4}
	if contacts = feed.Collect(); len(contacts) != 0 {
		t.Fatalf("separated units still in contact: %+v", contacts)
	}

	f.posMap.Get(b).Vec3 = components.Vec3{X: 4.6, Y: 0.5, Z: 4}
	if contacts = feed.Collect(); len(contacts) != 2 || contacts[0].Phase != ContactEnter {
		t.Fatalf("re-overlap should be Enter, got %+v", contacts)
	}
}

func TestContactFeedSkipsInactive(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	feed := NewContactFeed(f.world, f.arena, 2)
	a := f.spawn(typeRed, 4, 4)
	f.spawn(typeRed, 4.5, 4)

	f.pool.Release(a)
	if contacts := feed.Collect(); len(contacts) != 0 {
		t.Errorf("inactive unit produced contacts: %+v", contacts)
	}
}

func TestContactFeedAcrossCells(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	feed := NewContactFeed(f.world, f.arena, 1)
	f.spawn(typeRed, 0.9, 0.9)
	f.spawn(typeRed, 1.1, 1.1)

	if contacts := feed.Collect(); len(contacts) != 2 {
		t.Errorf("neighbors in adjacent cells missed: %d contacts", len(contacts))
	}
}

func TestContactFeedReset(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	feed := NewContactFeed(f.world, f.arena, 2)
	f.spawn(typeRed, 4, 4)
	f.spawn(typeRed, 4.5, 4)

	feed.Collect()
	feed.Reset()
	if contacts := feed.Collect(); len(contacts) != 2 || contacts[0].Phase != ContactEnter {
		t.Errorf("overlap after reset should be Enter, got %+v", contacts)
	}
}
