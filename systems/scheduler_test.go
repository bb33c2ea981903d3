package systems

import "testing"

func TestSpawnSchedulerOrdering(t *testing.T) {
	s := NewSpawnScheduler()
	s.Schedule(SpawnEvent{FireTime: 3, ParentID: 1})
	s.Schedule(SpawnEvent{FireTime: 1, ParentID: 2})
	s.Schedule(SpawnEvent{FireTime: 2, ParentID: 3})
	s.Schedule(SpawnEvent{FireTime: 1, ParentID: 4})

	if ev, ok := s.Peek(); !ok || ev.ParentID != 2 {
		t.Fatalf("Peek() = %+v, %v", ev, ok)
	}

	due := s.Poll(2)
	got := make([]uint64, len(due))
	for i, ev := range due {
		got[i] = ev.ParentID
	}
	want := []uint64{2, 4, 3}
	if len(got) != len(want) {
		t.Fatalf("Poll(2) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Poll(2) = %v, want %v", got, want)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if due := s.Poll(2.5); len(due) != 0 {
		t.Errorf("nothing should be due at 2.5, got %d", len(due))
	}
	if due := s.Poll(3); len(due) != 1 {
		t.Errorf("expected last event at 3")
	}
	if _, ok := s.Peek(); ok {
		t.Error("scheduler should be empty")
	}
}
