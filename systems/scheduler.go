package systems

import (
	"container/heap"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// SpawnEvent is a replication scheduled for a future sim time.
type SpawnEvent struct {
	FireTime float32
	Parent   ecs.Entity
	ParentID uint64 // Parent's spawn ID when scheduled; a mismatch means it was released
	Type     components.UnitType
	Point    components.Vec3

	seq uint64
}

// spawnHeap orders events by fire time, then by scheduling order.
type spawnHeap []SpawnEvent

func (h spawnHeap) Len() int { return len(h) }

func (h spawnHeap) Less(i, j int) bool {
	if h[i].FireTime != h[j].FireTime {
		return h[i].FireTime < h[j].FireTime
	}
	return h[i].seq < h[j].seq
}

func (h spawnHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *spawnHeap) Push(x any) { *h = append(*h, x.(SpawnEvent)) }

func (h *spawnHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SpawnScheduler is a time-ordered queue of delayed spawns, polled once per
// fixed tick.
type SpawnScheduler struct {
	events spawnHeap
	seq    uint64
}

// NewSpawnScheduler creates an empty scheduler.
func NewSpawnScheduler() *SpawnScheduler {
	s := &SpawnScheduler{}
	heap.Init(&s.events)
	return s
}

// Schedule queues ev. Events with equal fire times keep scheduling order.
func (s *SpawnScheduler) Schedule(ev SpawnEvent) {
	s.seq++
	ev.seq = s.seq
	heap.Push(&s.events, ev)
}

// Poll removes and returns every event with FireTime <= now, in order.
func (s *SpawnScheduler) Poll(now float32) []SpawnEvent {
	var due []SpawnEvent
	for len(s.events) > 0 && s.events[0].FireTime <= now {
		due = append(due, heap.Pop(&s.events).(SpawnEvent))
	}
	return due
}

// Peek returns the next event without removing it.
func (s *SpawnScheduler) Peek() (SpawnEvent, bool) {
	if len(s.events) == 0 {
		return SpawnEvent{}, false
	}
	return s.events[0], true
}

// Len returns the number of pending events.
func (s *SpawnScheduler) Len() int {
	return len(s.events)
}
