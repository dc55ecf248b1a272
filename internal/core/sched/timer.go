package sched

import "container/heap"

// TimerID identifies a scheduled one-shot event. 0 is never issued, so it
// can be used as the "no event armed" sentinel.
type TimerID uint64

type timerEntry struct {
	id     TimerID
	fireAt int64 // absolute ms
	seq    uint64
	fn     func()
	index  int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAt != h[j].fireAt {
		return h[i].fireAt < h[j].fireAt
	}
	// same deadline: fire in scheduling order
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Timers is a deferred one-shot event queue. Events fire in deadline order
// when Advance is called from the game loop. Single-goroutine access only.
type Timers struct {
	clock   Clock
	heap    timerHeap
	byID    map[TimerID]*timerEntry
	nextID  TimerID
	nextSeq uint64
}

func NewTimers(clock Clock) *Timers {
	return &Timers{
		clock: clock,
		byID:  make(map[TimerID]*timerEntry),
	}
}

// AddEvent schedules fn to run once after delay milliseconds. Delays below
// one tick still take effect on the next Advance, never inline.
func (t *Timers) AddEvent(delay int64, fn func()) TimerID {
	if delay < 0 {
		delay = 0
	}
	t.nextID++
	t.nextSeq++
	e := &timerEntry{
		id:     t.nextID,
		fireAt: t.clock.Now() + delay,
		seq:    t.nextSeq,
		fn:     fn,
	}
	t.byID[e.id] = e
	heap.Push(&t.heap, e)
	return e.id
}

// StopEvent cancels a pending event. Once stopped it will not fire.
// Stopping an unknown or already-fired id is a no-op.
func (t *Timers) StopEvent(id TimerID) {
	e, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	heap.Remove(&t.heap, e.index)
}

// Advance fires every event due at the current clock time, in deadline
// order. Events scheduled while firing are honored within the same call if
// already due.
func (t *Timers) Advance() {
	now := t.clock.Now()
	for len(t.heap) > 0 && t.heap[0].fireAt <= now {
		e := heap.Pop(&t.heap).(*timerEntry)
		delete(t.byID, e.id)
		e.fn()
	}
}

// Pending returns the number of scheduled events.
func (t *Timers) Pending() int { return len(t.heap) }
