package sched

// Async queues work that must not run inside the current call stack, such
// as death resolution triggered mid-combat. Tasks run in submission order
// when the game loop drains the queue at a safe point.
type Async struct {
	tasks []func()
}

func NewAsync() *Async {
	return &Async{}
}

// Add enqueues fn for the next drain.
func (a *Async) Add(fn func()) {
	a.tasks = append(a.tasks, fn)
}

// Drain runs all queued tasks in submission order. Tasks queued while
// draining run within the same call.
func (a *Async) Drain() {
	for i := 0; i < len(a.tasks); i++ {
		a.tasks[i]()
	}
	a.tasks = a.tasks[:0]
}

// Len returns the number of queued tasks.
func (a *Async) Len() int { return len(a.tasks) }

// Context bundles the scheduling primitives the simulation depends on.
// The game loop owns one; tests build their own around a ManualClock.
type Context struct {
	Clock  Clock
	Timers *Timers
	Async  *Async
}

func NewContext(clock Clock) *Context {
	return &Context{
		Clock:  clock,
		Timers: NewTimers(clock),
		Async:  NewAsync(),
	}
}
