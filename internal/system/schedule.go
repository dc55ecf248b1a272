package system

import (
	"time"

	"github.com/wyrmgo/server/internal/core/sched"
	coresys "github.com/wyrmgo/server/internal/core/system"
)

// ScheduleSystem fires due timers and drains the deferred-task queue.
// Phase 1 (Schedule) — timer callbacks and async tasks (deferred deaths,
// mid-step condition swaps) run before the per-creature think pass.
type ScheduleSystem struct {
	sch *sched.Context
}

func NewScheduleSystem(sch *sched.Context) *ScheduleSystem {
	return &ScheduleSystem{sch: sch}
}

func (s *ScheduleSystem) Phase() coresys.Phase { return coresys.PhaseSchedule }

func (s *ScheduleSystem) Update(_ time.Duration) {
	s.sch.Timers.Advance()
	s.sch.Async.Drain()
}
