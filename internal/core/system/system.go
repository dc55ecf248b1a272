package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseDispatch   Phase = iota // 0: deliver last tick's events
	PhaseSchedule                // 1: fire due timers, drain deferred work
	PhaseUpdate                  // 2: creature thinking, conditions, combat
	PhasePostUpdate              // 3: corpse decay, respawn sweeps
	PhaseCleanup                 // 4: remove queued creatures
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
