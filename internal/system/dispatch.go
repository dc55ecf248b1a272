package system

import (
	"time"

	"github.com/wyrmgo/server/internal/core/event"
	coresys "github.com/wyrmgo/server/internal/core/system"
)

// DispatchSystem publishes the previous tick's event buffer to handlers.
// Phase 0 (Dispatch) — runs before any simulation work so every handler
// observes a stable snapshot of last tick's facts.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.Rotate()
	s.bus.DispatchAll()
}
