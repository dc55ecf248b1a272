package system

import (
	"time"

	coresys "github.com/wyrmgo/server/internal/core/system"
	"github.com/wyrmgo/server/internal/world"
)

// ThinkSystem advances every creature by one simulation interval:
// target/path upkeep, condition ticks, and attack swings.
// Phase 2 (Update) — the main simulation pass.
type ThinkSystem struct {
	world *world.State
}

func NewThinkSystem(ws *world.State) *ThinkSystem {
	return &ThinkSystem{world: ws}
}

func (s *ThinkSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ThinkSystem) Update(dt time.Duration) {
	s.world.Think(dt.Milliseconds())
}
