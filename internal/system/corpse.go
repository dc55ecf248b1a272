package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/core/event"
	coresys "github.com/wyrmgo/server/internal/core/system"
	"github.com/wyrmgo/server/internal/world"
)

// CorpseSystem expires decayed corpses and records kill attribution from
// last tick's death events.
// Phase 3 (PostUpdate) — corpses dropped this tick get their full decay
// window before the first expiry check.
type CorpseSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCorpseSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *CorpseSystem {
	s := &CorpseSystem{world: ws, log: log}
	event.Subscribe(bus, s.onCreatureKilled)
	return s
}

func (s *CorpseSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CorpseSystem) Update(_ time.Duration) {
	expired := s.world.ExpireCorpses(s.world.Clock().Now())
	if expired > 0 {
		s.log.Debug("corpses decayed", zap.Int("count", expired))
	}
}

func (s *CorpseSystem) onCreatureKilled(ev event.CreatureKilled) {
	s.log.Info("creature killed",
		zap.Uint32("victim", ev.VictimID),
		zap.Uint32("killer", ev.KillerID),
		zap.Uint32("most_damage", ev.MostDamageID),
		zap.Bool("unjustified", ev.Unjustified))
}
