package world

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/config"
	"github.com/wyrmgo/server/internal/core/event"
	"github.com/wyrmgo/server/internal/core/sched"
)

// Creature id ranges by kind, so an id alone reveals what it points at.
const (
	playerIDBase  uint32 = 0x10000000
	monsterIDBase uint32 = 0x40000000
	npcIDBase     uint32 = 0x80000000
)

var (
	ErrTileBlocked  = errors.New("destination tile is blocked")
	ErrTileOccupied = errors.New("destination tile is occupied")
)

// Hooks is the scripting/behavior collaborator. Callbacks may re-enter
// the world's public operations synchronously.
type Hooks interface {
	OnThink(c *Creature, interval int64)
	OnAppear(npc *Creature, other *Creature)
	OnDisappear(npc *Creature, other *Creature)
	OnMove(npc *Creature, other *Creature, fromPos, toPos Position)
	OnSay(npc *Creature, speaker *Creature, text string)
	OnTradeOpen(npc *Creature, player *Creature)
	OnTradeClose(npc *Creature, player *Creature)
}

// NopHooks is the default collaborator when no scripts are loaded.
type NopHooks struct{}

func (NopHooks) OnThink(*Creature, int64)                        {}
func (NopHooks) OnAppear(*Creature, *Creature)                   {}
func (NopHooks) OnDisappear(*Creature, *Creature)                {}
func (NopHooks) OnMove(*Creature, *Creature, Position, Position) {}
func (NopHooks) OnSay(*Creature, *Creature, string)              {}
func (NopHooks) OnTradeOpen(*Creature, *Creature)                {}
func (NopHooks) OnTradeClose(*Creature, *Creature)               {}

// Corpse is a decaying body left on the ground after death.
type Corpse struct {
	Name     string
	Pos      Position
	KillerID uint32
	DecayAt  int64
}

// State is the creature arena: every living entity, its tile occupancy,
// and the collaborators the simulation core consumes.
// Accessed only from the game loop goroutine — no locks needed.
type State struct {
	log     *zap.Logger
	cfg     *config.Config
	sch     *sched.Context
	bus     *event.Bus
	terrain Terrain
	script  Hooks

	creatures map[uint32]*Creature
	byPos     map[Position]uint32

	parties *PartyManager
	corpses []Corpse

	nextPlayerID  uint32
	nextMonsterID uint32
	nextNpcID     uint32
}

func NewState(log *zap.Logger, cfg *config.Config, sch *sched.Context, bus *event.Bus, terrain Terrain) *State {
	return &State{
		log:           log,
		cfg:           cfg,
		sch:           sch,
		bus:           bus,
		terrain:       terrain,
		script:        NopHooks{},
		creatures:     make(map[uint32]*Creature),
		byPos:         make(map[Position]uint32),
		parties:       NewPartyManager(),
		nextPlayerID:  playerIDBase,
		nextMonsterID: monsterIDBase,
		nextNpcID:     npcIDBase,
	}
}

// SetHooks installs the scripting collaborator after construction, since
// the script engine needs the state to exist first.
func (s *State) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	s.script = h
}

func (s *State) Parties() *PartyManager { return s.parties }
func (s *State) Terrain() Terrain       { return s.terrain }
func (s *State) Clock() sched.Clock     { return s.sch.Clock }

// CreatureByID resolves a weak id reference; nil when absent or removed.
func (s *State) CreatureByID(id uint32) *Creature {
	c := s.creatures[id]
	if c == nil || c.removed {
		return nil
	}
	return c
}

// EachCreature visits every live creature. The visit order is map order;
// callers needing determinism collect and sort ids.
func (s *State) EachCreature(fn func(*Creature)) {
	for _, c := range s.creatures {
		if !c.removed {
			fn(c)
		}
	}
}

func (s *State) CreatureCount() int { return len(s.creatures) }

// Think runs one simulation pass over every creature in ascending id
// order, so a tick's outcome never depends on map iteration order.
// interval is the elapsed game time in milliseconds.
func (s *State) Think(interval int64) {
	ids := make([]uint32, 0, len(s.creatures))
	for id := range s.creatures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		c := s.CreatureByID(id)
		if c == nil {
			continue
		}
		c.OnThink(interval)
		c.ExecuteConditions(interval)
		c.OnAttacking(interval)
	}
}

// walkableFor layers creature occupancy over raw terrain walkability.
func (s *State) walkableFor(c *Creature, pos Position) bool {
	if !s.terrain.Walkable(c, pos) {
		return false
	}
	if id, ok := s.byPos[pos]; ok && id != c.ID {
		return false
	}
	return true
}

// MonsterTemplate is the data-driven definition a monster spawns from.
// The Skills map is interned per template and shared across instances.
type MonsterTemplate struct {
	Name                  string
	Health                int32
	Speed                 int32
	Armor                 int32
	Defense               int32
	AttackMin             int32
	AttackMax             int32
	AttackIntervalMs      int64
	TargetDistance        int32
	RunAwayHealth         int32
	Experience            uint64
	LootDrop              bool
	Skills                map[string]*Skill
	DamageImmunities      CombatType
	ConditionImmunities   ConditionType
	ConditionSuppressions ConditionType
}

// NpcTemplate is the data-driven definition an NPC spawns from.
type NpcTemplate struct {
	Name       string
	Health     int32
	Speed      int32
	Script     string
	WalkTicks  int64
	HomeRadius int32
	Skills     map[string]*Skill
}

// SpawnMonster places a monster from its template. A non-nil master
// binds the ownership relation immediately.
func (s *State) SpawnMonster(tpl *MonsterTemplate, pos Position, master *Creature) (*Creature, error) {
	c := newCreature(KindMonster, tpl.Name, tpl.Health, tpl.Speed)
	c.ID = s.nextMonsterID
	s.nextMonsterID++
	c.ArmorValue = tpl.Armor
	c.DefenseValue = tpl.Defense
	c.DamageImmunities = tpl.DamageImmunities
	c.ConditionImmunities = tpl.ConditionImmunities
	c.ConditionSuppressions = tpl.ConditionSuppressions
	c.LootDrop = tpl.LootDrop
	if tpl.Skills != nil {
		c.Skills = tpl.Skills
	}
	c.Mon = &MonsterState{
		TemplateName:   tpl.Name,
		TargetDistance: max32(1, tpl.TargetDistance),
		RunAwayHealth:  tpl.RunAwayHealth,
		AttackMin:      tpl.AttackMin,
		AttackMax:      tpl.AttackMax,
		AttackInterval: tpl.AttackIntervalMs,
		Experience:     tpl.Experience,
		SpawnPos:       pos,
	}

	if err := s.placeCreature(c, pos); err != nil {
		return nil, err
	}
	if master != nil {
		c.SetMaster(master)
		c.LootDrop = false
	}
	return c, nil
}

// SpawnNpc places an NPC from its template, anchored at pos.
func (s *State) SpawnNpc(tpl *NpcTemplate, pos Position) (*Creature, error) {
	c := newCreature(KindNPC, tpl.Name, tpl.Health, tpl.Speed)
	c.ID = s.nextNpcID
	s.nextNpcID++
	if tpl.Skills != nil {
		c.Skills = tpl.Skills
	}
	c.Npc = newNpcState(tpl.Script, tpl.WalkTicks, tpl.HomeRadius)
	c.Npc.HomePos = pos

	if err := s.placeCreature(c, pos); err != nil {
		return nil, err
	}
	return c, nil
}

// SpawnPlayer places a player avatar.
func (s *State) SpawnPlayer(name string, pos Position, health, speed int32) (*Creature, error) {
	c := newCreature(KindPlayer, name, health, speed)
	c.ID = s.nextPlayerID
	s.nextPlayerID++
	c.Pl = newPlayerState()

	if err := s.placeCreature(c, pos); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *State) placeCreature(c *Creature, pos Position) error {
	if !s.terrain.Walkable(c, pos) {
		return ErrTileBlocked
	}
	if id, ok := s.byPos[pos]; ok && id != c.ID {
		return ErrTileOccupied
	}

	c.ws = s
	c.Pos = pos
	s.creatures[c.ID] = c
	s.byPos[pos] = c.ID

	if c.useCacheMap() {
		c.cacheLoaded = true
		c.rebuildMapCache()
	}

	for _, other := range s.creatures {
		if other == c || other.removed {
			continue
		}
		if other.cacheLoaded && other.Pos.Z == pos.Z {
			other.updateTileCache(pos)
		}
		if other.Npc != nil {
			other.npcCreatureAppear(c)
		}
	}

	s.log.Debug("creature placed",
		zap.Uint32("id", c.ID),
		zap.String("name", c.Name),
		zap.String("kind", c.Kind.String()),
		zap.String("pos", pos.String()))
	return nil
}

// RemoveCreature takes a creature out of the arena: summon ties severed,
// conditions released, pending walk timers stopped. Idempotent.
func (s *State) RemoveCreature(c *Creature) {
	if c.removed {
		return
	}
	c.removed = true

	c.stopEventWalk()
	c.severSummons()
	if c.masterID != 0 {
		c.SetMaster(nil)
	}
	c.releaseConditions()

	if id, ok := s.byPos[c.Pos]; ok && id == c.ID {
		delete(s.byPos, c.Pos)
	}
	delete(s.creatures, c.ID)

	for _, other := range s.creatures {
		if other.removed {
			continue
		}
		other.onCreatureDisappear(c, true)
		if other.cacheLoaded && other.Pos.Z == c.Pos.Z {
			other.updateTileCache(c.Pos)
		}
		if other.Npc != nil {
			other.npcCreatureDisappear(c)
		}
	}

	event.Emit(s.bus, event.CreatureRemoved{ID: c.ID})
	s.log.Debug("creature removed", zap.Uint32("id", c.ID), zap.String("name", c.Name))
}

// MoveCreature executes one step in dir, with all observer side effects.
func (s *State) MoveCreature(c *Creature, dir Direction) error {
	dest := c.Pos.Step(dir)
	if !s.terrain.Walkable(c, dest) {
		return ErrTileBlocked
	}
	if id, ok := s.byPos[dest]; ok && id != c.ID {
		return ErrTileOccupied
	}

	oldPos := c.Pos
	delete(s.byPos, oldPos)
	c.Pos = dest
	c.Dir = dir
	s.byPos[dest] = c.ID

	c.onMoved(oldPos, false)
	s.fanOutMove(c, oldPos, false)
	return nil
}

// TeleportCreature relocates without walking; the perception cache is
// rebuilt rather than shifted.
func (s *State) TeleportCreature(c *Creature, dest Position) error {
	if !s.walkableFor(c, dest) {
		return ErrTileBlocked
	}

	oldPos := c.Pos
	delete(s.byPos, oldPos)
	c.Pos = dest
	s.byPos[dest] = c.ID

	c.onMoved(oldPos, true)
	s.fanOutMove(c, oldPos, true)
	return nil
}

func (s *State) fanOutMove(mover *Creature, oldPos Position, teleport bool) {
	for _, observer := range s.creatures {
		if observer.removed {
			continue
		}
		observer.observeMove(mover, oldPos, teleport)
	}
}

// observeMove is each creature's reaction to any move, including its own:
// cache cell upkeep, follow re-planning, and target visibility checks.
func (c *Creature) observeMove(mover *Creature, oldPos Position, teleport bool) {
	_ = teleport

	if c != mover && c.cacheLoaded {
		if mover.Pos.Z == c.Pos.Z {
			c.updateTileCache(mover.Pos)
		}
		if oldPos.Z == c.Pos.Z {
			c.updateTileCache(oldPos)
		}
	}

	if follow := c.FollowCreature(); follow != nil && (mover == follow || mover == c) {
		if c.hasFollowPath {
			if mover == follow && len(c.listWalkDir) == 0 {
				c.isUpdatingPath = false
				c.goToFollowCreature()
			} else {
				c.isUpdatingPath = true
			}
		}

		if mover.Pos.Z != oldPos.Z || !c.CanSee(follow.Pos) {
			c.onCreatureDisappear(follow, false)
		}
	}

	if attacked := c.AttackedCreature(); attacked != nil && (mover == attacked || mover == c) {
		if mover.Pos.Z != oldPos.Z || !c.CanSee(attacked.Pos) {
			c.onCreatureDisappear(attacked, false)
		} else if mover == attacked && c.ws.terrain.ProtectionZone(attacked.Pos) {
			c.onCreatureDisappear(attacked, false)
		}
	}

	if c.Npc != nil && mover != c {
		c.npcCreatureMove(mover, oldPos, mover.Pos)
	}
}

// CreatureSay broadcasts speech to NPCs in earshot; their scripts may
// respond synchronously.
func (s *State) CreatureSay(speaker *Creature, text string) {
	s.log.Debug("say", zap.Uint32("id", speaker.ID), zap.String("text", text))
	for _, other := range s.creatures {
		if other == speaker || other.removed || other.Npc == nil {
			continue
		}
		if other.CanSee(speaker.Pos) {
			s.script.OnSay(other, speaker, text)
		}
	}
}

// checkCreatureWalk is the walk-timer continuation.
func (s *State) checkCreatureWalk(id uint32) {
	c := s.CreatureByID(id)
	if c != nil && c.Health > 0 {
		c.OnWalk()
	}
}

// executeDeath runs deferred death resolution, exactly once per death:
// a second queued task finds the creature already removed.
func (s *State) executeDeath(id uint32) {
	c := s.CreatureByID(id)
	if c != nil && c.Health <= 0 {
		c.onDeath()
	}
}

func (s *State) forceAddCondition(id uint32, condition Condition) {
	if c := s.CreatureByID(id); c != nil {
		c.ForceAddCondition(condition)
	}
}

func (s *State) forceRemoveCondition(id uint32, t ConditionType) {
	if c := s.CreatureByID(id); c != nil {
		c.ForceRemoveCondition(t)
	}
}

// OnTileChanged is the tile-mutation notification from the terrain
// collaborator; every cached creature refreshes the one affected cell.
func (s *State) OnTileChanged(pos Position) {
	for _, c := range s.creatures {
		if !c.removed {
			c.OnTileChanged(pos)
		}
	}
}

// announceDeath publishes kill attribution for next-tick consumers.
func (s *State) announceDeath(victim *Creature, corpse bool, lastHitID, mostDamageID uint32, lastHitUnjustified, mostDamageUnjustified bool) {
	event.Emit(s.bus, event.CreatureKilled{
		VictimID:     victim.ID,
		KillerID:     lastHitID,
		MostDamageID: mostDamageID,
		X:            victim.Pos.X,
		Y:            victim.Pos.Y,
		Z:            victim.Pos.Z,
		Unjustified:  lastHitUnjustified || mostDamageUnjustified,
	})
}

// addCorpse leaves a decaying body on the victim's tile.
func (s *State) addCorpse(victim *Creature, lastHit *Creature) {
	var killerID uint32
	if lastHit != nil {
		killerID = lastHit.ID
	}
	s.corpses = append(s.corpses, Corpse{
		Name:     victim.Name,
		Pos:      victim.Pos,
		KillerID: killerID,
		DecayAt:  s.sch.Clock.Now() + s.cfg.World.CorpseDecayMs,
	})
}

// Corpses returns the live corpse list.
func (s *State) Corpses() []Corpse { return s.corpses }

// ExpireCorpses drops every corpse past its decay time and returns how
// many went.
func (s *State) ExpireCorpses(now int64) int {
	kept := s.corpses[:0]
	expired := 0
	for _, corpse := range s.corpses {
		if corpse.DecayAt > now {
			kept = append(kept, corpse)
		} else {
			expired++
		}
	}
	s.corpses = kept
	return expired
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
