package world

import (
	"github.com/wyrmgo/server/internal/core/sched"
)

// Viewport of a regular observer, in tiles from the center.
const (
	maxViewportX int32 = 11
	maxViewportY int32 = 11
)

// CountBlock is one damage-ledger entry: cumulative damage from a single
// attacker and the time of its last hit. Entries are never evicted; every
// consumer filters by the combat-lock window instead.
type CountBlock struct {
	Total int32
	Ticks int64
}

// Skill is a named proficiency. NPC-kind skill tables are interned once
// per template and shared across instances, so a Skill must stay
// read-only after construction.
type Skill struct {
	Name  string
	Level int32
}

// Creature is the central aggregate: one living entity in the arena.
// Accessed only from the game loop goroutine — no locks needed. All
// cross-creature references are held as ids and re-validated at use.
type Creature struct {
	ID   uint32
	Name string
	Kind Kind

	ws *State

	Pos Position
	Dir Direction

	Health     int32
	HealthMax  int32
	Experience uint64

	baseSpeed int32
	varSpeed  int32

	ArmorValue   int32
	DefenseValue int32

	DamageImmunities      CombatType
	ConditionImmunities   ConditionType
	ConditionSuppressions ConditionType

	Skills map[string]*Skill

	// walk state
	listWalkDir    []Direction // consumed from the back
	lastStep       int64
	lastStepCost   int64
	eventWalk      sched.TimerID
	cancelNextWalk bool

	// follow state
	attackedID            uint32
	followID              uint32
	hasFollowPath         bool
	forceUpdateFollowPath bool
	isUpdatingPath        bool
	walkUpdateTicks       int64

	// perception cache
	cacheLoaded   bool
	localMapCache [cacheHeight][cacheWidth]bool

	// damage accounting
	damageMap         map[uint32]CountBlock
	lastHitCreatureID uint32
	blockCount        int32
	blockTicks        int64

	// ownership graph
	masterID  uint32
	summonIDs []uint32

	conditions []Condition

	removed       bool
	LootDrop      bool
	GhostMode     bool
	SeesInvisible bool

	// exactly one of these is non-nil, matching Kind
	Mon *MonsterState
	Npc *NpcState
	Pl  *PlayerState
}

func newCreature(kind Kind, name string, healthMax, speed int32) *Creature {
	return &Creature{
		Name:         name,
		Kind:         kind,
		Health:       healthMax,
		HealthMax:    healthMax,
		baseSpeed:    speed,
		lastStep:     -1,
		lastStepCost: 1,
		LootDrop:     true,
		Skills:       make(map[string]*Skill),
		damageMap:    make(map[uint32]CountBlock),
	}
}

func (c *Creature) Removed() bool { return c.removed }

// Speed is the current step speed: base plus any condition modifier.
func (c *Creature) Speed() int32     { return c.baseSpeed + c.varSpeed }
func (c *Creature) BaseSpeed() int32 { return c.baseSpeed }

func (c *Creature) SetBaseSpeed(speed int32) { c.baseSpeed = speed }

// ChangeSpeed adjusts the variable speed component (haste, paralysis).
func (c *Creature) ChangeSpeed(delta int32) { c.varSpeed += delta }

func (c *Creature) Armor() int32   { return c.ArmorValue }
func (c *Creature) Defense() int32 { return c.DefenseValue }

func (c *Creature) GiveSkill(name string, level int32) bool {
	if _, ok := c.Skills[name]; ok {
		return false
	}
	c.Skills[name] = &Skill{Name: name, Level: level}
	return true
}

func (c *Creature) Skill(name string) (*Skill, bool) {
	s, ok := c.Skills[name]
	return s, ok
}

// canSee applies the floor visibility rules: from ground level (z <= 7)
// one never sees underground; underground one sees at most 2 floors away.
// The viewport shifts by the floor offset.
func canSee(myPos, pos Position, viewRangeX, viewRangeY int32) bool {
	if myPos.Z <= 7 {
		if pos.Z > 7 {
			return false
		}
	} else {
		if pos.Z < 8 {
			return false
		}
		if myPos.DistanceZ(pos) > 2 {
			return false
		}
	}

	offsetZ := int32(myPos.Z) - int32(pos.Z)
	return pos.X >= myPos.X-viewRangeX+offsetZ && pos.X <= myPos.X+viewRangeX+offsetZ &&
		pos.Y >= myPos.Y-viewRangeY+offsetZ && pos.Y <= myPos.Y+viewRangeY+offsetZ
}

func (c *Creature) CanSee(pos Position) bool {
	if c.Kind == KindNPC {
		// NPCs only perceive their immediate surroundings on their own floor
		return c.Pos.Z == pos.Z && c.Pos.DistanceX(pos) <= npcViewRange && c.Pos.DistanceY(pos) <= npcViewRange
	}
	return canSee(c.Pos, pos, maxViewportX, maxViewportY)
}

// CanSeeCreature additionally applies ghost-mode and invisibility rules.
// Seeing through either requires an explicit capability on the observer.
func (c *Creature) CanSeeCreature(other *Creature) bool {
	if other.GhostMode && !c.canSeeGhosts() {
		return false
	}
	if other.IsInvisible() && !c.canSeeInvisibility() {
		return false
	}
	return true
}

func (c *Creature) canSeeGhosts() bool {
	return c.Pl != nil && c.Pl.SeesGhosts
}

func (c *Creature) canSeeInvisibility() bool {
	return c.SeesInvisible
}

// IsInvisible reports a raw invisibility condition, ignoring suppression.
func (c *Creature) IsInvisible() bool {
	for _, cond := range c.conditions {
		if cond.Type() == ConditionInvisible {
			return true
		}
	}
	return false
}

// onIdleStatus clears combat accounting once a creature has left combat
// with health remaining.
func (c *Creature) onIdleStatus() {
	if c.Health > 0 {
		for k := range c.damageMap {
			delete(c.damageMap, k)
		}
		c.lastHitCreatureID = 0
	}
}

// OnThink is the per-tick entry point. Safe to skip for removed
// creatures; the think system checks removal before calling.
func (c *Creature) OnThink(interval int64) {
	if !c.cacheLoaded && c.useCacheMap() {
		c.cacheLoaded = true
		c.rebuildMapCache()
	}

	if follow := c.FollowCreature(); follow != nil {
		c.walkUpdateTicks += interval
		if c.forceUpdateFollowPath || c.walkUpdateTicks >= c.ws.cfg.Combat.PathRecomputeMs {
			c.walkUpdateTicks = 0
			c.forceUpdateFollowPath = false
			c.isUpdatingPath = true
		}
		if c.Master() != follow && !c.CanSeeCreature(follow) {
			c.onCreatureDisappear(follow, false)
		}
	}

	if attacked := c.AttackedCreature(); attacked != nil {
		if c.Master() != attacked && !c.CanSeeCreature(attacked) {
			c.onCreatureDisappear(attacked, false)
		}
	}

	c.blockTicks += interval
	if c.blockTicks >= c.ws.cfg.Combat.BlockRegenMs {
		if c.blockCount < c.ws.cfg.Combat.BlockChargeCap {
			c.blockCount++
		}
		c.blockTicks = 0
	}

	if c.isUpdatingPath {
		c.isUpdatingPath = false
		c.goToFollowCreature()
	}

	c.kindThink(interval)
	c.ws.script.OnThink(c, interval)
}

// kindThink runs the kind-specific portion of a think pass.
func (c *Creature) kindThink(interval int64) {
	switch c.Kind {
	case KindMonster:
		c.monsterThink(interval)
	case KindNPC:
		c.npcThink(interval)
	}
}

// OnAttacking advances the swing timer and strikes when sight is clear.
func (c *Creature) OnAttacking(interval int64) {
	target := c.AttackedCreature()
	if target == nil {
		return
	}

	c.onAttacked()
	target.onAttacked()

	if c.ws.terrain.LineOfSight(c.Pos, target.Pos) {
		c.doAttacking(target, interval)
	}
}

func (c *Creature) onAttacked() {}
