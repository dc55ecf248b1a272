package world

// NPCs only perceive a small box around themselves, on their own floor.
const npcViewRange int32 = 3

// NpcState is the NPC-kind extension of a creature: idle wandering inside
// a home radius, a focused conversation partner, and open trade windows.
type NpcState struct {
	ScriptName string

	// HomePos anchors wandering; HomeRadius 0 pins the NPC in place,
	// -1 removes the bound.
	HomePos    Position
	HomeRadius int32

	// WalkTicks is the idle-step interval in ms; 0 disables wandering.
	WalkTicks int64

	focusID uint32

	// spectators are the players currently inside perception range; the
	// NPC idles (skips wandering and script thinks) when empty.
	spectators map[uint32]struct{}
	idle       bool

	// shopPlayers are open trade windows, by player id.
	shopPlayers map[uint32]struct{}
}

func newNpcState(scriptName string, walkTicks int64, homeRadius int32) *NpcState {
	return &NpcState{
		ScriptName:  scriptName,
		WalkTicks:   walkTicks,
		HomeRadius:  homeRadius,
		spectators:  make(map[uint32]struct{}),
		shopPlayers: make(map[uint32]struct{}),
	}
}

// npcThink wanders when spectators are around and the idle-step interval
// elapsed since the last move.
func (c *Creature) npcThink(int64) {
	n := c.Npc

	if n.idle || n.WalkTicks == 0 || n.focusID != 0 {
		return
	}

	if c.TimeSinceLastStep() < n.WalkTicks {
		return
	}

	if len(c.listWalkDir) == 0 {
		if dir, ok := c.randomStep(); ok {
			c.StartAutoWalk(dir)
		}
	}
}

// randomStep picks a walkable direction that stays inside the home
// radius.
func (c *Creature) randomStep() (Direction, bool) {
	dirs := []Direction{North, East, South, West}
	for i := len(dirs) - 1; i > 0; i-- {
		j := uniformRandom(0, int32(i))
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}

	for _, dir := range dirs {
		if c.canWanderTo(dir) {
			return dir, true
		}
	}
	return DirectionNone, false
}

func (c *Creature) canWanderTo(dir Direction) bool {
	n := c.Npc
	if n.HomeRadius == 0 {
		return false
	}

	toPos := c.Pos.Step(dir)
	if n.HomeRadius > 0 {
		if toPos.DistanceX(n.HomePos) > n.HomeRadius || toPos.DistanceY(n.HomePos) > n.HomeRadius {
			return false
		}
	}

	return c.ws.terrain.Walkable(c, toPos)
}

// npcCreatureAppear tracks players entering perception range and fires
// the script callback.
func (c *Creature) npcCreatureAppear(other *Creature) {
	if other.Pl == nil || !c.CanSee(other.Pos) {
		return
	}
	c.Npc.spectators[other.ID] = struct{}{}
	c.npcSetIdle(false)
	c.ws.script.OnAppear(c, other)
}

func (c *Creature) npcCreatureDisappear(other *Creature) {
	if c.Npc.focusID == other.ID {
		c.SetCreatureFocus(nil)
	}
	delete(c.Npc.shopPlayers, other.ID)
	if _, ok := c.Npc.spectators[other.ID]; !ok {
		return
	}
	delete(c.Npc.spectators, other.ID)
	c.npcSetIdle(len(c.Npc.spectators) == 0)
	c.ws.script.OnDisappear(c, other)
}

// npcCreatureMove keeps the spectator set in sync as players walk in and
// out of range.
func (c *Creature) npcCreatureMove(other *Creature, fromPos, toPos Position) {
	if other.Pl == nil {
		return
	}
	if c.CanSee(toPos) {
		c.Npc.spectators[other.ID] = struct{}{}
	} else {
		delete(c.Npc.spectators, other.ID)
		if c.Npc.focusID == other.ID {
			c.SetCreatureFocus(nil)
		}
	}
	c.npcSetIdle(len(c.Npc.spectators) == 0)
	c.ws.script.OnMove(c, other, fromPos, toPos)
}

func (c *Creature) npcSetIdle(idle bool) {
	if idle == c.Npc.idle {
		return
	}
	if c.removed || c.Health <= 0 {
		return
	}
	c.Npc.idle = idle
	if idle {
		c.onIdleStatus()
	}
}

// SetCreatureFocus turns the NPC toward a conversation partner and keeps
// it from wandering off mid-dialogue.
func (c *Creature) SetCreatureFocus(other *Creature) {
	if c.Npc == nil {
		return
	}
	if other != nil {
		c.Npc.focusID = other.ID
		c.TurnToCreature(other)
	} else {
		c.Npc.focusID = 0
	}
}

// TurnToCreature faces the dominant axis toward the other creature.
func (c *Creature) TurnToCreature(other *Creature) {
	dx := c.Pos.OffsetX(other.Pos)
	dy := c.Pos.OffsetY(other.Pos)

	var dir Direction
	if abs32(dx) >= abs32(dy) && dx != 0 {
		if dx > 0 {
			dir = West
		} else {
			dir = East
		}
	} else {
		if dy > 0 {
			dir = North
		} else {
			dir = South
		}
	}
	c.Dir = dir
}

// MoveTo sends the NPC walking toward pos; used by script callbacks.
func (c *Creature) MoveTo(pos Position, minTargetDist, maxTargetDist int32) bool {
	fpp := FindPathParams{
		FullPathSearch: true,
		ClearSight:     true,
		MinTargetDist:  minTargetDist,
		MaxTargetDist:  maxTargetDist,
	}
	dirs, ok := c.PathTo(pos, fpp)
	if !ok {
		return false
	}
	c.StartAutoWalk(dirs...)
	return true
}

// OpenTrade registers a trade window with a player and fires the script
// callback.
func (c *Creature) OpenTrade(player *Creature) {
	if c.Npc == nil || player.Pl == nil {
		return
	}
	c.Npc.shopPlayers[player.ID] = struct{}{}
	c.ws.script.OnTradeOpen(c, player)
}

// CloseTrade unregisters a trade window. Closing an absent window is a
// no-op.
func (c *Creature) CloseTrade(player *Creature) {
	if c.Npc == nil {
		return
	}
	if _, ok := c.Npc.shopPlayers[player.ID]; !ok {
		return
	}
	delete(c.Npc.shopPlayers, player.ID)
	c.ws.script.OnTradeClose(c, player)
}

// TradePartners returns the ids of players with an open trade window.
func (c *Creature) TradePartners() []uint32 {
	out := make([]uint32, 0, len(c.Npc.shopPlayers))
	for id := range c.Npc.shopPlayers {
		out = append(out, id)
	}
	return out
}
