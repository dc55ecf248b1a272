package world

import "math"

const (
	defaultGroundFriction int32 = 150

	// step durations round up to the server beat
	stepGranularityMs int64 = 50
)

// TimeSinceLastStep returns elapsed ms since the last real move, or a huge
// value if the creature has never stepped. lastStep stays at -1 until the
// first move so a step taken at clock time 0 still counts.
func (c *Creature) TimeSinceLastStep() int64 {
	if c.lastStep >= 0 {
		return c.ws.sch.Clock.Now() - c.lastStep
	}
	return math.MaxInt64
}

// WalkDelay is the time remaining before the current step completes.
func (c *Creature) WalkDelay() int64 {
	if c.lastStep < 0 {
		return 0
	}
	ct := c.ws.sch.Clock.Now()
	stepDuration := c.StepDuration() * c.lastStepCost
	return stepDuration - (ct - c.lastStep)
}

// StepDuration computes the ms cost of one cardinal step from the
// logarithmic speed curve and the ground friction under the creature.
func (c *Creature) StepDuration() int64 {
	if c.removed {
		return 0
	}

	speedA := c.ws.cfg.Speed.A
	speedB := c.ws.cfg.Speed.B
	speedC := c.ws.cfg.Speed.C

	var calculatedStepSpeed int64
	stepSpeed := c.Speed()
	if float64(stepSpeed) > -speedB {
		calculatedStepSpeed = int64(math.Floor(speedA*math.Log(float64(stepSpeed)/2+speedB) + speedC + 0.5))
		if calculatedStepSpeed < 1 {
			calculatedStepSpeed = 1
		}
	} else {
		calculatedStepSpeed = 1
	}

	groundSpeed := c.ws.terrain.GroundFriction(c.Pos)
	if groundSpeed <= 0 {
		groundSpeed = defaultGroundFriction
	}

	duration := math.Floor(1000 * float64(groundSpeed) / float64(calculatedStepSpeed))
	stepDuration := int64(math.Ceil(duration/float64(stepGranularityMs))) * stepGranularityMs

	// engaged monsters advance at half pace unless fleeing or commanded
	if c.Mon != nil && c.Mon.TargetNearby() && !c.IsFleeing() && c.Master() == nil {
		stepDuration *= 2
	}

	return stepDuration
}

// StepDurationDir applies the diagonal surcharge.
func (c *Creature) StepDurationDir(dir Direction) int64 {
	stepDuration := c.StepDuration()
	if dir.Diagonal() {
		stepDuration *= 3
	}
	return stepDuration
}

// eventStepTicks yields the delay to arm the next walk timer with. A
// first step of a fresh walk is taken almost immediately (delay 1).
func (c *Creature) eventStepTicks(onlyDelay bool) int64 {
	ret := c.WalkDelay()
	if ret <= 0 {
		stepDuration := c.StepDuration()
		if onlyDelay && stepDuration > 0 {
			ret = 1
		} else {
			ret = stepDuration * c.lastStepCost
		}
	}
	return ret
}

// OnWalk executes one armed walk step: pop a direction, submit the move,
// and re-arm the timer for the following step.
func (c *Creature) OnWalk() {
	if c.WalkDelay() <= 0 {
		if dir, ok := c.getNextStep(); ok {
			if err := c.ws.MoveCreature(c, dir); err != nil {
				c.listWalkDir = c.listWalkDir[:0]
				c.onWalkAborted()
				c.forceUpdateFollowPath = true
			}
		} else {
			c.stopEventWalk()
			if len(c.listWalkDir) == 0 {
				c.onWalkComplete()
			}
		}
	}

	if c.cancelNextWalk {
		c.listWalkDir = c.listWalkDir[:0]
		c.onWalkAborted()
		c.cancelNextWalk = false
	}

	if c.eventWalk != 0 {
		c.eventWalk = 0
		c.addEventWalk(false)
	}
}

// getNextStep pops the next queued direction and applies the stagger hook.
func (c *Creature) getNextStep() (Direction, bool) {
	n := len(c.listWalkDir)
	if n == 0 {
		return DirectionNone, false
	}
	dir := c.listWalkDir[n-1]
	c.listWalkDir = c.listWalkDir[:n-1]
	return c.staggerStep(dir), true
}

// staggerStep randomizes the heading of a drunk creature.
func (c *Creature) staggerStep(dir Direction) Direction {
	if !c.HasCondition(ConditionDrunk, 0) {
		return dir
	}

	r := uniformRandom(0, 399)
	if r/4 > c.drunkenness() {
		return dir
	}

	c.ws.CreatureSay(c, "Hicks!")
	return Direction(r % 4)
}

func (c *Creature) drunkenness() int32 {
	for _, cond := range c.conditions {
		if d, ok := cond.(*DrunkCondition); ok {
			return d.Drunkenness
		}
	}
	return 0
}

// StartAutoWalk queues a direction list and arms the walk timer.
func (c *Creature) StartAutoWalk(dirs ...Direction) {
	// directions are stored reversed so steps pop off the back
	c.listWalkDir = c.listWalkDir[:0]
	for i := len(dirs) - 1; i >= 0; i-- {
		c.listWalkDir = append(c.listWalkDir, dirs[i])
	}
	c.addEventWalk(len(c.listWalkDir) == 1)
}

// startCurrentWalk re-arms the timer for an already populated queue.
func (c *Creature) startCurrentWalk() {
	c.addEventWalk(len(c.listWalkDir) == 1)
}

func (c *Creature) addEventWalk(firstStep bool) {
	c.cancelNextWalk = false

	if c.Speed() <= 0 {
		return
	}

	if c.eventWalk != 0 {
		return
	}

	ticks := c.eventStepTicks(firstStep)
	if ticks <= 0 {
		return
	}

	id := c.ID
	c.eventWalk = c.ws.sch.Timers.AddEvent(ticks, func() {
		c.ws.checkCreatureWalk(id)
	})
}

func (c *Creature) stopEventWalk() {
	if c.eventWalk != 0 {
		c.ws.sch.Timers.StopEvent(c.eventWalk)
		c.eventWalk = 0
	}
}

// CancelNextWalk flags the queue for clearing on the next walk check
// instead of waiting out the armed timer.
func (c *Creature) CancelNextWalk() {
	c.cancelNextWalk = true
}

func (c *Creature) onWalkAborted()  {}
func (c *Creature) onWalkComplete() {}

// onMoved records step bookkeeping after a real position change and runs
// the cache and ownership side effects.
func (c *Creature) onMoved(oldPos Position, teleport bool) {
	c.lastStep = c.ws.sch.Clock.Now()
	c.lastStepCost = 1

	if !teleport {
		if oldPos.Z != c.Pos.Z {
			// floor change extra cost
			c.lastStepCost = 2
		} else if c.Pos.DistanceX(oldPos) >= 1 && c.Pos.DistanceY(oldPos) >= 1 {
			// diagonal extra cost
			c.lastStepCost = 3
		}
	} else {
		c.stopEventWalk()
	}

	c.despawnStraySummons()
	c.onSteppedInField()

	if oldProt, newProt := c.ws.terrain.ProtectionZone(oldPos), c.ws.terrain.ProtectionZone(c.Pos); oldProt != newProt {
		c.onChangeZone(newProt)
	}

	if c.cacheLoaded {
		if teleport || oldPos.Z != c.Pos.Z {
			c.rebuildMapCache()
		} else {
			c.shiftMapCache(oldPos)
		}
	}
}

// despawnStraySummons removes any summon that drifted more than 2 floors
// or 30 tiles away from its master.
func (c *Creature) despawnStraySummons() {
	if len(c.summonIDs) == 0 {
		return
	}

	var despawn []*Creature
	for _, summon := range c.Summons() {
		pos := summon.Pos
		dist := c.Pos.DistanceX(pos)
		if dy := c.Pos.DistanceY(pos); dy > dist {
			dist = dy
		}
		if c.Pos.DistanceZ(pos) > int32(c.ws.cfg.World.DespawnRange) || dist > c.ws.cfg.World.DespawnRadius {
			despawn = append(despawn, summon)
		}
	}

	for _, summon := range despawn {
		c.ws.RemoveCreature(summon)
	}
}

// onChangeZone drops the attack target when entering a protection zone.
func (c *Creature) onChangeZone(protection bool) {
	if protection {
		if target := c.AttackedCreature(); target != nil {
			c.onCreatureDisappear(target, false)
		}
	}
}
