package world

// AttackedCreature resolves the weak attack-target reference, or nil when
// unset or the referent has been removed.
func (c *Creature) AttackedCreature() *Creature {
	if c.attackedID == 0 {
		return nil
	}
	return c.ws.CreatureByID(c.attackedID)
}

// FollowCreature resolves the weak follow-target reference.
func (c *Creature) FollowCreature() *Creature {
	if c.followID == 0 {
		return nil
	}
	return c.ws.CreatureByID(c.followID)
}

// SetAttackedCreature assigns the attack target, propagating it to every
// summon. Fails (and clears the reference) when the target is on another
// floor or out of sight.
func (c *Creature) SetAttackedCreature(target *Creature) bool {
	if target != nil {
		if target.Pos.Z != c.Pos.Z || !c.CanSee(target.Pos) {
			c.attackedID = 0
			return false
		}
		c.attackedID = target.ID
		c.onAttackedCreature(target)
		target.onAttacked()
	} else {
		c.attackedID = 0
	}

	for _, summon := range c.Summons() {
		summon.SetAttackedCreature(target)
	}
	return true
}

// SetFollowCreature assigns the follow target. Fails when the target is
// on another floor or out of sight. Monsters re-plan immediately; other
// kinds defer the plan to their next think pass.
func (c *Creature) SetFollowCreature(target *Creature) bool {
	if target != nil {
		if c.followID == target.ID {
			return true
		}

		if target.Pos.Z != c.Pos.Z || !c.CanSee(target.Pos) {
			c.followID = 0
			return false
		}

		if len(c.listWalkDir) > 0 {
			c.listWalkDir = c.listWalkDir[:0]
			c.onWalkAborted()
		}

		c.hasFollowPath = false
		c.forceUpdateFollowPath = false
		c.followID = target.ID
		if c.Kind == KindMonster {
			c.isUpdatingPath = false
			c.goToFollowCreature()
		} else {
			c.isUpdatingPath = true
		}
	} else {
		c.isUpdatingPath = false
		c.followID = 0
	}
	return true
}

// onCreatureDisappear clears any weak reference to a creature that left
// this one's perception (removed, off-floor, or no longer visible).
func (c *Creature) onCreatureDisappear(other *Creature, isLogout bool) {
	if c.attackedID == other.ID {
		c.SetAttackedCreature(nil)
		c.onAttackedCreatureDisappear(isLogout)
	}

	if c.followID == other.ID {
		c.SetFollowCreature(nil)
	}
}

func (c *Creature) onAttackedCreatureDisappear(bool) {}

// pathSearchParams derives the path-query parameters for pursuing target.
func (c *Creature) pathSearchParams(target *Creature) FindPathParams {
	fpp := FindPathParams{
		FullPathSearch: !c.hasFollowPath,
		ClearSight:     true,
		MaxSearchDist:  12,
		MinTargetDist:  1,
		MaxTargetDist:  1,
	}

	if c.Mon == nil {
		return fpp
	}

	fpp.MinTargetDist = 1
	fpp.MaxTargetDist = c.Mon.TargetDistance

	if c.Master() != nil {
		if c.Master() == target {
			fpp.MaxTargetDist = 2
			fpp.FullPathSearch = true
		} else if c.Mon.TargetDistance <= 1 {
			fpp.FullPathSearch = true
		} else {
			fpp.FullPathSearch = !c.canReachTarget(target)
		}
	} else if c.IsFleeing() {
		fpp.MaxTargetDist = maxViewportX
		fpp.ClearSight = false
		fpp.KeepDistance = true
		fpp.FullPathSearch = false
	} else if c.Mon.TargetDistance <= 1 {
		fpp.FullPathSearch = true
	} else {
		fpp.FullPathSearch = !c.canReachTarget(target)
	}
	return fpp
}

// canReachTarget reports whether a ranged attack currently connects:
// within template distance with clear sight.
func (c *Creature) canReachTarget(target *Creature) bool {
	dist := c.Pos.DistanceX(target.Pos)
	if dy := c.Pos.DistanceY(target.Pos); dy > dist {
		dist = dy
	}
	return dist <= c.Mon.TargetDistance && c.ws.terrain.LineOfSight(c.Pos, target.Pos)
}

// goToFollowCreature plans the next movement toward (or away from) the
// follow target. Masterless monsters in a kiting or fleeing posture try a
// single-step heuristic before paying for a full path query.
func (c *Creature) goToFollowCreature() {
	target := c.FollowCreature()
	if target == nil {
		return
	}

	fpp := c.pathSearchParams(target)
	targetPos := target.Pos

	if c.Mon != nil && c.Master() == nil && (c.IsFleeing() || fpp.MaxTargetDist > 1) {
		dir := DirectionNone

		if c.IsFleeing() {
			c.distanceStep(targetPos, &dir, true)
		} else { // MaxTargetDist > 1
			if !c.distanceStep(targetPos, &dir, false) {
				// heuristic found nothing, let the full search decide
				c.planPathTo(targetPos, fpp)
				return
			}
		}

		if dir != DirectionNone {
			c.listWalkDir = c.listWalkDir[:0]
			c.listWalkDir = append(c.listWalkDir, dir)
			c.hasFollowPath = true
			c.startCurrentWalk()
		}
		return
	}

	c.planPathTo(targetPos, fpp)
}

func (c *Creature) planPathTo(targetPos Position, fpp FindPathParams) {
	c.listWalkDir = c.listWalkDir[:0]
	if dirs, ok := c.PathTo(targetPos, fpp); ok {
		// store reversed so steps pop off the back
		for i := len(dirs) - 1; i >= 0; i-- {
			c.listWalkDir = append(c.listWalkDir, dirs[i])
		}
		c.hasFollowPath = true
		c.startCurrentWalk()
	} else {
		c.hasFollowPath = false
	}
}

// PathTo runs the external path query toward targetPos.
func (c *Creature) PathTo(targetPos Position, fpp FindPathParams) ([]Direction, bool) {
	matcher := NewDistanceMatcher(targetPos, c.ws.terrain.LineOfSight)
	return c.ws.terrain.PathMatching(c, matcher, fpp)
}
