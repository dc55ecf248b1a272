package world

// MonsterState is the monster-kind extension of a creature.
type MonsterState struct {
	TemplateName string

	// TargetDistance is the desired engagement range: 1 = melee,
	// higher values keep the monster kiting at range.
	TargetDistance int32
	RunAwayHealth  int32

	AttackMin      int32
	AttackMax      int32
	AttackInterval int64
	attackTicks    int64

	Experience uint64

	SpawnPos Position

	// targetNearbyTicks counts down after the target was last seen in
	// engagement range; positive means the cautious-advance penalty
	// applies.
	targetNearbyTicks int64

	// challengeFocusTicks pins the current target, disabling fleeing.
	challengeFocusTicks int64
}

// TargetNearby reports whether the target was recently within engagement
// range.
func (m *MonsterState) TargetNearby() bool {
	return m.targetNearbyTicks >= 1
}

// IsFleeing reports whether the monster is running: below its run-away
// threshold, unowned, and not pinned by a challenge.
func (c *Creature) IsFleeing() bool {
	if c.Mon == nil {
		return false
	}
	return c.Master() == nil && c.Health <= c.Mon.RunAwayHealth && c.Mon.challengeFocusTicks <= 0
}

// Challenge pins the monster's attention on the challenger.
func (c *Creature) Challenge(challenger *Creature, durationMs int64) {
	if c.Mon == nil {
		return
	}
	if c.SetAttackedCreature(challenger) {
		c.SetFollowCreature(challenger)
		c.Mon.challengeFocusTicks = durationMs
	}
}

// monsterThink runs the monster AI portion of a think pass: target
// upkeep, engagement-range tracking, and idle walking home.
func (c *Creature) monsterThink(interval int64) {
	m := c.Mon

	if m.challengeFocusTicks > 0 {
		m.challengeFocusTicks -= interval
	}
	if m.targetNearbyTicks > 0 {
		m.targetNearbyTicks -= interval
	}

	target := c.AttackedCreature()
	if target != nil {
		dist := c.Pos.DistanceX(target.Pos)
		if dy := c.Pos.DistanceY(target.Pos); dy > dist {
			dist = dy
		}
		if dist <= m.TargetDistance {
			m.targetNearbyTicks = 1000
		}

		if c.IsFleeing() {
			c.SetFollowCreature(target)
		}
		return
	}

	// masterless and idle: drift back toward the spawn point
	if c.Master() == nil && len(c.listWalkDir) == 0 && c.Pos != m.SpawnPos && c.Pos.Z == m.SpawnPos.Z {
		fpp := FindPathParams{
			FullPathSearch: true,
			ClearSight:     false,
			MaxSearchDist:  c.ws.cfg.Combat.MaxPathSeekTiles,
			MinTargetDist:  0,
			MaxTargetDist:  0,
		}
		if dirs, ok := c.PathTo(m.SpawnPos, fpp); ok {
			c.StartAutoWalk(dirs...)
		}
	}
}

// distanceStep picks a single sidestep relative to targetPos: away from
// it when fleeing, holding range otherwise. Returns false when no
// neighboring tile improves the position, letting the caller fall back to
// a real path search.
func (c *Creature) distanceStep(targetPos Position, dir *Direction, flee bool) bool {
	myDist := chebyshev(c.Pos, targetPos)

	type candidate struct {
		dir  Direction
		dist int32
	}
	var candidates []candidate

	for _, d := range []Direction{North, East, South, West} {
		next := c.Pos.Step(d)
		if c.WalkCache(next) != 1 {
			continue
		}
		nd := chebyshev(next, targetPos)
		if flee {
			if nd > myDist {
				candidates = append(candidates, candidate{d, nd})
			}
		} else {
			// kiting: keep at most the desired distance, never step into
			// the target
			if nd >= myDist && nd <= c.Mon.TargetDistance && c.ws.terrain.LineOfSight(next, targetPos) {
				candidates = append(candidates, candidate{d, nd})
			}
		}
	}

	if len(candidates) == 0 {
		return false
	}

	best := candidates[0]
	count := 1
	for _, cand := range candidates[1:] {
		if (flee && cand.dist > best.dist) || (!flee && cand.dist > best.dist) {
			best = cand
			count = 1
		} else if cand.dist == best.dist {
			count++
			if uniformRandom(1, int32(count)) == 1 {
				best = cand
			}
		}
	}

	*dir = best.dir
	return true
}

func chebyshev(a, b Position) int32 {
	dist := a.DistanceX(b)
	if dy := a.DistanceY(b); dy > dist {
		dist = dy
	}
	return dist
}
