package world

// FindPathParams parameterizes a path query.
type FindPathParams struct {
	FullPathSearch bool  // re-plan from scratch instead of continuing the current heading
	ClearSight     bool  // destination must have line of sight to the target
	KeepDistance   bool  // prefer tiles that keep the current distance (fleeing)
	MaxSearchDist  int32 // search-node budget, 0 = unbounded
	MinTargetDist  int32
	MaxTargetDist  int32
}

// Terrain is the spatial collaborator: tile queries, sight checks, and the
// path search itself. The simulation core never walks tiles directly.
type Terrain interface {
	// Walkable reports whether c may legally occupy pos.
	Walkable(c *Creature, pos Position) bool
	// GroundFriction returns the tile's surface friction, 0 if absent.
	GroundFriction(pos Position) int32
	// FieldType returns the combat type of the hazard field on the tile,
	// CombatNone when the tile has no active field.
	FieldType(pos Position) CombatType
	ProtectionZone(pos Position) bool
	LineOfSight(from, to Position) bool
	// PathMatching searches for a direction sequence from c's position to
	// any tile accepted by the matcher, honoring c's perception cache.
	PathMatching(c *Creature, matcher *DistanceMatcher, fpp FindPathParams) ([]Direction, bool)
}

// DistanceMatcher is a path-search acceptance predicate frozen at query
// time: it bounds candidate tiles by min/max distance to a fixed target
// position, optionally requires sight to it, and remembers the best
// partial match so the search can settle for the nearest acceptable tile.
type DistanceMatcher struct {
	TargetPos Position
	sight     func(from, to Position) bool
}

func NewDistanceMatcher(targetPos Position, sight func(from, to Position) bool) *DistanceMatcher {
	return &DistanceMatcher{TargetPos: targetPos, sight: sight}
}

// InRange bounds the search frontier. On an incremental (non-full) search
// the max-distance box collapses to zero on the side opposite the
// start-to-target axis, biasing continuation toward the existing heading.
func (m *DistanceMatcher) InRange(startPos, testPos Position, fpp FindPathParams) bool {
	if fpp.FullPathSearch {
		if testPos.X > m.TargetPos.X+fpp.MaxTargetDist {
			return false
		}
		if testPos.X < m.TargetPos.X-fpp.MaxTargetDist {
			return false
		}
		if testPos.Y > m.TargetPos.Y+fpp.MaxTargetDist {
			return false
		}
		if testPos.Y < m.TargetPos.Y-fpp.MaxTargetDist {
			return false
		}
		return true
	}

	dx := startPos.OffsetX(m.TargetPos)

	dxMax := int32(0)
	if dx >= 0 {
		dxMax = fpp.MaxTargetDist
	}
	if testPos.X > m.TargetPos.X+dxMax {
		return false
	}

	dxMin := int32(0)
	if dx <= 0 {
		dxMin = fpp.MaxTargetDist
	}
	if testPos.X < m.TargetPos.X-dxMin {
		return false
	}

	dy := startPos.OffsetY(m.TargetPos)

	dyMax := int32(0)
	if dy >= 0 {
		dyMax = fpp.MaxTargetDist
	}
	if testPos.Y > m.TargetPos.Y+dyMax {
		return false
	}

	dyMin := int32(0)
	if dy <= 0 {
		dyMin = fpp.MaxTargetDist
	}
	if testPos.Y < m.TargetPos.Y-dyMin {
		return false
	}
	return true
}

// Matches decides whether testPos terminates the search. bestMatchDist
// tracks the closest non-exact candidate seen so far; 0 means an exact
// max-distance tile was found.
func (m *DistanceMatcher) Matches(startPos, testPos Position, fpp FindPathParams, bestMatchDist *int32) bool {
	if !m.InRange(startPos, testPos, fpp) {
		return false
	}

	if fpp.ClearSight && m.sight != nil && !m.sight(testPos, m.TargetPos) {
		return false
	}

	testDist := m.TargetPos.DistanceX(testPos)
	if dy := m.TargetPos.DistanceY(testPos); dy > testDist {
		testDist = dy
	}

	if fpp.MaxTargetDist == 1 {
		return testDist >= fpp.MinTargetDist && testDist <= fpp.MaxTargetDist
	}

	if testDist <= fpp.MaxTargetDist {
		if testDist < fpp.MinTargetDist {
			return false
		}
		if testDist == fpp.MaxTargetDist {
			*bestMatchDist = 0
			return true
		}
		if testDist > *bestMatchDist {
			// not quite what we want, but the best so far
			*bestMatchDist = testDist
			return true
		}
	}
	return false
}
