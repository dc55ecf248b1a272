package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/config"
	"github.com/wyrmgo/server/internal/core/event"
	"github.com/wyrmgo/server/internal/core/sched"
	"github.com/wyrmgo/server/internal/world"
)

func writeMap(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleMap = `name: testland
floors:
  - z: 7
    origin_x: 10
    origin_y: 10
    rows:
      - "#####"
      - "#.zm#"
      - "#.#i#"
      - "#.FE#"
      - "#####"
`

func pos(x, y int32, z uint8) world.Position {
	return world.Position{X: x, Y: y, Z: z}
}

func TestLoadMapLegend(t *testing.T) {
	m, err := LoadMap(writeMap(t, sampleMap))
	require.NoError(t, err)
	assert.Equal(t, "testland", m.Name)

	assert.False(t, m.Walkable(nil, pos(10, 10, 7)), "wall")
	assert.True(t, m.Walkable(nil, pos(11, 11, 7)), "ground")
	assert.False(t, m.Walkable(nil, pos(9, 11, 7)), "outside the floor")
	assert.False(t, m.Walkable(nil, pos(11, 11, 6)), "missing floor")

	assert.True(t, m.ProtectionZone(pos(12, 11, 7)))
	assert.False(t, m.ProtectionZone(pos(11, 11, 7)))

	assert.Equal(t, int32(400), m.GroundFriction(pos(13, 11, 7)), "mud")
	assert.Equal(t, int32(80), m.GroundFriction(pos(13, 12, 7)), "ice")
	assert.Equal(t, int32(defaultFriction), m.GroundFriction(pos(11, 11, 7)))

	assert.Equal(t, world.CombatFire, m.FieldType(pos(12, 13, 7)))
	assert.Equal(t, world.CombatEnergy, m.FieldType(pos(13, 13, 7)))
	assert.Equal(t, world.CombatNone, m.FieldType(pos(11, 11, 7)))
}

func TestLoadMapRowWidthMismatch(t *testing.T) {
	_, err := LoadMap(writeMap(t, "name: bad\nfloors:\n  - z: 7\n    rows:\n      - \"...\"\n      - \"....\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width")
}

func TestLoadMapUnknownTile(t *testing.T) {
	_, err := LoadMap(writeMap(t, "name: bad\nfloors:\n  - z: 7\n    rows:\n      - \".?.\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tile")
}

func TestLoadMapMissingFile(t *testing.T) {
	_, err := LoadMap(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSetBlockedNotifiesObserver(t *testing.T) {
	m := NewEmptyMap(7, 0, 0, 20, 20)
	var changed []world.Position
	m.SetTileObserver(func(p world.Position) { changed = append(changed, p) })

	m.SetBlocked(pos(5, 5, 7), true)
	assert.False(t, m.Walkable(nil, pos(5, 5, 7)))
	m.SetBlocked(pos(5, 5, 7), false)
	assert.True(t, m.Walkable(nil, pos(5, 5, 7)))

	m.SetField(pos(6, 5, 7), world.CombatFire)
	assert.Equal(t, world.CombatFire, m.FieldType(pos(6, 5, 7)))

	assert.Equal(t, []world.Position{pos(5, 5, 7), pos(5, 5, 7), pos(6, 5, 7)}, changed)
}

func TestLineOfSight(t *testing.T) {
	m, err := LoadMap(writeMap(t, `name: los
floors:
  - z: 7
    rows:
      - "......."
      - "...#..."
      - "......."
`))
	require.NoError(t, err)

	assert.True(t, m.LineOfSight(pos(0, 1, 7), pos(2, 1, 7)))
	assert.False(t, m.LineOfSight(pos(0, 1, 7), pos(6, 1, 7)), "wall in between")
	assert.True(t, m.LineOfSight(pos(0, 0, 7), pos(6, 0, 7)))
	assert.False(t, m.LineOfSight(pos(2, 1, 7), pos(4, 1, 7)), "wall between adjacent neighbors")
	assert.False(t, m.LineOfSight(pos(0, 1, 7), pos(0, 1, 8)), "floors never see each other")
	assert.True(t, m.LineOfSight(pos(1, 1, 7), pos(3, 1, 7)), "the endpoint tile never blocks")
	assert.True(t, m.LineOfSight(pos(3, 1, 7), pos(3, 0, 7)), "adjacent tiles always see each other")
}

// pathWorld assembles a real world on top of a loaded map so path queries
// run against the production Terrain implementation.
func pathWorld(t *testing.T, m *Map, start world.Position) (*world.State, *world.Creature) {
	t.Helper()
	cfg := config.Defaults()
	sch := sched.NewContext(&sched.ManualClock{})
	state := world.NewState(zap.NewNop(), cfg, sch, event.NewBus(), m)
	m.SetTileObserver(state.OnTileChanged)
	seeker, err := state.SpawnPlayer("seeker", start, 100, 200)
	require.NoError(t, err)
	return state, seeker
}

func TestPathMatchingStraightLine(t *testing.T) {
	m := NewEmptyMap(7, 0, 0, 20, 20)
	_, seeker := pathWorld(t, m, pos(1, 1, 7))

	matcher := world.NewDistanceMatcher(pos(5, 1, 7), m.LineOfSight)
	dirs, ok := m.PathMatching(seeker, matcher, world.FindPathParams{
		FullPathSearch: true, ClearSight: true, MinTargetDist: 1, MaxTargetDist: 1,
	})
	require.True(t, ok)
	assert.Equal(t, []world.Direction{world.East, world.East, world.East}, dirs)
}

func TestPathMatchingStartAlreadyMatches(t *testing.T) {
	m := NewEmptyMap(7, 0, 0, 20, 20)
	_, seeker := pathWorld(t, m, pos(1, 1, 7))

	matcher := world.NewDistanceMatcher(pos(2, 1, 7), m.LineOfSight)
	dirs, ok := m.PathMatching(seeker, matcher, world.FindPathParams{
		FullPathSearch: true, ClearSight: true, MinTargetDist: 1, MaxTargetDist: 1,
	})
	require.True(t, ok)
	assert.Empty(t, dirs)
}

func TestPathMatchingAroundWall(t *testing.T) {
	m, err := LoadMap(writeMap(t, `name: walled
floors:
  - z: 7
    rows:
      - "........"
      - ".###...."
      - "........"
`))
	require.NoError(t, err)
	_, seeker := pathWorld(t, m, pos(0, 1, 7))

	// the wall run forces a detour through an adjacent row
	target := pos(5, 1, 7)
	matcher := world.NewDistanceMatcher(target, m.LineOfSight)
	dirs, ok := m.PathMatching(seeker, matcher, world.FindPathParams{
		FullPathSearch: true, ClearSight: false, MinTargetDist: 0, MaxTargetDist: 0,
	})
	require.True(t, ok)

	// replay the directions and confirm every tile is walkable
	cur := seeker.Pos
	for _, d := range dirs {
		cur = cur.Step(d)
		require.True(t, m.Walkable(nil, cur), "stepped into %v", cur)
	}
	assert.Equal(t, target, cur)
}

func TestPathMatchingRespectsSearchBudget(t *testing.T) {
	m := NewEmptyMap(7, 0, 0, 60, 60)
	_, seeker := pathWorld(t, m, pos(1, 1, 7))

	matcher := world.NewDistanceMatcher(pos(40, 1, 7), m.LineOfSight)
	_, ok := m.PathMatching(seeker, matcher, world.FindPathParams{
		FullPathSearch: true, ClearSight: false, MaxSearchDist: 5, MinTargetDist: 0, MaxTargetDist: 0,
	})
	assert.False(t, ok, "target sits outside the allowed search radius")
}

func TestPathMatchingDetoursAroundHazards(t *testing.T) {
	m, err := LoadMap(writeMap(t, `name: hazard
floors:
  - z: 7
    rows:
      - "....."
      - ".FFF."
      - "....."
`))
	require.NoError(t, err)
	_, seeker := pathWorld(t, m, pos(0, 1, 7))

	// the hazard surcharge makes the detour around the fire cheaper
	// than wading straight through it
	matcher := world.NewDistanceMatcher(pos(4, 1, 7), m.LineOfSight)
	dirs, ok := m.PathMatching(seeker, matcher, world.FindPathParams{
		FullPathSearch: true, ClearSight: false, MinTargetDist: 0, MaxTargetDist: 0,
	})
	require.True(t, ok)

	fieldSteps := 0
	cur := seeker.Pos
	for _, d := range dirs {
		cur = cur.Step(d)
		if m.FieldType(cur) != world.CombatNone {
			fieldSteps++
		}
	}
	assert.Equal(t, pos(4, 1, 7), cur)
	assert.GreaterOrEqual(t, len(dirs), 4)
	assert.Zero(t, fieldSteps)
}
