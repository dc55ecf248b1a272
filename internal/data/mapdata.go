package data

import (
	"container/heap"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wyrmgo/server/internal/world"
)

// tile is one map cell. Fields are mutable at runtime (hazard fields come
// and go); the static flags are fixed at load time.
type tile struct {
	walkable   bool
	blockSight bool
	protection bool
	friction   int32
	field      world.CombatType
}

// floor is one rectangular z-level.
type floor struct {
	originX, originY int32
	width, height    int32
	tiles            []tile // row-major, [y*width + x]
}

func (f *floor) at(x, y int32) *tile {
	lx := x - f.originX
	ly := y - f.originY
	if lx < 0 || lx >= f.width || ly < 0 || ly >= f.height {
		return nil
	}
	return &f.tiles[ly*f.width+lx]
}

// Map is the tile store backing the world's Terrain collaborator.
type Map struct {
	Name   string
	floors map[uint8]*floor

	// onChange is notified after a runtime tile mutation so cached
	// observers can refresh the affected cell.
	onChange func(world.Position)
}

type mapFloorFile struct {
	Z       uint8    `yaml:"z"`
	OriginX int32    `yaml:"origin_x"`
	OriginY int32    `yaml:"origin_y"`
	Rows    []string `yaml:"rows"`
}

type mapFile struct {
	Name   string         `yaml:"name"`
	Floors []mapFloorFile `yaml:"floors"`
}

const defaultFriction = 150

// Tile legend for map rows. Ground characters set walkability and
// friction; uppercase characters lay a hazard field on normal ground.
//
//	#  wall (blocks movement and sight)
//	.  ground
//	z  protection zone
//	m  mud (high friction)
//	i  slick ice (low friction)
//	F fire  E energy  P poison  C freezing  H dazzling  D curse
//	W drown  B bleeding
//	space  void
func parseTile(ch byte) (tile, error) {
	t := tile{friction: defaultFriction}
	switch ch {
	case '#':
		t.blockSight = true
	case ' ':
		// void: impassable, does not block sight
	case '.':
		t.walkable = true
	case 'z':
		t.walkable = true
		t.protection = true
	case 'm':
		t.walkable = true
		t.friction = 400
	case 'i':
		t.walkable = true
		t.friction = 80
	case 'F':
		t.walkable = true
		t.field = world.CombatFire
	case 'E':
		t.walkable = true
		t.field = world.CombatEnergy
	case 'P':
		t.walkable = true
		t.field = world.CombatEarth
	case 'C':
		t.walkable = true
		t.field = world.CombatIce
	case 'H':
		t.walkable = true
		t.field = world.CombatHoly
	case 'D':
		t.walkable = true
		t.field = world.CombatDeath
	case 'W':
		t.walkable = true
		t.field = world.CombatDrown
	case 'B':
		t.walkable = true
		t.field = world.CombatPhysical
	default:
		return t, fmt.Errorf("unknown tile character %q", ch)
	}
	return t, nil
}

// LoadMap reads a map definition from a YAML file.
func LoadMap(path string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	var file mapFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}

	m := &Map{Name: file.Name, floors: make(map[uint8]*floor, len(file.Floors))}
	for _, ff := range file.Floors {
		if len(ff.Rows) == 0 {
			continue
		}
		width := int32(len(ff.Rows[0]))
		height := int32(len(ff.Rows))
		fl := &floor{
			originX: ff.OriginX,
			originY: ff.OriginY,
			width:   width,
			height:  height,
			tiles:   make([]tile, int(width)*int(height)),
		}
		for y, row := range ff.Rows {
			if int32(len(row)) != width {
				return nil, fmt.Errorf("map %s floor %d: row %d has width %d, want %d",
					path, ff.Z, y, len(row), width)
			}
			for x := 0; x < len(row); x++ {
				t, err := parseTile(row[x])
				if err != nil {
					return nil, fmt.Errorf("map %s floor %d row %d col %d: %w", path, ff.Z, y, x, err)
				}
				fl.tiles[int32(y)*width+int32(x)] = t
			}
		}
		m.floors[ff.Z] = fl
	}
	return m, nil
}

// NewEmptyMap builds an all-open floor, mostly for tests.
func NewEmptyMap(z uint8, originX, originY, width, height int32) *Map {
	fl := &floor{originX: originX, originY: originY, width: width, height: height,
		tiles: make([]tile, int(width)*int(height))}
	for i := range fl.tiles {
		fl.tiles[i] = tile{walkable: true, friction: defaultFriction}
	}
	return &Map{Name: "empty", floors: map[uint8]*floor{z: fl}}
}

// SetTileObserver installs the runtime-mutation callback.
func (m *Map) SetTileObserver(fn func(world.Position)) { m.onChange = fn }

func (m *Map) tileAt(pos world.Position) *tile {
	fl := m.floors[pos.Z]
	if fl == nil {
		return nil
	}
	return fl.at(pos.X, pos.Y)
}

// Walkable reports static tile passability. Creature occupancy is layered
// on by the world, not here.
func (m *Map) Walkable(_ *world.Creature, pos world.Position) bool {
	t := m.tileAt(pos)
	return t != nil && t.walkable
}

func (m *Map) GroundFriction(pos world.Position) int32 {
	if t := m.tileAt(pos); t != nil {
		return t.friction
	}
	return 0
}

func (m *Map) FieldType(pos world.Position) world.CombatType {
	if t := m.tileAt(pos); t != nil {
		return t.field
	}
	return world.CombatNone
}

func (m *Map) ProtectionZone(pos world.Position) bool {
	t := m.tileAt(pos)
	return t != nil && t.protection
}

// SetField lays or clears a hazard field at runtime.
func (m *Map) SetField(pos world.Position, field world.CombatType) {
	if t := m.tileAt(pos); t != nil {
		t.field = field
		m.notify(pos)
	}
}

// SetBlocked toggles tile passability at runtime.
func (m *Map) SetBlocked(pos world.Position, blocked bool) {
	if t := m.tileAt(pos); t != nil {
		t.walkable = !blocked
		m.notify(pos)
	}
}

func (m *Map) notify(pos world.Position) {
	if m.onChange != nil {
		m.onChange(pos)
	}
}

// LineOfSight traces a straight line between two same-floor positions.
// Endpoints never block; different floors never see each other.
func (m *Map) LineOfSight(from, to world.Position) bool {
	if from.Z != to.Z {
		return false
	}
	if from.DistanceX(to) <= 1 && from.DistanceY(to) <= 1 {
		return true
	}
	fl := m.floors[from.Z]
	if fl == nil {
		return false
	}

	x, y := from.X, from.Y
	dx := abs(to.X - from.X)
	dy := abs(to.Y - from.Y)
	sx := sign(to.X - from.X)
	sy := sign(to.Y - from.Y)
	e := dx - dy

	for x != to.X || y != to.Y {
		e2 := e * 2
		if e2 > -dy {
			e -= dy
			x += sx
		}
		if e2 < dx {
			e += dx
			y += sy
		}
		if x == to.X && y == to.Y {
			break
		}
		t := fl.at(x, y)
		if t == nil || t.blockSight {
			return false
		}
	}
	return true
}

// Path search costs, one unit of ten per straight step.
const (
	walkCostStraight = 10
	walkCostDiagonal = 25
	walkCostGuess    = 10 // surcharge for tiles outside the seeker's cache
	walkCostHazard   = 10
	walkCostClosing  = 20 // keep-distance surcharge for closing in

	defaultSearchDist = 50
	maxSearchNodes    = 512
)

type pathNode struct {
	pos    world.Position
	parent *pathNode
	g      int32
	f      int32
	index  int
}

type nodeQueue []*pathNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *nodeQueue) Push(x any)         { n := x.(*pathNode); n.index = len(*q); *q = append(*q, n) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

var searchDirs = [8]world.Direction{
	world.North, world.East, world.South, world.West,
	world.SouthWest, world.SouthEast, world.NorthWest, world.NorthEast,
}

// PathMatching runs a best-first search from c's position to any tile the
// matcher accepts, preferring the seeker's perception cache over map
// queries inside its cached box.
func (m *Map) PathMatching(c *world.Creature, matcher *world.DistanceMatcher, fpp world.FindPathParams) ([]world.Direction, bool) {
	startPos := c.Pos
	bestMatchDist := int32(0)

	// already standing on an acceptable tile
	if matcher.Matches(startPos, startPos, fpp, &bestMatchDist) && bestMatchDist == 0 {
		return nil, true
	}
	bestMatchDist = 0

	searchDist := fpp.MaxSearchDist
	if searchDist <= 0 {
		searchDist = defaultSearchDist
	}

	startDist := chebyshev(startPos, matcher.TargetPos)

	start := &pathNode{pos: startPos, g: 0, f: heuristic(startPos, matcher.TargetPos)}
	open := nodeQueue{}
	heap.Init(&open)
	heap.Push(&open, start)

	visited := map[world.Position]int32{startPos: 0}
	var best *pathNode
	expanded := 0

	for open.Len() > 0 && expanded < maxSearchNodes {
		node := heap.Pop(&open).(*pathNode)
		expanded++

		for _, dir := range searchDirs {
			npos := node.pos.Step(dir)
			if chebyshev(startPos, npos) > searchDist {
				continue
			}

			stepCost := int32(walkCostStraight)
			if dir.Diagonal() {
				stepCost = walkCostDiagonal
			}

			switch c.WalkCache(npos) {
			case 0:
				continue
			case 2:
				if !m.Walkable(c, npos) {
					continue
				}
				stepCost += walkCostGuess
			}
			if m.FieldType(npos) != world.CombatNone {
				stepCost += walkCostHazard
			}
			if fpp.KeepDistance && chebyshev(npos, matcher.TargetPos) < startDist {
				stepCost += walkCostClosing
			}

			g := node.g + stepCost
			if prev, ok := visited[npos]; ok && prev <= g {
				continue
			}
			visited[npos] = g

			next := &pathNode{pos: npos, parent: node, g: g, f: g + heuristic(npos, matcher.TargetPos)}
			heap.Push(&open, next)

			if matcher.Matches(startPos, npos, fpp, &bestMatchDist) {
				best = next
				if bestMatchDist == 0 {
					return collectPath(best), true
				}
			}
		}
	}

	if best == nil {
		return nil, false
	}
	return collectPath(best), true
}

func collectPath(goal *pathNode) []world.Direction {
	var dirs []world.Direction
	for n := goal; n.parent != nil; n = n.parent {
		dirs = append(dirs, dirBetween(n.parent.pos, n.pos))
	}
	// parent-chain order is goal-first
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

func dirBetween(from, to world.Position) world.Direction {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)
	switch {
	case dx == 0 && dy < 0:
		return world.North
	case dx > 0 && dy == 0:
		return world.East
	case dx == 0 && dy > 0:
		return world.South
	case dx < 0 && dy == 0:
		return world.West
	case dx < 0 && dy > 0:
		return world.SouthWest
	case dx > 0 && dy > 0:
		return world.SouthEast
	case dx < 0 && dy < 0:
		return world.NorthWest
	default:
		return world.NorthEast
	}
}

func heuristic(from, to world.Position) int32 {
	return chebyshev(from, to) * walkCostStraight
}

func chebyshev(a, b world.Position) int32 {
	dx := a.DistanceX(b)
	if dy := a.DistanceY(b); dy > dx {
		return dy
	}
	return dx
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
