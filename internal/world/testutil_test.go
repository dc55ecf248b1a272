package world

import (
	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/config"
	"github.com/wyrmgo/server/internal/core/event"
	"github.com/wyrmgo/server/internal/core/sched"
)

// gridTerrain is a flat single-floor test terrain: everything walkable
// unless marked, full sight unless a wall is placed between tiles.
type gridTerrain struct {
	blocked    map[Position]bool
	protection map[Position]bool
	fields     map[Position]CombatType
	friction   map[Position]int32
	noSight    bool
}

func newGridTerrain() *gridTerrain {
	return &gridTerrain{
		blocked:    make(map[Position]bool),
		protection: make(map[Position]bool),
		fields:     make(map[Position]CombatType),
		friction:   make(map[Position]int32),
	}
}

func (g *gridTerrain) Walkable(_ *Creature, pos Position) bool { return !g.blocked[pos] }

func (g *gridTerrain) GroundFriction(pos Position) int32 {
	if f, ok := g.friction[pos]; ok {
		return f
	}
	return 150
}

func (g *gridTerrain) FieldType(pos Position) CombatType { return g.fields[pos] }
func (g *gridTerrain) ProtectionZone(pos Position) bool  { return g.protection[pos] }

func (g *gridTerrain) LineOfSight(from, to Position) bool {
	return from.Z == to.Z && !g.noSight
}

// PathMatching is a breadth-first search, enough for follow and wander
// tests without a full cost model.
func (g *gridTerrain) PathMatching(c *Creature, matcher *DistanceMatcher, fpp FindPathParams) ([]Direction, bool) {
	type node struct {
		pos  Position
		path []Direction
	}

	startPos := c.Pos
	bestMatchDist := int32(0)
	if matcher.Matches(startPos, startPos, fpp, &bestMatchDist) && bestMatchDist == 0 {
		return nil, true
	}
	bestMatchDist = 0

	searchDist := fpp.MaxSearchDist
	if searchDist <= 0 {
		searchDist = 50
	}

	dirs := []Direction{North, East, South, West, SouthWest, SouthEast, NorthWest, NorthEast}
	visited := map[Position]bool{startPos: true}
	queue := []node{{pos: startPos}}
	var best []Direction

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, dir := range dirs {
			npos := n.pos.Step(dir)
			if visited[npos] {
				continue
			}
			if npos.DistanceX(startPos) > searchDist || npos.DistanceY(startPos) > searchDist {
				continue
			}
			switch c.WalkCache(npos) {
			case 0:
				continue
			case 2:
				if !g.Walkable(c, npos) {
					continue
				}
			}
			visited[npos] = true

			path := make([]Direction, len(n.path)+1)
			copy(path, n.path)
			path[len(n.path)] = dir

			if matcher.Matches(startPos, npos, fpp, &bestMatchDist) {
				if bestMatchDist == 0 {
					return path, true
				}
				best = path
			}
			queue = append(queue, node{pos: npos, path: path})
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

// testWorld bundles the fixtures most world tests need.
type testWorld struct {
	state   *State
	clock   *sched.ManualClock
	sch     *sched.Context
	bus     *event.Bus
	terrain *gridTerrain
	cfg     *config.Config
}

func newTestWorld() *testWorld {
	clock := &sched.ManualClock{}
	schCtx := sched.NewContext(clock)
	bus := event.NewBus()
	terrain := newGridTerrain()
	cfg := config.Defaults()
	state := NewState(zap.NewNop(), cfg, schCtx, bus, terrain)
	return &testWorld{
		state:   state,
		clock:   clock,
		sch:     schCtx,
		bus:     bus,
		terrain: terrain,
		cfg:     cfg,
	}
}

// advance moves game time forward and fires everything due.
func (tw *testWorld) advance(ms int64) {
	tw.clock.Advance(ms)
	tw.sch.Timers.Advance()
	tw.sch.Async.Drain()
}

func (tw *testWorld) monsterTemplate(name string) *MonsterTemplate {
	return &MonsterTemplate{
		Name:             name,
		Health:           100,
		Speed:            200,
		Armor:            0,
		Defense:          0,
		AttackMin:        5,
		AttackMax:        10,
		AttackIntervalMs: 2000,
		TargetDistance:   1,
		Experience:       1000,
		LootDrop:         true,
	}
}

func (tw *testWorld) spawnMonster(name string, pos Position) *Creature {
	c, err := tw.state.SpawnMonster(tw.monsterTemplate(name), pos, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func (tw *testWorld) spawnSummon(name string, pos Position, master *Creature) *Creature {
	c, err := tw.state.SpawnMonster(tw.monsterTemplate(name), pos, master)
	if err != nil {
		panic(err)
	}
	return c
}

func (tw *testWorld) spawnPlayer(name string, pos Position) *Creature {
	c, err := tw.state.SpawnPlayer(name, pos, 200, 220)
	if err != nil {
		panic(err)
	}
	return c
}

func (tw *testWorld) spawnNpc(name string, pos Position) *Creature {
	c, err := tw.state.SpawnNpc(&NpcTemplate{
		Name:       name,
		Health:     100,
		Speed:      180,
		Script:     name,
		WalkTicks:  1500,
		HomeRadius: 3,
	}, pos)
	if err != nil {
		panic(err)
	}
	return c
}
