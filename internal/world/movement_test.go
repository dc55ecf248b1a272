package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStepDurationAlignsToBeat(t *testing.T) {
	tw := newTestWorld()
	rapid.Check(t, func(t *rapid.T) {
		speed := rapid.Int32Range(10, 2000).Draw(t, "speed")
		c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})
		c.SetBaseSpeed(speed)

		d := c.StepDuration()
		assert.GreaterOrEqual(t, d, int64(50))
		assert.Zero(t, d%50)

		tw.state.RemoveCreature(c)
	})
}

func TestStepDurationFasterIsNeverSlower(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	prev := int64(1 << 40)
	for speed := int32(100); speed <= 1000; speed += 100 {
		c.SetBaseSpeed(speed)
		d := c.StepDuration()
		assert.LessOrEqual(t, d, prev)
		prev = d
	}
}

func TestStepDurationFrictionSlows(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	normal := c.StepDuration()
	tw.terrain.friction[c.Pos] = 400
	assert.Greater(t, c.StepDuration(), normal)
}

func TestStepDurationDiagonalTriples(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	straight := c.StepDurationDir(East)
	assert.Equal(t, straight, c.StepDuration())
	assert.Equal(t, 3*straight, c.StepDurationDir(NorthEast))
}

func TestStepDurationEngagedMonsterHalvesPace(t *testing.T) {
	tw := newTestWorld()
	m := tw.spawnMonster("golem", Position{X: 10, Y: 10, Z: 7})

	free := m.StepDuration()
	m.Mon.targetNearbyTicks = 1000
	assert.Equal(t, 2*free, m.StepDuration())

	// a commanded summon keeps full pace
	master := tw.spawnPlayer("alice", Position{X: 12, Y: 10, Z: 7})
	require.True(t, m.SetMaster(master))
	assert.Equal(t, free, m.StepDuration())
}

func TestAutoWalkTraversesQueue(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	c.StartAutoWalk(East, East, South)
	require.NotZero(t, c.eventWalk)

	for i := 0; i < 4; i++ {
		tw.advance(c.StepDuration() * c.lastStepCost)
	}

	assert.Equal(t, Position{X: 12, Y: 11, Z: 7}, c.Pos)
	assert.Empty(t, c.listWalkDir)
	assert.Zero(t, c.eventWalk)
}

func TestWalkIntoWallAbortsQueue(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})
	tw.terrain.blocked[Position{X: 11, Y: 10, Z: 7}] = true

	c.StartAutoWalk(East, East, East)
	tw.advance(c.StepDuration())

	assert.Equal(t, Position{X: 10, Y: 10, Z: 7}, c.Pos)
	assert.Empty(t, c.listWalkDir)
	assert.True(t, c.forceUpdateFollowPath)
}

func TestCancelNextWalkClearsRemainingSteps(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	c.StartAutoWalk(East, East, East)
	c.CancelNextWalk()
	tw.advance(c.StepDuration())

	// the armed step still lands, the rest of the queue is dropped
	assert.Equal(t, Position{X: 11, Y: 10, Z: 7}, c.Pos)
	assert.Empty(t, c.listWalkDir)
}

func TestFirstStepAtClockZeroStillPaces(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	// never stepped: no pending delay, age reads as huge
	assert.Zero(t, c.WalkDelay())
	assert.Greater(t, c.TimeSinceLastStep(), int64(1<<40))

	// a step taken while the manual clock still reads 0 must pace like
	// any other step
	require.NoError(t, tw.state.MoveCreature(c, East))
	assert.Equal(t, c.StepDuration(), c.WalkDelay())
	assert.Zero(t, c.TimeSinceLastStep())

	tw.advance(c.StepDuration())
	assert.Zero(t, c.WalkDelay())
	assert.Equal(t, c.StepDuration(), c.TimeSinceLastStep())
}

func TestDiagonalStepCostsThreeBeats(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	require.NoError(t, tw.state.MoveCreature(c, SouthEast))
	assert.Equal(t, int64(3), c.lastStepCost)
	assert.Equal(t, 3*c.StepDuration(), c.WalkDelay())

	tw.advance(3 * c.StepDuration())
	require.NoError(t, tw.state.MoveCreature(c, East))
	assert.Equal(t, int64(1), c.lastStepCost)
}

func TestTeleportStopsPendingWalk(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	c.StartAutoWalk(East, East)
	require.NotZero(t, c.eventWalk)

	require.NoError(t, tw.state.TeleportCreature(c, Position{X: 40, Y: 40, Z: 7}))
	assert.Zero(t, c.eventWalk)
	assert.Equal(t, Position{X: 40, Y: 40, Z: 7}, c.Pos)
}

func TestStraySummonDespawnsOnMasterMove(t *testing.T) {
	tw := newTestWorld()
	master := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	near := tw.spawnSummon("imp", Position{X: 10, Y: 11, Z: 7}, master)
	stray := tw.spawnSummon("imp", Position{X: 12, Y: 10, Z: 7}, master)

	require.NoError(t, tw.state.TeleportCreature(stray, Position{X: 60, Y: 10, Z: 7}))
	require.NoError(t, tw.state.MoveCreature(master, East))

	assert.Nil(t, tw.state.CreatureByID(stray.ID))
	assert.NotNil(t, tw.state.CreatureByID(near.ID))
	assert.Equal(t, 1, master.SummonCount())
}

func TestEnteringProtectionZoneDropsTarget(t *testing.T) {
	tw := newTestWorld()
	attacker := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	victim := tw.spawnPlayer("bob", Position{X: 11, Y: 10, Z: 7})
	require.True(t, attacker.SetAttackedCreature(victim))

	tw.terrain.protection[Position{X: 9, Y: 10, Z: 7}] = true
	require.NoError(t, tw.state.MoveCreature(attacker, West))

	assert.Nil(t, attacker.AttackedCreature())
}

func TestDrunkStaggerAlwaysCardinal(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("lush", Position{X: 10, Y: 10, Z: 7})
	// drunkenness 100 beats every roll, so the step always staggers
	require.True(t, c.AddCondition(NewDrunkCondition(0, 0, 60000, 100)))

	for i := 0; i < 64; i++ {
		dir := c.staggerStep(NorthEast)
		assert.Less(t, uint8(dir), uint8(4))
	}
}

func TestSoberStepNeverStaggers(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("walker", Position{X: 10, Y: 10, Z: 7})

	for i := 0; i < 16; i++ {
		assert.Equal(t, SouthEast, c.staggerStep(SouthEast))
	}
}
