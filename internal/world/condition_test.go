package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestConditionAddAndExpire(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewGenericCondition(ConditionInFight, 0, 0, 3000)))
	assert.True(t, c.HasCondition(ConditionInFight, 0))

	c.ExecuteConditions(2999)
	assert.True(t, c.HasCondition(ConditionInFight, 0))

	c.ExecuteConditions(1)
	assert.False(t, c.HasCondition(ConditionInFight, 0))
	assert.Nil(t, c.ConditionByType(ConditionInFight))
}

func TestConditionPermanentNeverExpires(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewGenericCondition(ConditionInvisible, 0, 0, -1)))
	for i := 0; i < 100; i++ {
		c.ExecuteConditions(100_000)
	}
	assert.True(t, c.HasCondition(ConditionInvisible, 0))
}

func TestConditionImmunityRejectsAdd(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnMonster("golem", Position{X: 10, Y: 10, Z: 7})
	c.ConditionImmunities = ConditionPoison

	assert.False(t, c.AddCondition(NewDamageCondition(ConditionPoison, 0, 0, 0, 10000, CombatEarth, 1000, 5)))
	assert.Nil(t, c.ConditionByType(ConditionPoison))
}

func TestConditionSuppressionHidesWithoutRemoving(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnMonster("golem", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewGenericCondition(ConditionDrunk, 0, 0, 10000)))
	require.True(t, c.HasCondition(ConditionDrunk, 0))

	c.ConditionSuppressions = ConditionDrunk
	assert.False(t, c.HasCondition(ConditionDrunk, 0))
	// the instance survives; lifting the suppression reveals it again
	assert.NotNil(t, c.ConditionByType(ConditionDrunk))
	c.ConditionSuppressions = 0
	assert.True(t, c.HasCondition(ConditionDrunk, 0))
}

func TestConditionSameIdentityMerges(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewDamageCondition(ConditionFire, 1, 0, 0, 4000, CombatFire, 1000, 5)))
	require.True(t, c.AddCondition(NewDamageCondition(ConditionFire, 1, 0, 0, 8000, CombatFire, 1000, 9)))

	// one instance, longer duration, stronger per-tick
	stored, ok := c.ConditionByType(ConditionFire).(*DamageCondition)
	require.True(t, ok)
	assert.Equal(t, int64(8000), stored.Ticks())
	assert.Equal(t, int32(9), stored.PerTick)
	assert.Len(t, c.conditions, 1)
}

func TestConditionDistinctSubIDsStack(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewGenericCondition(ConditionInFight, 0, 1, 4000)))
	require.True(t, c.AddCondition(NewGenericCondition(ConditionInFight, 0, 2, 8000)))
	assert.Len(t, c.conditions, 2)
}

func TestDamageConditionTicksDamage(t *testing.T) {
	tw := newTestWorld()
	victim := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	caster := tw.spawnMonster("golem", Position{X: 11, Y: 10, Z: 7})

	require.True(t, victim.AddCondition(
		NewDamageCondition(ConditionPoison, 0, 0, caster.ID, 5000, CombatEarth, 1000, 4)))

	victim.ExecuteConditions(999)
	assert.Equal(t, int32(200), victim.Health)

	victim.ExecuteConditions(1)
	assert.Equal(t, int32(196), victim.Health)

	// caster is credited in the victim's damage ledger
	assert.True(t, victim.HasBeenAttacked(caster.ID))
}

func TestDamageConditionRemovedByForeignField(t *testing.T) {
	tw := newTestWorld()
	victim := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, victim.AddCondition(
		NewDamageCondition(ConditionFire, 0, 0, 0, 60000, CombatFire, 1000, 4)))

	// standing on an energy field cancels a fire condition
	tw.terrain.fields[victim.Pos] = CombatEnergy
	victim.ExecuteConditions(100)
	assert.Nil(t, victim.ConditionByType(ConditionFire))
}

func TestDamageConditionKeptOnMatchingOrNoField(t *testing.T) {
	tw := newTestWorld()
	victim := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, victim.AddCondition(
		NewDamageCondition(ConditionFire, 0, 0, 0, 60000, CombatFire, 1000, 4)))

	victim.ExecuteConditions(100)
	require.NotNil(t, victim.ConditionByType(ConditionFire))

	tw.terrain.fields[victim.Pos] = CombatFire
	victim.ExecuteConditions(100)
	assert.NotNil(t, victim.ConditionByType(ConditionFire))
}

func TestSteppingIntoFieldInflictsCondition(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	tw.terrain.fields[Position{X: 11, Y: 10, Z: 7}] = CombatFire

	require.NoError(t, tw.state.MoveCreature(c, East))
	stored, ok := c.ConditionByType(ConditionFire).(*DamageCondition)
	require.True(t, ok)
	assert.Equal(t, tw.cfg.Rates.ConditionTickMs, stored.PeriodMs)
	assert.Equal(t, fieldConditionTicks*tw.cfg.Rates.ConditionTickMs, stored.Ticks())

	// the burn ticks while the victim stands in the matching field
	health := c.Health
	c.ExecuteConditions(tw.cfg.Rates.ConditionTickMs)
	assert.Less(t, c.Health, health)
}

func TestSteppingIntoFieldRespectsImmunity(t *testing.T) {
	tw := newTestWorld()
	m := tw.spawnMonster("imp", Position{X: 10, Y: 10, Z: 7})
	m.ConditionImmunities = ConditionFire
	tw.terrain.fields[Position{X: 11, Y: 10, Z: 7}] = CombatFire

	require.NoError(t, tw.state.MoveCreature(m, East))
	assert.Nil(t, m.ConditionByType(ConditionFire))
}

func TestSpeedConditionAppliesAndReverts(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	base := c.Speed()

	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 130)))
	assert.Equal(t, base+130, c.Speed())

	c.RemoveCondition(ConditionHaste)
	assert.Equal(t, base, c.Speed())
}

func TestSpeedConditionMergeSwapsDeltaLive(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	base := c.Speed()

	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 100)))
	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 250)))
	assert.Equal(t, base+250, c.Speed())

	c.RemoveCondition(ConditionHaste)
	assert.Equal(t, base, c.Speed())
}

func TestHasteAndParalyzeExclude(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 100)))
	require.True(t, c.AddCondition(NewSpeedCondition(ConditionParalyze, 0, 0, 0, 5000, -100)))
	assert.False(t, c.HasCondition(ConditionHaste, 0))
	assert.True(t, c.HasCondition(ConditionParalyze, 0))

	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 100)))
	assert.True(t, c.HasCondition(ConditionHaste, 0))
	assert.False(t, c.HasCondition(ConditionParalyze, 0))
}

func TestHasteDeferredWhileParalyzedMidStep(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	require.True(t, c.AddCondition(NewSpeedCondition(ConditionParalyze, 0, 0, 0, 60000, -100)))

	// take a step so a walk delay is pending
	require.NoError(t, tw.state.MoveCreature(c, East))
	require.Greater(t, c.WalkDelay(), int64(0))

	assert.False(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 100)))
	assert.False(t, c.HasCondition(ConditionHaste, 0))

	// once the step cost elapses, the deferred add fires and wins
	tw.advance(c.WalkDelay() + 1)
	assert.True(t, c.HasCondition(ConditionHaste, 0))
	assert.False(t, c.HasCondition(ConditionParalyze, 0))
}

func TestParalyzeRemovalDeferredMidStep(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	require.True(t, c.AddCondition(NewSpeedCondition(ConditionParalyze, 0, 0, 0, 60000, -100)))

	require.NoError(t, tw.state.MoveCreature(c, East))
	require.Greater(t, c.WalkDelay(), int64(0))

	c.RemoveCondition(ConditionParalyze)
	assert.True(t, c.HasCondition(ConditionParalyze, 0))

	tw.advance(c.WalkDelay() + 1)
	assert.False(t, c.HasCondition(ConditionParalyze, 0))
}

func TestParalysisDeflectionToMonsterCaster(t *testing.T) {
	tw := newTestWorld()
	target := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	target.Pl.DeflectionItems = []int32{100} // always deflects

	caster := tw.spawnMonster("golem", Position{X: 11, Y: 10, Z: 7})

	added := target.AddCondition(NewSpeedCondition(ConditionParalyze, 0, 0, caster.ID, 5000, -100))
	assert.True(t, added)
	assert.False(t, target.HasCondition(ConditionParalyze, 0))
	assert.True(t, caster.HasCondition(ConditionParalyze, 0))
}

func TestParalysisDeflectionAlwaysReturnsToPlayerCaster(t *testing.T) {
	tw := newTestWorld()
	target := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	target.Pl.DeflectionItems = []int32{1} // any positive sum deflects players

	caster := tw.spawnPlayer("mallory", Position{X: 11, Y: 10, Z: 7})

	assert.True(t, target.AddCondition(NewSpeedCondition(ConditionParalyze, 0, 0, caster.ID, 5000, -100)))
	assert.False(t, target.HasCondition(ConditionParalyze, 0))
	assert.True(t, caster.HasCondition(ConditionParalyze, 0))
}

func TestRegenerationHeals(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	c.Health = 100

	require.True(t, c.AddCondition(NewRegenerationCondition(0, 0, 10000, 1000, 15)))
	c.ExecuteConditions(3000)
	assert.Equal(t, int32(145), c.Health)

	// never past max
	c.ExecuteConditions(6000)
	assert.Equal(t, c.HealthMax, c.Health)
}

func TestReleaseConditionsRevertsEffects(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})
	base := c.Speed()

	require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, 5000, 100)))
	c.releaseConditions()
	assert.Equal(t, base, c.Speed())
	assert.Empty(t, c.conditions)
}

func TestConditionRoundTripRestoresState(t *testing.T) {
	tw := newTestWorld()
	c := tw.spawnPlayer("alice", Position{X: 10, Y: 10, Z: 7})

	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Int64Range(1, 1<<30).Draw(t, "ticks")
		delta := rapid.Int32Range(1, 500).Draw(t, "delta")
		base := c.Speed()

		require.True(t, c.AddCondition(NewSpeedCondition(ConditionHaste, 0, 0, 0, ticks, delta)))
		require.True(t, c.HasCondition(ConditionHaste, 0))
		c.RemoveCondition(ConditionHaste)

		assert.False(t, c.HasCondition(ConditionHaste, 0))
		assert.Equal(t, base, c.Speed())
	})
}
