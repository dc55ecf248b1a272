package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPartyCreateAndJoin(t *testing.T) {
	m := NewPartyManager()
	p := m.Create(1)
	require.NotNil(t, p)
	assert.Equal(t, uint32(1), p.LeaderID)
	assert.True(t, p.HasMember(1))

	require.True(t, m.Join(1, 2))
	assert.True(t, p.HasMember(2))
	assert.Equal(t, p, m.PartyByMember(2))
}

func TestPartyCreateWhileMemberFails(t *testing.T) {
	m := NewPartyManager()
	require.NotNil(t, m.Create(1))
	require.True(t, m.Join(1, 2))

	assert.Nil(t, m.Create(2))
}

func TestPartyJoinTwiceFails(t *testing.T) {
	m := NewPartyManager()
	m.Create(1)
	m.Create(5)
	require.True(t, m.Join(1, 2))

	assert.False(t, m.Join(1, 2))
	assert.False(t, m.Join(5, 2))
}

func TestPartySizeCap(t *testing.T) {
	m := NewPartyManager()
	m.Create(1)
	for id := uint32(2); id <= MaxPartySize; id++ {
		require.True(t, m.Join(1, id))
	}
	assert.False(t, m.Join(1, 100))
}

func TestPartyLeaderLeaveDisbands(t *testing.T) {
	m := NewPartyManager()
	m.Create(1)
	require.True(t, m.Join(1, 2))
	require.True(t, m.Join(1, 3))

	m.Leave(1)
	assert.Nil(t, m.PartyByMember(1))
	assert.Nil(t, m.PartyByMember(2))
	assert.Nil(t, m.PartyByMember(3))
}

func TestPartyShrinkToOneDisbands(t *testing.T) {
	m := NewPartyManager()
	m.Create(1)
	require.True(t, m.Join(1, 2))

	m.Leave(2)
	assert.Nil(t, m.PartyByMember(1))
	assert.Nil(t, m.PartyByMember(2))
}

func TestSharedExpNeedsToggleAndMembers(t *testing.T) {
	m := NewPartyManager()
	p := m.Create(1)

	// solo party never qualifies
	require.True(t, m.SetSharedExp(1, true))
	assert.True(t, p.SharedExpEnabled)
	assert.False(t, p.SharedExpActive)

	require.True(t, m.Join(1, 2))
	assert.True(t, p.SharedExpActive)

	require.True(t, m.SetSharedExp(1, false))
	assert.False(t, p.SharedExpEnabled)
	// active reflects membership, not the toggle
	assert.True(t, p.SharedExpActive)
}

func TestSharedExpOnlyLeaderToggles(t *testing.T) {
	m := NewPartyManager()
	m.Create(1)
	require.True(t, m.Join(1, 2))

	assert.False(t, m.SetSharedExp(2, true))
}

func TestPartyMembershipConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewPartyManager()
		steps := rapid.IntRange(1, 30).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			id := rapid.Uint32Range(1, 20).Draw(t, "id")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				m.Create(id)
			case 1:
				target := rapid.Uint32Range(1, 20).Draw(t, "party")
				m.Join(target, id)
			case 2:
				m.Leave(id)
			}
		}

		for id, partyID := range m.memberOf {
			p, ok := m.parties[partyID]
			require.True(t, ok)
			require.True(t, p.HasMember(id))
			require.GreaterOrEqual(t, len(p.MemberIDs), 1)
		}
		for partyID, p := range m.parties {
			require.Equal(t, partyID, p.LeaderID)
			for _, id := range p.MemberIDs {
				require.Equal(t, partyID, m.memberOf[id])
			}
			require.Equal(t, len(p.MemberIDs) >= 2, p.SharedExpActive)
		}
	})
}
