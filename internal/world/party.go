package world

const MaxPartySize = 8

// Party tracks a group of players. Shared experience redirects kill
// rewards to the leader only while both the active and enabled flags
// hold: enabled is the leader's toggle, active reflects whether the
// membership currently qualifies.
type Party struct {
	LeaderID         uint32
	MemberIDs        []uint32 // includes the leader
	SharedExpEnabled bool
	SharedExpActive  bool
}

func (p *Party) HasMember(id uint32) bool {
	for _, m := range p.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// PartyManager manages all active parties.
// Accessed only from the game loop goroutine — no locks needed.
type PartyManager struct {
	parties  map[uint32]*Party // partyID (= leaderID) → party
	memberOf map[uint32]uint32 // creatureID → partyID
}

func NewPartyManager() *PartyManager {
	return &PartyManager{
		parties:  make(map[uint32]*Party),
		memberOf: make(map[uint32]uint32),
	}
}

// Create starts a new party led by leaderID. Fails if the leader already
// belongs to one.
func (m *PartyManager) Create(leaderID uint32) *Party {
	if _, ok := m.memberOf[leaderID]; ok {
		return nil
	}
	p := &Party{LeaderID: leaderID, MemberIDs: []uint32{leaderID}}
	m.parties[leaderID] = p
	m.memberOf[leaderID] = leaderID
	return p
}

// Join adds a member to an existing party.
func (m *PartyManager) Join(partyID, memberID uint32) bool {
	p, ok := m.parties[partyID]
	if !ok || len(p.MemberIDs) >= MaxPartySize {
		return false
	}
	if _, ok := m.memberOf[memberID]; ok {
		return false
	}
	p.MemberIDs = append(p.MemberIDs, memberID)
	m.memberOf[memberID] = partyID
	m.refreshSharedExp(p)
	return true
}

// Leave removes a member; a leaderless party disbands.
func (m *PartyManager) Leave(memberID uint32) {
	partyID, ok := m.memberOf[memberID]
	if !ok {
		return
	}
	delete(m.memberOf, memberID)

	p := m.parties[partyID]
	for i, id := range p.MemberIDs {
		if id == memberID {
			p.MemberIDs = append(p.MemberIDs[:i], p.MemberIDs[i+1:]...)
			break
		}
	}

	if memberID == p.LeaderID || len(p.MemberIDs) <= 1 {
		for _, id := range p.MemberIDs {
			delete(m.memberOf, id)
		}
		delete(m.parties, partyID)
		return
	}
	m.refreshSharedExp(p)
}

// PartyByMember returns the party a creature belongs to, or nil.
func (m *PartyManager) PartyByMember(id uint32) *Party {
	partyID, ok := m.memberOf[id]
	if !ok {
		return nil
	}
	return m.parties[partyID]
}

// SetSharedExp toggles the leader's shared-experience switch.
func (m *PartyManager) SetSharedExp(leaderID uint32, enabled bool) bool {
	p, ok := m.parties[leaderID]
	if !ok || p.LeaderID != leaderID {
		return false
	}
	p.SharedExpEnabled = enabled
	m.refreshSharedExp(p)
	return true
}

// refreshSharedExp recomputes whether the membership qualifies: shared
// experience needs at least two members.
func (m *PartyManager) refreshSharedExp(p *Party) {
	p.SharedExpActive = len(p.MemberIDs) >= 2
}
