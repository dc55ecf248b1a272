package event

// CreatureKilled fires when death resolution completes. The corpse system
// picks it up next tick; the victim may already be gone from the arena.
type CreatureKilled struct {
	VictimID     uint32
	KillerID     uint32 // 0 when environmental
	MostDamageID uint32 // 0 when same as killer or none
	X, Y         int32
	Z            uint8
	Unjustified  bool
}

// CreatureRemoved fires when a creature leaves the arena for any reason,
// so systems holding weak references can drop cached state eagerly instead
// of waiting for re-validation.
type CreatureRemoved struct {
	ID uint32
}

// ExperienceAwarded fires once per attacker share during death resolution.
type ExperienceAwarded struct {
	ReceiverID uint32
	SourceID   uint32
	Amount     uint64
}
