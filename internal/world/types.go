package world

// CombatType classifies a damage source. Bit flags so immunity sets can be
// expressed as masks.
type CombatType uint32

const (
	CombatNone     CombatType = 0
	CombatPhysical CombatType = 1 << 0
	CombatEnergy   CombatType = 1 << 1
	CombatEarth    CombatType = 1 << 2
	CombatFire     CombatType = 1 << 3
	CombatDrown    CombatType = 1 << 4
	CombatIce      CombatType = 1 << 5
	CombatHoly     CombatType = 1 << 6
	CombatDeath    CombatType = 1 << 7
	CombatLifeDrain CombatType = 1 << 8
	CombatHealing  CombatType = 1 << 9
)

// BlockType is the classification blockHit reports to the attacker.
type BlockType int

const (
	BlockNone BlockType = iota
	BlockImmunity
	BlockDefense
	BlockArmor
)

func (b BlockType) String() string {
	switch b {
	case BlockImmunity:
		return "immunity"
	case BlockDefense:
		return "defense"
	case BlockArmor:
		return "armor"
	}
	return "none"
}

// ConditionType identifies a status effect family. Bit flags so kind
// suppression and immunity sets can be expressed as masks.
type ConditionType uint32

const (
	ConditionNone     ConditionType = 0
	ConditionPoison   ConditionType = 1 << 0
	ConditionFire     ConditionType = 1 << 1
	ConditionEnergy   ConditionType = 1 << 2
	ConditionBleeding ConditionType = 1 << 3
	ConditionFreezing ConditionType = 1 << 4
	ConditionDazzled  ConditionType = 1 << 5
	ConditionCursed   ConditionType = 1 << 6
	ConditionDrown    ConditionType = 1 << 7
	ConditionHaste    ConditionType = 1 << 8
	ConditionParalyze ConditionType = 1 << 9
	ConditionInvisible ConditionType = 1 << 10
	ConditionDrunk    ConditionType = 1 << 11
	ConditionRegeneration ConditionType = 1 << 12
	ConditionInFight  ConditionType = 1 << 13
)

// Kind tags what an entity is; behavior hooks dispatch on it.
type Kind int

const (
	KindMonster Kind = iota
	KindNPC
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindMonster:
		return "monster"
	case KindNPC:
		return "npc"
	}
	return "player"
}
