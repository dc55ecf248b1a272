package world

// baseCondition carries the identity triple and the countdown shared by
// every concrete condition.
type baseCondition struct {
	condType ConditionType
	id       uint32
	subID    uint32
	ticks    int64
	casterID uint32
}

func (b *baseCondition) Type() ConditionType { return b.condType }
func (b *baseCondition) ID() uint32          { return b.id }
func (b *baseCondition) SubID() uint32       { return b.subID }
func (b *baseCondition) Ticks() int64        { return b.ticks }
func (b *baseCondition) SetTicks(t int64)    { b.ticks = t }
func (b *baseCondition) CasterID() uint32    { return b.casterID }

// countdown advances the remaining duration and reports whether the
// condition keeps running. Permanent conditions always do.
func (b *baseCondition) countdown(interval int64) bool {
	if b.ticks == permanentTicks {
		return true
	}
	b.ticks -= interval
	if b.ticks < 0 {
		b.ticks = 0
	}
	return b.ticks > 0
}

// GenericCondition is a pure timed flag (combat lock, invisibility).
type GenericCondition struct {
	baseCondition
}

func NewGenericCondition(t ConditionType, id, subID uint32, ticks int64) *GenericCondition {
	return &GenericCondition{baseCondition{condType: t, id: id, subID: subID, ticks: ticks}}
}

func (g *GenericCondition) Start(*Creature) bool { return true }

func (g *GenericCondition) ExecuteTick(_ *Creature, interval int64) bool {
	return g.countdown(interval)
}

func (g *GenericCondition) End(*Creature) {}

// Merge keeps the longer remaining duration.
func (g *GenericCondition) Merge(_ *Creature, other Condition) {
	if other.Ticks() == permanentTicks || (g.ticks != permanentTicks && other.Ticks() > g.ticks) {
		g.ticks = other.Ticks()
	}
}

// DamageCondition deals periodic damage of one combat type. It is the
// field-coupled kind: while standing on a hazard field of a different
// type it removes itself.
type DamageCondition struct {
	baseCondition
	Combat    CombatType
	PeriodMs  int64
	PerTick   int32
	tickAccum int64
}

func NewDamageCondition(t ConditionType, id, subID, casterID uint32, ticks int64, combat CombatType, periodMs int64, perTick int32) *DamageCondition {
	return &DamageCondition{
		baseCondition: baseCondition{condType: t, id: id, subID: subID, ticks: ticks, casterID: casterID},
		Combat:        combat,
		PeriodMs:      periodMs,
		PerTick:       perTick,
	}
}

func (d *DamageCondition) Start(*Creature) bool { return true }

func (d *DamageCondition) ExecuteTick(c *Creature, interval int64) bool {
	if c.onTickCondition(d.condType) {
		return false
	}

	d.tickAccum += interval
	for d.tickAccum >= d.PeriodMs {
		d.tickAccum -= d.PeriodMs
		caster := c.ws.CreatureByID(d.casterID)
		damage, _ := c.BlockHit(caster, d.Combat, d.PerTick, false, false)
		if damage > 0 {
			c.DrainHealth(caster, damage)
		}
	}

	return d.countdown(interval)
}

func (d *DamageCondition) End(*Creature) {}

// Merge extends the duration and adopts the stronger per-tick damage.
func (d *DamageCondition) Merge(_ *Creature, other Condition) {
	o, ok := other.(*DamageCondition)
	if !ok {
		return
	}
	if o.ticks == permanentTicks || (d.ticks != permanentTicks && o.ticks > d.ticks) {
		d.ticks = o.ticks
	}
	if o.PerTick > d.PerTick {
		d.PerTick = o.PerTick
	}
}

// SpeedCondition covers haste and paralysis: a variable-speed delta held
// for the duration. Negative deltas slow, positive hasten.
type SpeedCondition struct {
	baseCondition
	SpeedDelta int32
	applied    int32
}

func NewSpeedCondition(t ConditionType, id, subID, casterID uint32, ticks int64, speedDelta int32) *SpeedCondition {
	return &SpeedCondition{
		baseCondition: baseCondition{condType: t, id: id, subID: subID, ticks: ticks, casterID: casterID},
		SpeedDelta:    speedDelta,
	}
}

func (s *SpeedCondition) Start(c *Creature) bool {
	s.applied = s.SpeedDelta
	c.ChangeSpeed(s.applied)
	return true
}

func (s *SpeedCondition) ExecuteTick(_ *Creature, interval int64) bool {
	return s.countdown(interval)
}

func (s *SpeedCondition) End(c *Creature) {
	c.ChangeSpeed(-s.applied)
	s.applied = 0
}

// Merge refreshes the duration and swaps in the new delta.
func (s *SpeedCondition) Merge(c *Creature, other Condition) {
	o, ok := other.(*SpeedCondition)
	if !ok {
		return
	}
	if o.ticks == permanentTicks || (s.ticks != permanentTicks && o.ticks > s.ticks) {
		s.ticks = o.ticks
	}
	if o.SpeedDelta != s.applied {
		c.ChangeSpeed(o.SpeedDelta - s.applied)
		s.applied = o.SpeedDelta
		s.SpeedDelta = o.SpeedDelta
	}
}

// InvisibleCondition hides the creature from observers without the
// see-invisible capability.
type InvisibleCondition struct {
	GenericCondition
}

func NewInvisibleCondition(id, subID uint32, ticks int64) *InvisibleCondition {
	return &InvisibleCondition{GenericCondition{baseCondition{condType: ConditionInvisible, id: id, subID: subID, ticks: ticks}}}
}

// DrunkCondition staggers walking; heavier drunkenness staggers more.
type DrunkCondition struct {
	baseCondition
	Drunkenness int32
}

func NewDrunkCondition(id, subID uint32, ticks int64, drunkenness int32) *DrunkCondition {
	return &DrunkCondition{
		baseCondition: baseCondition{condType: ConditionDrunk, id: id, subID: subID, ticks: ticks},
		Drunkenness:   drunkenness,
	}
}

func (d *DrunkCondition) Start(*Creature) bool { return true }

func (d *DrunkCondition) ExecuteTick(_ *Creature, interval int64) bool {
	return d.countdown(interval)
}

func (d *DrunkCondition) End(*Creature) {}

// Merge keeps the heavier drunkenness and the longer duration.
func (d *DrunkCondition) Merge(_ *Creature, other Condition) {
	o, ok := other.(*DrunkCondition)
	if !ok {
		return
	}
	if o.ticks == permanentTicks || (d.ticks != permanentTicks && o.ticks > d.ticks) {
		d.ticks = o.ticks
	}
	if o.Drunkenness > d.Drunkenness {
		d.Drunkenness = o.Drunkenness
	}
}

// RegenerationCondition heals periodically.
type RegenerationCondition struct {
	baseCondition
	PeriodMs  int64
	PerTick   int32
	tickAccum int64
}

func NewRegenerationCondition(id, subID uint32, ticks, periodMs int64, perTick int32) *RegenerationCondition {
	return &RegenerationCondition{
		baseCondition: baseCondition{condType: ConditionRegeneration, id: id, subID: subID, ticks: ticks},
		PeriodMs:      periodMs,
		PerTick:       perTick,
	}
}

func (r *RegenerationCondition) Start(*Creature) bool { return true }

func (r *RegenerationCondition) ExecuteTick(c *Creature, interval int64) bool {
	r.tickAccum += interval
	for r.tickAccum >= r.PeriodMs {
		r.tickAccum -= r.PeriodMs
		if c.Health > 0 {
			c.GainHealth(nil, r.PerTick)
		}
	}
	return r.countdown(interval)
}

func (r *RegenerationCondition) End(*Creature) {}

func (r *RegenerationCondition) Merge(_ *Creature, other Condition) {
	if other.Ticks() == permanentTicks || (r.ticks != permanentTicks && other.Ticks() > r.ticks) {
		r.ticks = other.Ticks()
	}
}
