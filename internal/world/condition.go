package world

// Condition is a timed status effect. A condition instance belongs to
// exactly one creature at a time; transferring it means removing it from
// the source before adding it to the destination.
type Condition interface {
	Type() ConditionType
	// ID distinguishes semantically different sources of the same type;
	// SubID distinguishes instances below that. Same (type, id, subId)
	// additions merge instead of stacking.
	ID() uint32
	SubID() uint32
	// Ticks is the remaining duration in ms; -1 marks a permanent effect.
	Ticks() int64
	SetTicks(ticks int64)
	// CasterID identifies who inflicted the condition, 0 if nobody.
	CasterID() uint32

	// Start runs the on-begin effect; returning false rejects the add.
	Start(c *Creature) bool
	// ExecuteTick advances the effect by interval ms and reports whether
	// the condition is still running.
	ExecuteTick(c *Creature, interval int64) bool
	// End runs the on-end effect after removal from the collection.
	End(c *Creature)
	// Merge folds a same-identity addition into this instance.
	Merge(c *Creature, other Condition)
}

// permanentTicks is the sentinel duration of a condition that never
// expires on its own.
const permanentTicks int64 = -1

func (c *Creature) IsConditionImmune(t ConditionType) bool {
	return c.ConditionImmunities&t != 0
}

func (c *Creature) IsSuppressed(t ConditionType) bool {
	return c.ConditionSuppressions&t != 0
}

// HasCondition reports an active condition of the given type and subId.
// Suppressed types read as never active without being removed.
func (c *Creature) HasCondition(t ConditionType, subID uint32) bool {
	if c.IsSuppressed(t) {
		return false
	}

	for _, condition := range c.conditions {
		if condition.Type() != t || condition.SubID() != subID {
			continue
		}
		if condition.Ticks() > 0 || condition.Ticks() == permanentTicks {
			return true
		}
	}
	return false
}

// Condition returns the stored instance matching the full identity
// triple, nil if absent.
func (c *Creature) Condition(t ConditionType, id, subID uint32) Condition {
	for _, condition := range c.conditions {
		if condition.Type() == t && condition.ID() == id && condition.SubID() == subID {
			return condition
		}
	}
	return nil
}

// ConditionByType returns the first stored instance of the type.
func (c *Creature) ConditionByType(t ConditionType) Condition {
	for _, condition := range c.conditions {
		if condition.Type() == t {
			return condition
		}
	}
	return nil
}

// AddCondition inserts, merges, or defers a condition. Immune types are
// never added. A haste added mid-step onto a paralyzed creature is
// re-attempted once the current step finishes, so movement state is never
// mutated mid-action. Paralysis may be deflected back onto its caster.
func (c *Creature) AddCondition(condition Condition) bool {
	return c.addCondition(condition, false)
}

// ForceAddCondition bypasses the mid-step deferral; used by the deferred
// task itself.
func (c *Creature) ForceAddCondition(condition Condition) bool {
	return c.addCondition(condition, true)
}

func (c *Creature) addCondition(condition Condition, force bool) bool {
	if condition == nil {
		return false
	}

	if c.IsConditionImmune(condition.Type()) {
		return false
	}

	if !force && condition.Type() == ConditionHaste && c.HasCondition(ConditionParalyze, 0) {
		if walkDelay := c.WalkDelay(); walkDelay > 0 {
			id := c.ID
			c.ws.sch.Timers.AddEvent(walkDelay, func() {
				c.ws.forceAddCondition(id, condition)
			})
			return false
		}
	}

	if condition.Type() == ConditionParalyze && c.Pl != nil && condition.CasterID() != c.ID {
		if chance := c.Pl.paralysisDeflection(); chance > 0 {
			if caster := c.ws.CreatureByID(condition.CasterID()); caster != nil {
				if caster.Pl != nil {
					return caster.AddCondition(condition)
				}
				if caster.Mon != nil && uniformRandom(1, 100) <= chance {
					return caster.AddCondition(condition)
				}
			}
		}
	}

	if prev := c.Condition(condition.Type(), condition.ID(), condition.SubID()); prev != nil {
		prev.Merge(c, condition)
		return true
	}

	if condition.Start(c) {
		c.conditions = append(c.conditions, condition)
		c.onAddCondition(condition.Type())
		return true
	}
	return false
}

// onAddCondition enforces the haste/paralysis mutual exclusion.
func (c *Creature) onAddCondition(t ConditionType) {
	if t == ConditionParalyze && c.HasCondition(ConditionHaste, 0) {
		c.RemoveCondition(ConditionHaste)
	} else if t == ConditionHaste && c.HasCondition(ConditionParalyze, 0) {
		c.RemoveCondition(ConditionParalyze)
	}
}

func (c *Creature) onEndCondition(ConditionType) {}

// RemoveCondition removes every condition of the type. Paralysis removal
// mid-step is deferred until the current step finishes.
func (c *Creature) RemoveCondition(t ConditionType) {
	c.removeConditionType(t, false)
}

// ForceRemoveCondition removes immediately, without the mid-step deferral.
func (c *Creature) ForceRemoveCondition(t ConditionType) {
	c.removeConditionType(t, true)
}

func (c *Creature) removeConditionType(t ConditionType, force bool) {
	for i := 0; i < len(c.conditions); {
		condition := c.conditions[i]
		if condition.Type() != t {
			i++
			continue
		}

		if !force && t == ConditionParalyze {
			if walkDelay := c.WalkDelay(); walkDelay > 0 {
				id := c.ID
				c.ws.sch.Timers.AddEvent(walkDelay, func() {
					c.ws.forceRemoveCondition(id, t)
				})
				return
			}
		}

		c.conditions = append(c.conditions[:i], c.conditions[i+1:]...)
		condition.End(c)
		c.onEndCondition(t)
	}
}

// RemoveConditionInstance removes one specific instance. Absent instances
// are a silent no-op.
func (c *Creature) RemoveConditionInstance(condition Condition, force bool) {
	idx := -1
	for i, cond := range c.conditions {
		if cond == condition {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	if !force && condition.Type() == ConditionParalyze {
		if walkDelay := c.WalkDelay(); walkDelay > 0 {
			id := c.ID
			t := condition.Type()
			c.ws.sch.Timers.AddEvent(walkDelay, func() {
				c.ws.forceRemoveCondition(id, t)
			})
			return
		}
	}

	c.conditions = append(c.conditions[:idx], c.conditions[idx+1:]...)
	condition.End(c)
	c.onEndCondition(condition.Type())
}

// ExecuteConditions ticks every condition and removes the finished ones.
// Conditions may remove themselves or others during their tick, so
// presence is re-checked per instance.
func (c *Creature) ExecuteConditions(interval int64) {
	snapshot := make([]Condition, len(c.conditions))
	copy(snapshot, c.conditions)

	for _, condition := range snapshot {
		if !c.hasConditionInstance(condition) {
			continue
		}

		if !condition.ExecuteTick(c, interval) {
			if c.hasConditionInstance(condition) {
				c.RemoveConditionInstance(condition, true)
			}
		}
	}
}

func (c *Creature) hasConditionInstance(condition Condition) bool {
	for _, cond := range c.conditions {
		if cond == condition {
			return true
		}
	}
	return false
}

// onTickCondition couples a damage-type condition to the hazard field on
// the tile underfoot: once the field no longer matches the condition's
// damage type the condition asks for removal. No field keeps it running.
func (c *Creature) onTickCondition(t ConditionType) (remove bool) {
	field := c.ws.terrain.FieldType(c.Pos)
	if field == CombatNone {
		return false
	}

	switch t {
	case ConditionFire:
		return field != CombatFire
	case ConditionEnergy:
		return field != CombatEnergy
	case ConditionPoison:
		return field != CombatEarth
	case ConditionFreezing:
		return field != CombatIce
	case ConditionDazzled:
		return field != CombatHoly
	case ConditionCursed:
		return field != CombatDeath
	case ConditionDrown:
		return field != CombatDrown
	case ConditionBleeding:
		return field != CombatPhysical
	}
	return false
}

// fieldConditions maps a hazard field to the condition it inflicts and
// the damage dealt per tick while the condition runs.
var fieldConditions = map[CombatType]struct {
	condType ConditionType
	perTick  int32
}{
	CombatFire:     {ConditionFire, 10},
	CombatEnergy:   {ConditionEnergy, 25},
	CombatEarth:    {ConditionPoison, 5},
	CombatIce:      {ConditionFreezing, 8},
	CombatHoly:     {ConditionDazzled, 8},
	CombatDeath:    {ConditionCursed, 8},
	CombatDrown:    {ConditionDrown, 20},
	CombatPhysical: {ConditionBleeding, 5},
}

// fieldConditionTicks is how many damage ticks a stepped-in field inflicts.
const fieldConditionTicks = 10

// onSteppedInField inflicts the ticking condition of the hazard field
// under the creature, paced by the configured condition tick interval.
// Re-entering a matching field merges into the running condition.
func (c *Creature) onSteppedInField() {
	field := c.ws.terrain.FieldType(c.Pos)
	if field == CombatNone {
		return
	}
	fc, ok := fieldConditions[field]
	if !ok {
		return
	}
	period := c.ws.cfg.Rates.ConditionTickMs
	c.AddCondition(NewDamageCondition(fc.condType, 0, 0, 0, fieldConditionTicks*period, field, period, fc.perTick))
}

// releaseConditions ends every owned condition on removal from the world.
func (c *Creature) releaseConditions() {
	for _, condition := range c.conditions {
		condition.End(c)
	}
	c.conditions = c.conditions[:0]
}
