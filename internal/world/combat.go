package world

import (
	"math"

	"go.uber.org/zap"

	"github.com/wyrmgo/server/internal/core/event"
)

// IsImmune reports full immunity against a damage type.
func (c *Creature) IsImmune(combatType CombatType) bool {
	return c.DamageImmunities&combatType != 0
}

// BlockHit applies mitigation in fixed order: immunity, then the limited
// defense charge, then armor. Whenever damage bottoms out at zero the
// reported classification is armor, even when defense absorbed the hit
// and armor never ran; downstream cues rely on that exact behavior.
func (c *Creature) BlockHit(attacker *Creature, combatType CombatType, damage int32, checkDefense, checkArmor bool) (int32, BlockType) {
	blockType := BlockNone

	if c.IsImmune(combatType) {
		damage = 0
		blockType = BlockImmunity
	} else if checkDefense || checkArmor {
		hasDefense := false
		if c.blockCount > 0 {
			c.blockCount--
			hasDefense = true
		}

		if checkDefense && hasDefense {
			defense := c.Defense()
			damage -= uniformRandom(defense/2, defense)
			if damage <= 0 {
				damage = 0
				blockType = BlockDefense
				checkArmor = false
			}
		}

		if checkArmor {
			armor := c.Armor()
			if armor > 3 {
				damage -= uniformRandom(armor/2, armor-(armor%2+1))
			} else if armor > 0 {
				damage--
			}

			if damage <= 0 {
				damage = 0
				blockType = BlockArmor
			}
		}
	}

	if damage <= 0 {
		damage = 0
		blockType = BlockArmor
	}

	if attacker != nil && combatType != CombatHealing {
		attacker.onAttackedCreature(c)
		attacker.onAttackedCreatureBlockHit(blockType)
		if master := attacker.Master(); master != nil && master.Pl != nil {
			master.onAttackedCreature(c)
		}
	}

	c.onAttacked()
	return damage, blockType
}

func (c *Creature) onAttackedCreatureBlockHit(BlockType) {}

// onAttackedCreature runs attacker-side bookkeeping for a strike against
// target; player kinds enter combat lock and track unprovoked aggression.
func (c *Creature) onAttackedCreature(target *Creature) {
	if c.Pl == nil || target == c {
		return
	}

	c.addInFight()

	if target.Pl != nil && !c.hasBeenAttackedBy(target.ID) {
		c.Pl.markAttacked(target.ID)
	}
}

// addInFight refreshes the combat-lock condition on a player.
func (c *Creature) addInFight() {
	c.AddCondition(NewGenericCondition(ConditionInFight, 0, 0, c.ws.cfg.Combat.CombatLockMs))
}

func (c *Creature) hasBeenAttackedBy(attackerID uint32) bool {
	it, ok := c.damageMap[attackerID]
	if !ok {
		return false
	}
	return c.ws.sch.Clock.Now()-it.Ticks <= c.ws.cfg.Combat.CombatLockMs
}

// HasBeenAttacked reports whether attackerID hit this creature within the
// combat-lock window.
func (c *Creature) HasBeenAttacked(attackerID uint32) bool {
	return c.hasBeenAttackedBy(attackerID)
}

// AddDamagePoints records damage in the ledger and marks the most recent
// hitter. Non-positive amounts are ignored.
func (c *Creature) AddDamagePoints(attacker *Creature, damagePoints int32) {
	if damagePoints <= 0 {
		return
	}

	cb := c.damageMap[attacker.ID]
	cb.Ticks = c.ws.sch.Clock.Now()
	cb.Total += damagePoints
	c.damageMap[attacker.ID] = cb

	c.lastHitCreatureID = attacker.ID
}

// DamageRatio is attacker's share of all ledger damage inside the
// combat-lock window.
func (c *Creature) DamageRatio(attacker *Creature) float64 {
	timeNow := c.ws.sch.Clock.Now()
	window := c.ws.cfg.Combat.CombatLockMs

	var totalDamage, attackerDamage int64
	for id, cb := range c.damageMap {
		if timeNow-cb.Ticks > window {
			continue
		}
		totalDamage += int64(cb.Total)
		if id == attacker.ID {
			attackerDamage += int64(cb.Total)
		}
	}

	if totalDamage == 0 {
		return 0
	}
	return float64(attackerDamage) / float64(totalDamage)
}

// GainedExperience is the experience share attacker earned from this
// creature's death.
func (c *Creature) GainedExperience(attacker *Creature) uint64 {
	return uint64(math.Floor(c.DamageRatio(attacker) * float64(c.lostExperience())))
}

// Killers enumerates every ledger attacker still present and inside the
// combat-lock window.
func (c *Creature) Killers() []*Creature {
	var killers []*Creature
	timeNow := c.ws.sch.Clock.Now()
	window := c.ws.cfg.Combat.CombatLockMs
	for id, cb := range c.damageMap {
		attacker := c.ws.CreatureByID(id)
		if attacker != nil && attacker != c && timeNow-cb.Ticks <= window {
			killers = append(killers, attacker)
		}
	}
	return killers
}

// ChangeHealth clamps health into [0, max]. Reaching zero queues death
// resolution on the async queue; it never runs on the calling stack.
func (c *Creature) ChangeHealth(healthChange int32) {
	if healthChange > 0 {
		if healthChange > c.HealthMax-c.Health {
			healthChange = c.HealthMax - c.Health
		}
		c.Health += healthChange
	} else {
		c.Health += healthChange
		if c.Health < 0 {
			c.Health = 0
		}
	}

	if c.Health <= 0 {
		id := c.ID
		c.ws.sch.Async.Add(func() {
			c.ws.executeDeath(id)
		})
	}
}

// GainHealth heals and notifies the healer.
func (c *Creature) GainHealth(healer *Creature, healthGain int32) {
	c.ChangeHealth(healthGain)
	if healer != nil {
		healer.onTargetCreatureGainHealth(c, healthGain)
	}
}

// onTargetCreatureGainHealth credits the heal in the healer's log; pure
// healing never touches the damage ledger or the combat lock.
func (c *Creature) onTargetCreatureGainHealth(target *Creature, points int32) {
	c.ws.log.Debug("creature healed",
		zap.Uint32("healer", c.ID),
		zap.Uint32("target", target.ID),
		zap.Int32("amount", points))
}

// DrainHealth damages and credits the attacker in the victim's ledger.
func (c *Creature) DrainHealth(attacker *Creature, damage int32) {
	c.ChangeHealth(-damage)

	if attacker != nil {
		attacker.onAttackedCreatureDrainHealth(c, damage)
	} else {
		c.lastHitCreatureID = 0
	}
}

func (c *Creature) onAttackedCreatureDrainHealth(target *Creature, points int32) {
	target.AddDamagePoints(c, points)
}

// onDeath performs full death resolution: kill attribution, experience
// distribution, corpse hand-off, master severing, and removal.
func (c *Creature) onDeath() {
	lastHitUnjustified := false
	mostDamageUnjustified := false

	lastHitCreature := c.ws.CreatureByID(c.lastHitCreatureID)
	var lastHitCreatureMaster *Creature
	if lastHitCreature != nil {
		lastHitUnjustified = lastHitCreature.onKilledCreature(c, true)
		lastHitCreatureMaster = lastHitCreature.Master()
	}

	var mostDamageCreature *Creature

	timeNow := c.ws.sch.Clock.Now()
	window := c.ws.cfg.Combat.CombatLockMs
	var mostDamage int32
	experienceMap := make(map[*Creature]uint64)
	for id, cb := range c.damageMap {
		attacker := c.ws.CreatureByID(id)
		if attacker == nil {
			continue
		}

		if timeNow-cb.Ticks > window {
			continue
		}

		if cb.Total > mostDamage {
			mostDamage = cb.Total
			mostDamageCreature = attacker
		}

		if attacker == c {
			continue
		}

		gainExp := uint64(float64(c.GainedExperience(attacker)) * c.ws.cfg.Rates.ExpRate)
		if attacker.Pl != nil {
			attacker.Pl.unmarkAttacked(c.ID)

			if party := c.ws.parties.PartyByMember(attacker.ID); party != nil &&
				party.LeaderID != 0 && party.SharedExpActive && party.SharedExpEnabled {
				if leader := c.ws.CreatureByID(party.LeaderID); leader != nil {
					attacker = leader
					gainExp = uint64(float64(gainExp) * c.ws.cfg.Rates.SharedExpSplit)
				}
			}
		}
		experienceMap[attacker] += gainExp
	}

	for receiver, exp := range experienceMap {
		receiver.GainExperience(exp, c)
		event.Emit(c.ws.bus, event.ExperienceAwarded{
			ReceiverID: receiver.ID,
			SourceID:   c.ID,
			Amount:     exp,
		})
	}

	if mostDamageCreature != nil {
		if mostDamageCreature != lastHitCreature && mostDamageCreature != lastHitCreatureMaster {
			mostDamageCreatureMaster := mostDamageCreature.Master()
			if lastHitCreature != mostDamageCreatureMaster &&
				(lastHitCreatureMaster == nil || mostDamageCreatureMaster != lastHitCreatureMaster) {
				mostDamageUnjustified = mostDamageCreature.onKilledCreature(c, false)
			}
		}
	}

	droppedCorpse := c.dropCorpse(lastHitCreature, mostDamageCreature, lastHitUnjustified, mostDamageUnjustified)
	c.kindDeath(lastHitCreature)

	if c.Master() != nil {
		c.SetMaster(nil)
	}

	c.ws.log.Info("creature died",
		zap.Uint32("id", c.ID),
		zap.String("name", c.Name),
		zap.Uint32("last_hit", c.lastHitCreatureID),
		zap.Bool("corpse", droppedCorpse))

	if droppedCorpse {
		c.ws.RemoveCreature(c)
	}
}

// dropCorpse decides between a corpse and a visual-only vanish. Summoned
// monsters that carry no loot just puff away. Returns whether removal
// should follow.
func (c *Creature) dropCorpse(lastHitCreature, mostDamageCreature *Creature, lastHitUnjustified, mostDamageUnjustified bool) bool {
	var lastHitID, mostDamageID uint32
	if lastHitCreature != nil {
		lastHitID = lastHitCreature.ID
	}
	if mostDamageCreature != nil {
		mostDamageID = mostDamageCreature.ID
	}

	if !c.LootDrop && c.Mon != nil {
		c.ws.announceDeath(c, false, lastHitID, mostDamageID, lastHitUnjustified, mostDamageUnjustified)
		return true
	}

	c.ws.addCorpse(c, lastHitCreature)
	c.ws.announceDeath(c, true, lastHitID, mostDamageID, lastHitUnjustified, mostDamageUnjustified)
	return true
}

// onKilledCreature is the attacker-side death hook. It propagates to the
// master chain and, for players, classifies the kill as unjustified when
// the victim was an innocent player.
func (c *Creature) onKilledCreature(target *Creature, lastHit bool) bool {
	if master := c.Master(); master != nil {
		master.onKilledCreature(target, lastHit)
	}

	if c.Pl != nil && target.Pl != nil {
		// the victim counts as an aggressor from the moment they target
		// the killer, not only once their damage lands
		if !c.ws.terrain.ProtectionZone(target.Pos) &&
			!c.hasBeenAttackedBy(target.ID) && !target.Pl.HasAttacked(c.ID) {
			return true
		}
	}
	return false
}

// GainExperience credits exp and forwards half of it (floored) up the
// master chain. The chain is acyclic by construction; halving alone would
// not terminate at amount 1 without the integer floor.
func (c *Creature) GainExperience(gainExp uint64, target *Creature) {
	c.Experience += gainExp

	if gainExp == 0 {
		return
	}

	master := c.Master()
	if master == nil {
		return
	}

	master.GainExperience(gainExp/2, target)
}

// lostExperience is the experience pool this creature's death hands out.
func (c *Creature) lostExperience() uint64 {
	switch {
	case c.Mon != nil:
		return c.Mon.Experience
	case c.Pl != nil:
		return c.Experience * uint64(c.Pl.ExpLossPercent) / 100
	}
	return 0
}

// kindDeath runs kind-specific death effects.
func (c *Creature) kindDeath(lastHitCreature *Creature) {
	if c.Pl != nil {
		c.Experience -= c.lostExperience()
	}
	_ = lastHitCreature
}

// doAttacking performs one melee swing when the cooldown allows.
func (c *Creature) doAttacking(target *Creature, interval int64) {
	if c.Mon == nil {
		return
	}

	c.Mon.attackTicks += interval
	if c.Mon.attackTicks < c.Mon.AttackInterval {
		return
	}
	c.Mon.attackTicks = 0

	dist := c.Pos.DistanceX(target.Pos)
	if dy := c.Pos.DistanceY(target.Pos); dy > dist {
		dist = dy
	}
	if dist > c.Mon.TargetDistance {
		return
	}

	damage := uniformRandom(c.Mon.AttackMin, c.Mon.AttackMax)
	mitigated, _ := target.BlockHit(c, CombatPhysical, damage, true, true)
	if mitigated > 0 {
		target.DrainHealth(c, mitigated)
	}
}
