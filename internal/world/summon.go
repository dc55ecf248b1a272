package world

// Master resolves the weak back-reference to the owning creature.
func (c *Creature) Master() *Creature {
	if c.masterID == 0 {
		return nil
	}
	return c.ws.CreatureByID(c.masterID)
}

// Summons resolves the owned summon list, skipping ids that no longer
// exist.
func (c *Creature) Summons() []*Creature {
	if len(c.summonIDs) == 0 {
		return nil
	}
	out := make([]*Creature, 0, len(c.summonIDs))
	for _, id := range c.summonIDs {
		if s := c.ws.CreatureByID(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c *Creature) SummonCount() int { return len(c.summonIDs) }

// SetMaster rebinds the master relationship, keeping both sides
// consistent within this one call: the new master's summon list gains the
// creature, the old master's loses it. Clearing an already absent master
// is reported as failure.
func (c *Creature) SetMaster(newMaster *Creature) bool {
	if newMaster == nil && c.masterID == 0 {
		return false
	}

	if newMaster != nil {
		newMaster.summonIDs = append(newMaster.summonIDs, c.ID)
	}

	oldMaster := c.Master()
	if newMaster != nil {
		c.masterID = newMaster.ID
	} else {
		c.masterID = 0
	}

	if oldMaster != nil {
		for i, id := range oldMaster.summonIDs {
			if id == c.ID {
				oldMaster.summonIDs = append(oldMaster.summonIDs[:i], oldMaster.summonIDs[i+1:]...)
				break
			}
		}
	}
	return true
}

// severSummons releases all owned summons on destruction: their targets
// are cleared and their master links dropped.
func (c *Creature) severSummons() {
	for _, summon := range c.Summons() {
		summon.SetAttackedCreature(nil)
		summon.masterID = 0
	}
	c.summonIDs = c.summonIDs[:0]
}
