package world

// PlayerState is the player-kind extension of a creature.
type PlayerState struct {
	// ExpLossPercent of total experience forfeited on death.
	ExpLossPercent int32

	SeesGhosts bool

	// ParalysisDeflection values of worn items, summed into the chance
	// to bounce an incoming paralysis back at its caster.
	DeflectionItems []int32

	// attacked tracks players this one aggressed without provocation,
	// for unjustified-kill classification.
	attacked map[uint32]struct{}
}

func newPlayerState() *PlayerState {
	return &PlayerState{
		ExpLossPercent: 10,
		attacked:       make(map[uint32]struct{}),
	}
}

func (p *PlayerState) markAttacked(id uint32)   { p.attacked[id] = struct{}{} }
func (p *PlayerState) unmarkAttacked(id uint32) { delete(p.attacked, id) }

func (p *PlayerState) HasAttacked(id uint32) bool {
	_, ok := p.attacked[id]
	return ok
}

// paralysisDeflection sums the deflection values of worn items.
func (p *PlayerState) paralysisDeflection() int32 {
	var chance int32
	for _, v := range p.DeflectionItems {
		chance += v
	}
	return chance
}
