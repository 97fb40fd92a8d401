package evolution

import (
	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/game"
)

// Fitness term weights. Pellet and bounty terms reward consumption, coverage
// rewards exploration breadth, the tick term penalizes wasted movement, and
// the oscillation penalty fires only when period-2 repetition dominates the
// episode's cell changes.
const (
	pelletValue      = 10.0
	bountyValue      = 50.0
	coverageValue    = 100.0
	clearBonus       = 200.0
	tickCost         = 0.05
	oscillationLimit = 0.5
	oscillationCost  = 100.0
)

// Fitness scores one evaluation episode. Deterministic in the outcome record.
func Fitness(out game.Outcome) float64 {
	f := float64(out.Pellets)*pelletValue + float64(out.GhostsEaten)*bountyValue
	f += out.Coverage * coverageValue
	f -= float64(out.Ticks) * tickCost
	if out.Cause == components.CauseCleared {
		f += clearBonus
	}
	if out.Oscillation > oscillationLimit {
		f -= oscillationCost
	}
	return f
}
