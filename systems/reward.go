package systems

import (
	"math"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
)

// Frame is the per-tick observation pair the reward function consumes.
type Frame struct {
	Score int
	Cause components.Cause
}

// Reward converts a world-state transition into a scalar signal: newly gained
// score scaled down, a small survival bonus, a small step cost, and the large
// terminal terms. Pure and stateless; identical frame pairs always produce
// identical output. A non-finite result collapses to zero so it can never
// poison the value table.
func Reward(prev, next Frame, cfg config.RewardConfig) float64 {
	r := float64(next.Score-prev.Score)*cfg.ScoreScale + cfg.SurvivalBonus - cfg.StepCost
	switch next.Cause {
	case components.CauseCaptured:
		r -= cfg.CapturePenalty
	case components.CauseCleared:
		r += cfg.ClearBonus
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
