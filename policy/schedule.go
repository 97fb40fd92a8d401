package policy

import (
	"math"

	"github.com/pthm-cable/muncher/config"
)

// Schedule derives per-episode learning parameters from the configured
// training schedule. The value store itself is agnostic to it.
type Schedule struct {
	cfg config.LearningConfig
}

// NewSchedule builds a schedule from the learning config.
func NewSchedule(cfg config.LearningConfig) Schedule {
	return Schedule{cfg: cfg}
}

// ParamsFor returns the parameters for a 1-based episode index. Exploration
// decays multiplicatively toward the configured floor; alpha and gamma are
// fixed.
func (s Schedule) ParamsFor(episode int) Params {
	eps := s.cfg.Epsilon * math.Pow(s.cfg.EpsilonDecay, float64(episode-1))
	if eps < s.cfg.EpsilonMin {
		eps = s.cfg.EpsilonMin
	}
	return Params{
		Epsilon: eps,
		Alpha:   s.cfg.Alpha,
		Gamma:   s.cfg.Gamma,
		Clamp:   s.cfg.ValueClamp,
	}
}
