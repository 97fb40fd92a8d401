package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
)

func rewardConfig() config.RewardConfig {
	return config.RewardConfig{
		ScoreScale:     0.1,
		SurvivalBonus:  0.01,
		StepCost:       0.05,
		CapturePenalty: 50,
		ClearBonus:     100,
	}
}

func TestRewardIsPure(t *testing.T) {
	cfg := rewardConfig()
	prev := Frame{Score: 30}
	next := Frame{Score: 40, Cause: components.CauseNone}

	a := Reward(prev, next, cfg)
	b := Reward(prev, next, cfg)
	if a != b {
		t.Fatalf("identical transitions produced %f and %f", a, b)
	}
}

func TestRewardTerms(t *testing.T) {
	cfg := rewardConfig()

	cases := []struct {
		name string
		prev Frame
		next Frame
		want float64
	}{
		{
			name: "plain step",
			prev: Frame{Score: 0},
			next: Frame{Score: 0},
			want: 0.01 - 0.05,
		},
		{
			name: "pellet gain",
			prev: Frame{Score: 0},
			next: Frame{Score: 10},
			want: 1.0 + 0.01 - 0.05,
		},
		{
			name: "capture",
			prev: Frame{Score: 10},
			next: Frame{Score: 10, Cause: components.CauseCaptured},
			want: 0.01 - 0.05 - 50,
		},
		{
			name: "clearance",
			prev: Frame{Score: 90},
			next: Frame{Score: 100, Cause: components.CauseCleared},
			want: 1.0 + 0.01 - 0.05 + 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reward(tc.prev, tc.next, cfg)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
		})
	}
}

func TestRewardNonFiniteCollapsesToZero(t *testing.T) {
	cfg := rewardConfig()
	cfg.ClearBonus = math.Inf(1)
	r := Reward(Frame{}, Frame{Cause: components.CauseCleared}, cfg)
	if r != 0 {
		t.Errorf("expected 0 for non-finite reward, got %f", r)
	}

	cfg.ClearBonus = math.NaN()
	r = Reward(Frame{}, Frame{Cause: components.CauseCleared}, cfg)
	if r != 0 {
		t.Errorf("expected 0 for NaN reward, got %f", r)
	}
}
