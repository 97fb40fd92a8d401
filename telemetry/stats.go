package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/game"
)

// EpisodeRecord is one row of episodes.csv.
type EpisodeRecord struct {
	Episode     int     `csv:"episode"`
	Cause       string  `csv:"cause"`
	Ticks       int     `csv:"ticks"`
	Score       int     `csv:"score"`
	Pellets     int     `csv:"pellets"`
	GhostsEaten int     `csv:"ghosts_eaten"`
	TotalReward float64 `csv:"total_reward"`
	Coverage    float64 `csv:"coverage"`
	Oscillation float64 `csv:"oscillation"`
	Epsilon     float64 `csv:"epsilon"`
	States      int     `csv:"states"`
}

// NewEpisodeRecord flattens an episode outcome plus the learning context into
// a CSV row.
func NewEpisodeRecord(out game.Outcome, epsilon float64, states int) EpisodeRecord {
	return EpisodeRecord{
		Episode:     out.Episode,
		Cause:       out.Cause.String(),
		Ticks:       out.Ticks,
		Score:       out.Score,
		Pellets:     out.Pellets,
		GhostsEaten: out.GhostsEaten,
		TotalReward: out.TotalReward,
		Coverage:    out.Coverage,
		Oscillation: out.Oscillation,
		Epsilon:     epsilon,
		States:      states,
	}
}

// GenerationRecord is one row of generations.csv, written by the evolutionary
// search. The gene columns hold the generation's best weight vector.
type GenerationRecord struct {
	Generation  int     `csv:"generation"`
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	FitnessStd  float64 `csv:"fitness_std"`
	BestScore   int     `csv:"best_score"`
	BestPellets int     `csv:"best_pellets"`
	PelletPull  float64 `csv:"pellet_pull"`
	PowerPull   float64 `csv:"power_pull"`
	GhostAvoid  float64 `csv:"ghost_avoid"`
	HuntPull    float64 `csv:"hunt_pull"`
	Explore     float64 `csv:"explore"`
}

// WindowStats holds aggregated statistics over a sliding episode window.
type WindowStats struct {
	Episodes     int
	MeanScore    float64
	ScoreStd     float64
	MeanTicks    float64
	MeanReward   float64
	MeanCoverage float64
	ClearRate    float64
	CaptureRate  float64
}

// Window keeps the most recent episode outcomes for progress aggregation.
type Window struct {
	size int
	outs []game.Outcome
}

// NewWindow creates a sliding window of the given size.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size}
}

// Add appends an outcome, evicting the oldest past the window size.
func (w *Window) Add(out game.Outcome) {
	w.outs = append(w.outs, out)
	if len(w.outs) > w.size {
		w.outs = w.outs[1:]
	}
}

// Stats aggregates the current window contents.
func (w *Window) Stats() WindowStats {
	n := len(w.outs)
	if n == 0 {
		return WindowStats{}
	}

	scores := make([]float64, n)
	ticks := make([]float64, n)
	rewards := make([]float64, n)
	coverage := make([]float64, n)
	clears, captures := 0, 0
	for i, o := range w.outs {
		scores[i] = float64(o.Score)
		ticks[i] = float64(o.Ticks)
		rewards[i] = o.TotalReward
		coverage[i] = o.Coverage
		switch o.Cause {
		case components.CauseCleared:
			clears++
		case components.CauseCaptured:
			captures++
		}
	}

	s := WindowStats{
		Episodes:     n,
		MeanScore:    stat.Mean(scores, nil),
		MeanTicks:    stat.Mean(ticks, nil),
		MeanReward:   stat.Mean(rewards, nil),
		MeanCoverage: stat.Mean(coverage, nil),
		ClearRate:    float64(clears) / float64(n),
		CaptureRate:  float64(captures) / float64(n),
	}
	if n > 1 {
		s.ScoreStd = stat.StdDev(scores, nil)
	}
	return s
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats(episode int, epsilon float64, states int) {
	slog.Info("progress",
		"episode", episode,
		"window", s.Episodes,
		"mean_score", s.MeanScore,
		"score_std", s.ScoreStd,
		"mean_ticks", s.MeanTicks,
		"mean_reward", s.MeanReward,
		"mean_coverage", s.MeanCoverage,
		"clear_rate", s.ClearRate,
		"capture_rate", s.CaptureRate,
		"epsilon", epsilon,
		"states", states,
	)
}
