package game

import (
	"log/slog"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/maze"
	"github.com/pthm-cable/muncher/systems"
)

// ghostStates collects mutable per-ghost component pointers in spawn order.
func (g *Game) ghostStates() []systems.GhostState {
	states := make([]systems.GhostState, len(g.ghosts))
	for i, e := range g.ghosts {
		states[i] = systems.GhostState{
			Pos:   g.posMap.Get(e),
			Mot:   g.motMap.Get(e),
			Ghost: g.ghostMap.Get(e),
		}
	}
	return states
}

// ghostViews builds the read-only adversary summaries for encoding and
// steering at the current tick.
func (g *Game) ghostViews() []systems.GhostView {
	views := make([]systems.GhostView, len(g.ghosts))
	for i, e := range g.ghosts {
		gh := g.ghostMap.Get(e)
		pos := g.posMap.Get(e)
		views[i] = systems.GhostView{
			Pos:        *pos,
			Vulnerable: gh.VulnerableAt(g.tick),
			Exiting:    gh.Exiting,
		}
	}
	return views
}

func (g *Game) encode() systems.Key {
	pos := g.posMap.Get(g.learner)
	mot := g.motMap.Get(g.learner)
	return systems.Encode(g.grid, g.pellets, *pos, mot.Dir, g.ghostViews())
}

// selectIntent produces the learner's intended direction for this tick.
func (g *Game) selectIntent(key systems.Key, legal []components.Dir) components.Dir {
	pos := g.posMap.Get(g.learner)
	switch g.mode {
	case ModeManual:
		return g.manualIntent
	case ModeHeuristic:
		return systems.HeuristicBest(g.grid, g.pellets, *pos, legal, g.ghostViews(), g.weights, g.wasVisited)
	default:
		var explore func([]components.Dir) components.Dir
		if !g.weights.IsZero() {
			// Heuristic scoring breaks exploration ties instead of a
			// uniform draw.
			explore = func(l []components.Dir) components.Dir {
				return systems.HeuristicBest(g.grid, g.pellets, *pos, l, g.ghostViews(), g.weights, g.wasVisited)
			}
		}
		return g.table.SelectAction(key, legal, g.params, g.rng, explore)
	}
}

func (g *Game) wasVisited(c, r int) bool {
	return g.visited[maze.Point{Col: c, Row: r}]
}

// trackLearnerCell updates the visited set and the oscillation window after
// learner kinematics.
func (g *Game) trackLearnerCell() {
	pos := g.posMap.Get(g.learner)
	c, r := pos.Cell()
	cell := maze.Point{Col: c, Row: r}

	last := g.cellHist[len(g.cellHist)-1]
	if cell == last {
		return
	}
	g.visited[cell] = true
	g.moves++
	if len(g.cellHist) >= 2 && g.cellHist[len(g.cellHist)-2] == cell {
		g.oscCount++
	}
	g.cellHist = append(g.cellHist, cell)
	if len(g.cellHist) > oscWindow {
		g.cellHist = g.cellHist[1:]
	}
}

// stepGhosts advances all adversaries one tick.
func (g *Game) stepGhosts() {
	learnerPos := g.posMap.Get(g.learner)
	limit := g.cfg.Entity.BlockedTickLimit

	for _, e := range g.ghosts {
		pos := g.posMap.Get(e)
		mot := g.motMap.Get(e)
		gh := g.ghostMap.Get(e)

		if gh.Exiting {
			if systems.ExitStep(g.grid, pos, g.cfg.Entity.GhostSpeed) {
				gh.Exiting = false
				mot.Dir = systems.ForcedTurn(g.grid, *pos, g.rng)
			}
			continue
		}

		vulnerable := gh.VulnerableAt(g.tick)
		mot.Speed = g.cfg.Entity.GhostSpeed
		if vulnerable {
			mot.Speed *= g.cfg.Entity.VulnerableFactor
		}

		want := systems.GhostDecide(g.grid, *pos, *mot, gh, *learnerPos, vulnerable, g.rng)
		if gh.BlockedTicks > limit {
			// Liveness escape: break deadlocks with a random legal turn.
			want = systems.ForcedTurn(g.grid, *pos, g.rng)
			gh.BlockedTicks = 0
		}

		if _, moved := systems.Step(g.grid, pos, mot, want); moved {
			gh.BlockedTicks = 0
		} else {
			gh.BlockedTicks++
		}
	}
}

// TickOnce runs one atomic simulation tick: observe, select, step, detect,
// reward, update. Returns true when the episode has terminated.
func (g *Game) TickOnce() bool {
	if g.state != StateRunning {
		return true
	}

	key := g.encode()
	lpos := g.posMap.Get(g.learner)
	lmot := g.motMap.Get(g.learner)
	agent := g.agentMap.Get(g.learner)

	c, r := lpos.Cell()
	legal := systems.LegalDirs(g.grid, c, r)
	intent := g.selectIntent(key, legal)
	prevFrame := systems.Frame{Score: agent.Score}

	action, _ := systems.Step(g.grid, lpos, lmot, intent)
	g.trackLearnerCell()
	g.stepGhosts()

	ev := systems.Resolve(g.grid, g.pellets, lpos, agent, g.ghostStates(), g.tick, g.cfg)
	cause := ev.Cause()

	nextFrame := systems.Frame{Score: agent.Score, Cause: cause}
	reward := systems.Reward(prevFrame, nextFrame, g.cfg.Reward)
	g.totalReward += reward

	if g.mode == ModeLearn {
		nextKey := g.encode()
		nc, nr := lpos.Cell()
		nextLegal := systems.LegalDirs(g.grid, nc, nr)
		g.table.Update(key, action, reward, nextKey, nextLegal, cause != components.CauseNone, g.params)
	}

	g.tick++
	if cause != components.CauseNone {
		g.state = StateTerminated
		g.cause = cause
		g.emitOutcome(g.outcome())
		return true
	}
	return false
}

// outcome builds the episode result record.
func (g *Game) outcome() Outcome {
	agent := g.agentMap.Get(g.learner)
	coverage := 0.0
	if n := g.grid.WalkableCount(); n > 0 {
		coverage = float64(len(g.visited)) / float64(n)
	}
	oscillation := 0.0
	if g.moves > 0 {
		oscillation = float64(g.oscCount) / float64(g.moves)
	}
	return Outcome{
		Episode:     g.episode,
		Cause:       g.cause,
		Ticks:       g.tick,
		Score:       agent.Score,
		Pellets:     agent.PelletsEaten,
		GhostsEaten: agent.GhostsEaten,
		TotalReward: g.totalReward,
		Coverage:    coverage,
		Oscillation: oscillation,
	}
}

// emitOutcome reports the episode result to the external collaborator.
// Collaborator failures must not stall the training loop: panics are
// recovered and logged, and the orchestrator stays usable for the next
// Start.
func (g *Game) emitOutcome(out Outcome) {
	if g.outcomeFunc == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("outcome callback failed, continuing", "error", r, "episode", out.Episode)
		}
	}()
	g.outcomeFunc(out)
}

// RunEpisode runs the current episode to termination or the tick cap,
// starting a fresh one first if needed. A cap expiry terminates with
// CauseNone and still emits an outcome.
func (g *Game) RunEpisode(maxTicks int) Outcome {
	if g.state != StateRunning {
		g.Start()
	}
	for !g.TickOnce() {
		if maxTicks > 0 && g.tick >= maxTicks {
			g.state = StateTerminated
			g.cause = components.CauseNone
			out := g.outcome()
			g.emitOutcome(out)
			return out
		}
	}
	return g.outcome()
}
