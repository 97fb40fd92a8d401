package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/muncher/components"
)

// GhostSnapshot is a read-only view of one adversary at a tick boundary.
type GhostSnapshot struct {
	Pos        components.Position
	Dir        components.Dir
	Vulnerable bool
	Exiting    bool
}

// Snapshot is a read-only view of the whole game at a tick boundary, used by
// rendering and tests. It copies; mutating it has no effect on the game.
type Snapshot struct {
	Tick        int
	Episode     int
	State       State
	Cause       components.Cause
	Score       int
	Pellets     int
	GhostsEaten int
	Remaining   int
	TotalReward float64
	Epsilon     float64
	States      int

	LearnerPos components.Position
	LearnerDir components.Dir
	Ghosts     []GhostSnapshot
}

// Snapshot captures the current tick-boundary state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:        g.tick,
		Episode:     g.episode,
		State:       g.state,
		Cause:       g.cause,
		Remaining:   g.pellets.Remaining(),
		TotalReward: g.totalReward,
		Epsilon:     g.params.Epsilon,
		States:      g.table.Len(),
	}
	if g.learner == (ecs.Entity{}) {
		return s
	}
	agent := g.agentMap.Get(g.learner)
	s.Score = agent.Score
	s.Pellets = agent.PelletsEaten
	s.GhostsEaten = agent.GhostsEaten
	s.LearnerPos = *g.posMap.Get(g.learner)
	s.LearnerDir = g.motMap.Get(g.learner).Dir

	s.Ghosts = make([]GhostSnapshot, len(g.ghosts))
	for i, e := range g.ghosts {
		gh := g.ghostMap.Get(e)
		s.Ghosts[i] = GhostSnapshot{
			Pos:        *g.posMap.Get(e),
			Dir:        g.motMap.Get(e).Dir,
			Vulnerable: gh.VulnerableAt(g.tick),
			Exiting:    gh.Exiting,
		}
	}
	return s
}

// HasPellet reports whether the collectible at (c, r) is still present.
// Rendering helper.
func (g *Game) HasPellet(c, r int) bool { return g.pellets.Has(c, r) }
