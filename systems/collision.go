package systems

import (
	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/maze"
)

// GhostState bundles mutable adversary state for collision resolution.
type GhostState struct {
	Pos   *components.Position
	Mot   *components.Motion
	Ghost *components.Ghost
}

// Events summarizes the collision results of one tick.
type Events struct {
	PelletEaten bool
	PowerEaten  bool
	GhostsEaten int
	Captured    bool
	Cleared     bool
}

// Cause returns the terminal cause signaled by the events, if any.
// A clearance and a capture on the same tick resolve as a clearance, since
// pickup processing precedes contact checks.
func (e Events) Cause() components.Cause {
	switch {
	case e.Cleared:
		return components.CauseCleared
	case e.Captured:
		return components.CauseCaptured
	}
	return components.CauseNone
}

// Resolve runs the per-tick collision pass after kinematics: collectible
// pickup at the learner's cell, learner-ghost contact, and the terminal
// conditions. Consumed vulnerable ghosts reset to their den spawn with
// vulnerability cleared. Clearance is checked every tick after pickups,
// independent of capture.
func Resolve(g *maze.Grid, pel *maze.Pellets, learner *components.Position, agent *components.Agent, ghosts []GhostState, tick int, cfg *config.Config) Events {
	var ev Events

	c, r := learner.Cell()
	if kind, ok := pel.Consume(c, r); ok {
		agent.PelletsEaten++
		switch kind {
		case maze.CellPellet:
			agent.Score += cfg.Score.Pellet
			ev.PelletEaten = true
		case maze.CellPower:
			agent.Score += cfg.Score.PowerPellet
			ev.PowerEaten = true
			for _, gh := range ghosts {
				gh.Ghost.VulnerableUntil = tick + cfg.Power.DurationTicks
			}
		}
	}

	for _, gh := range ghosts {
		if learner.DistanceTo(*gh.Pos) >= cfg.Entity.ContactRadius {
			continue
		}
		if gh.Ghost.VulnerableAt(tick) {
			agent.Score += cfg.Score.GhostBounty
			agent.GhostsEaten++
			ev.GhostsEaten++

			home := gh.Ghost.Home
			gh.Pos.X, gh.Pos.Y = float64(home.Col), float64(home.Row)
			gh.Mot.Dir = components.DirNone
			gh.Ghost.VulnerableUntil = 0
			_, hasDoor := g.Door()
			gh.Ghost.Exiting = hasDoor && g.At(home.Col, home.Row) == maze.CellDen
			gh.Ghost.BlockedTicks = 0
		} else {
			ev.Captured = true
		}
	}

	if pel.Remaining() == 0 {
		ev.Cleared = true
	}
	return ev
}
