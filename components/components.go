// Package components defines ECS components for the maze simulation.
package components

import (
	"math"

	"github.com/pthm-cable/muncher/maze"
)

// Dir is a grid-aligned movement direction.
type Dir uint8

const (
	DirNone Dir = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Actions enumerates the four discrete actions in their canonical order.
// Tie-breaking in action selection follows this order.
var Actions = [4]Dir{DirUp, DirDown, DirLeft, DirRight}

// Delta returns the per-cell displacement of d.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Index returns the action slot of d in [0,4), or -1 for DirNone.
func (d Dir) Index() int {
	if d == DirNone {
		return -1
	}
	return int(d) - 1
}

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "U"
	case DirDown:
		return "D"
	case DirLeft:
		return "L"
	case DirRight:
		return "R"
	}
	return "-"
}

// ParseDir is the inverse of Dir.String.
func ParseDir(s string) Dir {
	switch s {
	case "U":
		return DirUp
	case "D":
		return DirDown
	case "L":
		return DirLeft
	case "R":
		return DirRight
	}
	return DirNone
}

// Cause is an episode termination cause.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseCaptured
	CauseCleared
)

func (c Cause) String() string {
	switch c {
	case CauseCaptured:
		return "captured"
	case CauseCleared:
		return "cleared"
	}
	return "running"
}

// Position is a continuous position in cell units. The center of grid cell
// (c,r) is exactly (float64(c), float64(r)).
type Position struct {
	X, Y float64
}

// Cell returns the grid cell the position rounds to. Rounding is half-up so
// the tunnel seam at x = -0.5 resolves to column 0, not out of bounds.
func (p Position) Cell() (int, int) {
	return int(math.Floor(p.X + 0.5)), int(math.Floor(p.Y + 0.5))
}

// DistanceTo returns the Euclidean distance to q in cell units.
func (p Position) DistanceTo(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Motion holds an entity's movement state.
type Motion struct {
	Dir   Dir     // current travel direction
	Speed float64 // cells per tick
}

// Agent marks the learner and carries its per-episode bookkeeping.
type Agent struct {
	Score        int
	PelletsEaten int
	GhostsEaten  int
}

// Personality holds the per-ghost behavior parameters.
type Personality struct {
	Directness float64
	Lookahead  int
	Randomness float64
}

// Ghost marks an adversary.
type Ghost struct {
	Personality Personality
	Home        maze.Point // den spawn cell, reset target when consumed

	// Exiting: motion toward the den exit waypoint overrides wall logic.
	Exiting bool

	// VulnerableUntil is the first tick at which vulnerability has expired;
	// zero means never vulnerable. Expiry is a plain tick comparison, so an
	// episode reset invalidates it for free.
	VulnerableUntil int

	// BlockedTicks counts consecutive ticks without movement, for the
	// deadlock-breaking forced turn.
	BlockedTicks int
}

// VulnerableAt reports whether the ghost is vulnerable at the given tick.
func (g *Ghost) VulnerableAt(tick int) bool {
	return tick < g.VulnerableUntil
}
