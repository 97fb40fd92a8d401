// Package systems implements the per-tick simulation logic: kinematics,
// adversary steering, collision resolution, state encoding, and reward.
package systems

import (
	"math"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/maze"
)

// neighborCell returns the cell one step from (c,r) in direction d, applying
// tunnel wrap on wrapping rows.
func neighborCell(g *maze.Grid, c, r int, d components.Dir) (int, int) {
	dx, dy := d.Delta()
	nc, nr := c+dx, r+dy
	if dy == 0 && g.IsTunnelRow(r) {
		if nc < 0 {
			nc = g.Width() - 1
		} else if nc >= g.Width() {
			nc = 0
		}
	}
	return nc, nr
}

// neighborWalkable reports whether the cell one step from (c,r) in direction d
// is legal to enter.
func neighborWalkable(g *maze.Grid, c, r int, d components.Dir) bool {
	nc, nr := neighborCell(g, c, r, d)
	return g.Walkable(nc, nr)
}

// LegalDirs returns the directions from cell (c,r) that do not lead into a
// wall, in canonical action order.
func LegalDirs(g *maze.Grid, c, r int) []components.Dir {
	legal := make([]components.Dir, 0, 4)
	for _, d := range components.Actions {
		if neighborWalkable(g, c, r, d) {
			legal = append(legal, d)
		}
	}
	return legal
}

// Step advances an entity one tick toward intended, honoring wall legality.
// A direction change is accepted only within the center tolerance of a cell
// (reversals excepted), with the perpendicular coordinate snapped to the grid
// to prevent drift. Returns the applied direction and whether the entity
// moved. Horizontal tunnel wrap is applied unconditionally; vertical wrap
// never.
func Step(g *maze.Grid, pos *components.Position, mot *components.Motion, intended components.Dir) (components.Dir, bool) {
	tol := mot.Speed/2 + 1e-9
	c, r := pos.Cell()
	centered := math.Abs(pos.X-float64(c)) <= tol && math.Abs(pos.Y-float64(r)) <= tol

	if intended != components.DirNone && intended != mot.Dir {
		if mot.Dir != components.DirNone && intended == mot.Dir.Opposite() {
			// Reversal stays on the current corridor axis, no center needed.
			mot.Dir = intended
		} else if centered && neighborWalkable(g, c, r, intended) {
			pos.X, pos.Y = float64(c), float64(r)
			mot.Dir = intended
		}
	}

	if mot.Dir == components.DirNone {
		return components.DirNone, false
	}

	dx, dy := mot.Dir.Delta()
	nx := pos.X + float64(dx)*mot.Speed
	ny := pos.Y + float64(dy)*mot.Speed

	if !neighborWalkable(g, c, r, mot.Dir) {
		// Wall ahead: never travel past the current cell center.
		cx, cy := float64(c), float64(r)
		if dx > 0 && nx > cx || dx < 0 && nx < cx {
			nx = cx
		}
		if dy > 0 && ny > cy || dy < 0 && ny < cy {
			ny = cy
		}
	}

	moved := nx != pos.X || ny != pos.Y
	pos.X, pos.Y = nx, ny
	if g.IsTunnelRow(r) {
		pos.X = g.WrapX(pos.X)
	}
	return mot.Dir, moved
}

// ExitStep moves an exiting ghost toward the den exit waypoint, overriding
// normal wall logic: horizontal motion to the door column first, then
// vertical motion up through the door. Returns true once the waypoint is
// reached and normal movement resumes.
func ExitStep(g *maze.Grid, pos *components.Position, speed float64) bool {
	wp := g.ExitWaypoint()
	tx, ty := float64(wp.Col), float64(wp.Row)

	if d := tx - pos.X; math.Abs(d) > 1e-9 {
		step := math.Copysign(math.Min(speed, math.Abs(d)), d)
		pos.X += step
		return false
	}
	pos.X = tx

	if d := ty - pos.Y; math.Abs(d) > 1e-9 {
		step := math.Copysign(math.Min(speed, math.Abs(d)), d)
		pos.Y += step
	}
	if math.Abs(pos.Y-ty) <= 1e-9 {
		pos.Y = ty
		return true
	}
	return false
}
