// Package maze holds the static maze grid and movement legality checks.
package maze

import (
	"fmt"
)

// Cell is a maze cell type code.
type Cell uint8

const (
	CellWall Cell = iota
	CellOpen
	CellPellet
	CellPower
	CellDoor // den door: opaque except to an exiting ghost
	CellDen  // den interior
)

// Point is a grid coordinate.
type Point struct {
	Col, Row int
}

// Grid is an immutable rectangular maze. Cell centers sit at integer
// coordinates; continuous positions live in [-0.5, w-0.5) x [-0.5, h-0.5).
type Grid struct {
	w, h       int
	cells      []Cell
	spawn      Point
	denSpawns  []Point
	door       Point
	hasDoor    bool
	tunnelRows map[int]bool
	pellets    int
	walkable   int
}

// Parse builds a Grid from layout rows and validates it.
// Symbols: '#' wall, ' ' open, '.' pellet, 'o' power pellet, '-' den door,
// 'g' den interior (ghost spawn), 'S' learner spawn.
func Parse(layout []string) (*Grid, error) {
	h := len(layout)
	if h < 3 {
		return nil, fmt.Errorf("maze: layout has %d rows, need at least 3", h)
	}
	w := len(layout[0])
	if w < 3 {
		return nil, fmt.Errorf("maze: layout is %d columns wide, need at least 3", w)
	}

	g := &Grid{
		w:          w,
		h:          h,
		cells:      make([]Cell, w*h),
		tunnelRows: map[int]bool{},
	}

	spawnCount := 0
	for r, row := range layout {
		if len(row) != w {
			return nil, fmt.Errorf("maze: row %d has %d columns, want %d", r, len(row), w)
		}
		for c, ch := range []byte(row) {
			var cell Cell
			switch ch {
			case '#':
				cell = CellWall
			case ' ':
				cell = CellOpen
			case '.':
				cell = CellPellet
				g.pellets++
			case 'o':
				cell = CellPower
				g.pellets++
			case '-':
				cell = CellDoor
				g.door = Point{c, r}
				g.hasDoor = true
			case 'g':
				cell = CellDen
				g.denSpawns = append(g.denSpawns, Point{c, r})
			case 'S':
				cell = CellOpen
				g.spawn = Point{c, r}
				spawnCount++
			default:
				return nil, fmt.Errorf("maze: unknown symbol %q at (%d,%d)", ch, c, r)
			}
			g.cells[r*w+c] = cell
		}
	}

	if spawnCount != 1 {
		return nil, fmt.Errorf("maze: found %d learner spawns, want exactly 1", spawnCount)
	}
	if g.pellets == 0 {
		return nil, fmt.Errorf("maze: no pellets")
	}

	for r := 0; r < h; r++ {
		if g.Walkable(0, r) && g.Walkable(w-1, r) {
			g.tunnelRows[r] = true
		}
	}
	for c := 0; c < w; c++ {
		if g.walkableCell(g.at(c, 0)) || g.walkableCell(g.at(c, h-1)) {
			return nil, fmt.Errorf("maze: top/bottom boundary open at column %d", c)
		}
	}
	for r := 1; r < h-1; r++ {
		if g.tunnelRows[r] {
			continue
		}
		if g.walkableCell(g.at(0, r)) || g.walkableCell(g.at(w-1, r)) {
			return nil, fmt.Errorf("maze: side boundary open at row %d without matching tunnel exit", r)
		}
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if g.walkableCell(g.at(c, r)) {
				g.walkable++
			}
		}
	}

	if err := g.checkReachable(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkReachable runs a BFS from the spawn and rejects mazes with pellets the
// learner can never collect.
func (g *Grid) checkReachable() error {
	visited := make([]bool, g.w*g.h)
	queue := []Point{g.spawn}
	visited[g.spawn.Row*g.w+g.spawn.Col] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			c, r := p.Col+d[0], p.Row+d[1]
			if g.tunnelRows[p.Row] {
				if c < 0 {
					c = g.w - 1
				} else if c >= g.w {
					c = 0
				}
			}
			if c < 0 || c >= g.w || r < 0 || r >= g.h {
				continue
			}
			if visited[r*g.w+c] || !g.Walkable(c, r) {
				continue
			}
			visited[r*g.w+c] = true
			queue = append(queue, Point{c, r})
		}
	}

	for r := 0; r < g.h; r++ {
		for c := 0; c < g.w; c++ {
			cell := g.at(c, r)
			if (cell == CellPellet || cell == CellPower) && !visited[r*g.w+c] {
				return fmt.Errorf("maze: pellet at (%d,%d) unreachable from spawn", c, r)
			}
		}
	}

	if g.hasDoor {
		wp := g.ExitWaypoint()
		if !g.Walkable(wp.Col, wp.Row) || !visited[wp.Row*g.w+wp.Col] {
			return fmt.Errorf("maze: den exit waypoint (%d,%d) not reachable", wp.Col, wp.Row)
		}
	}
	return nil
}

func (g *Grid) at(c, r int) Cell {
	return g.cells[r*g.w+c]
}

// At returns the cell at (c,r); out-of-bounds coordinates read as wall.
func (g *Grid) At(c, r int) Cell {
	if c < 0 || c >= g.w || r < 0 || r >= g.h {
		return CellWall
	}
	return g.cells[r*g.w+c]
}

func (g *Grid) walkableCell(cell Cell) bool {
	return cell == CellOpen || cell == CellPellet || cell == CellPower
}

// Walkable reports whether entities may occupy (c,r) during normal movement.
// Den doors and den interiors are opaque; den-exit motion overrides this.
func (g *Grid) Walkable(c, r int) bool {
	return g.walkableCell(g.At(c, r))
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.w }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.h }

// Spawn returns the learner spawn cell.
func (g *Grid) Spawn() Point { return g.spawn }

// DenSpawns returns the den interior cells in layout order.
func (g *Grid) DenSpawns() []Point { return g.denSpawns }

// Door returns the den door cell, if the maze has one.
func (g *Grid) Door() (Point, bool) { return g.door, g.hasDoor }

// ExitWaypoint returns the open cell just above the den door, the target of
// den-exit motion.
func (g *Grid) ExitWaypoint() Point {
	return Point{g.door.Col, g.door.Row - 1}
}

// IsTunnelRow reports whether row r wraps horizontally.
func (g *Grid) IsTunnelRow(r int) bool { return g.tunnelRows[r] }

// WrapX wraps a continuous horizontal coordinate at the tunnel columns.
// Vertical wrap is never applied.
func (g *Grid) WrapX(x float64) float64 {
	w := float64(g.w)
	for x < -0.5 {
		x += w
	}
	for x >= w-0.5 {
		x -= w
	}
	return x
}

// PelletCount returns the number of collectible cells in the layout.
func (g *Grid) PelletCount() int { return g.pellets }

// WalkableCount returns the number of cells the learner can occupy.
func (g *Grid) WalkableCount() int { return g.walkable }
