package systems

import (
	"fmt"
	"math"
	"strings"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/maze"
)

// NeighborTag is the coarse content classification of a neighbor cell.
type NeighborTag uint8

const (
	TagWall NeighborTag = iota
	TagEmpty
	TagPellet
	TagPower
)

var tagChars = [4]byte{'W', 'E', 'P', 'O'}

// Distance buckets for ghost cues.
const (
	BucketNear = 0
	BucketMid  = 1
	BucketFar  = 2

	nearLimit = 3.0
	midLimit  = 7.0
)

// GhostCue summarizes the nearest adversary of one class relative to the
// learner: coarse direction octant and bucketed distance.
type GhostCue struct {
	Present bool
	Octant  uint8 // 0..7, octant 0 pointing right, counter-clockwise negative-y up
	Bucket  uint8
}

// Key is the discretized state representation indexing the value table.
// It is a pure function of current world state; two identical world states
// always encode to the same Key.
type Key struct {
	Col, Row  int16
	Dir       components.Dir
	Neighbors [4]NeighborTag // in Actions order: up, down, left, right
	Hostile   GhostCue
	Fright    GhostCue
}

func classify(g *maze.Grid, pel *maze.Pellets, c, r int) NeighborTag {
	switch g.At(c, r) {
	case maze.CellPellet:
		if !pel.Consumed(c, r) {
			return TagPellet
		}
		return TagEmpty
	case maze.CellPower:
		if !pel.Consumed(c, r) {
			return TagPower
		}
		return TagEmpty
	case maze.CellOpen:
		return TagEmpty
	}
	return TagWall
}

func cueFor(learner components.Position, ghosts []GhostView, vulnerable bool) GhostCue {
	bestDist := math.Inf(1)
	var best components.Position
	found := false
	for _, gv := range ghosts {
		if gv.Vulnerable != vulnerable || gv.Exiting {
			continue
		}
		if d := learner.DistanceTo(gv.Pos); d < bestDist {
			bestDist, best, found = d, gv.Pos, true
		}
	}
	if !found {
		return GhostCue{}
	}

	angle := math.Atan2(best.Y-learner.Y, best.X-learner.X)
	oct := int(math.Round(angle/(math.Pi/4))) % 8
	if oct < 0 {
		oct += 8
	}

	bucket := BucketFar
	if bestDist < nearLimit {
		bucket = BucketNear
	} else if bestDist < midLimit {
		bucket = BucketMid
	}
	return GhostCue{Present: true, Octant: uint8(oct), Bucket: uint8(bucket)}
}

// Encode projects the current world state into a Key. The bucketed relative
// ghost encoding keeps the state space small enough for tabular learning to
// make progress within on the order of a hundred episodes.
func Encode(g *maze.Grid, pel *maze.Pellets, learner components.Position, dir components.Dir, ghosts []GhostView) Key {
	c, r := learner.Cell()
	k := Key{Col: int16(c), Row: int16(r), Dir: dir}
	for i, d := range components.Actions {
		nc, nr := neighborCell(g, c, r, d)
		k.Neighbors[i] = classify(g, pel, nc, nr)
	}
	k.Hostile = cueFor(learner, ghosts, false)
	k.Fright = cueFor(learner, ghosts, true)
	return k
}

func (cue GhostCue) encode() string {
	if !cue.Present {
		return "-"
	}
	return fmt.Sprintf("%d%d", cue.Octant, cue.Bucket)
}

// String returns the stable serialization form of the key, used for value
// table persistence. ParseKey is its inverse.
func (k Key) String() string {
	var tags [4]byte
	for i, t := range k.Neighbors {
		tags[i] = tagChars[t]
	}
	return fmt.Sprintf("%d,%d;%s;%s;%s;%s",
		k.Col, k.Row, k.Dir, tags[:], k.Hostile.encode(), k.Fright.encode())
}

func parseCue(s string) (GhostCue, error) {
	if s == "-" {
		return GhostCue{}, nil
	}
	if len(s) != 2 || s[0] < '0' || s[0] > '7' || s[1] < '0' || s[1] > '2' {
		return GhostCue{}, fmt.Errorf("bad ghost cue %q", s)
	}
	return GhostCue{Present: true, Octant: s[0] - '0', Bucket: s[1] - '0'}, nil
}

// ParseKey reconstructs a Key from its String form.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 5 {
		return Key{}, fmt.Errorf("state key %q: want 5 fields, got %d", s, len(parts))
	}

	var k Key
	var col, row int
	if _, err := fmt.Sscanf(parts[0], "%d,%d", &col, &row); err != nil {
		return Key{}, fmt.Errorf("state key %q: %w", s, err)
	}
	k.Col, k.Row = int16(col), int16(row)
	k.Dir = components.ParseDir(parts[1])

	if len(parts[2]) != 4 {
		return Key{}, fmt.Errorf("state key %q: bad neighbor tags", s)
	}
	for i := 0; i < 4; i++ {
		found := false
		for t, ch := range tagChars {
			if parts[2][i] == ch {
				k.Neighbors[i] = NeighborTag(t)
				found = true
				break
			}
		}
		if !found {
			return Key{}, fmt.Errorf("state key %q: bad neighbor tag %q", s, parts[2][i])
		}
	}

	var err error
	if k.Hostile, err = parseCue(parts[3]); err != nil {
		return Key{}, fmt.Errorf("state key %q: %w", s, err)
	}
	if k.Fright, err = parseCue(parts[4]); err != nil {
		return Key{}, fmt.Errorf("state key %q: %w", s, err)
	}
	return k, nil
}
