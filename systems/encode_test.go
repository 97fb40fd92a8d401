package systems

import (
	"testing"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/maze"
)

func encodeGrid(t *testing.T) (*maze.Grid, *maze.Pellets) {
	g := mustParse(t, []string{
		"#######",
		"#o....#",
		"#.###.#",
		"#S....#",
		"#######",
	})
	return g, maze.NewPellets(g)
}

func TestEncodeIsDeterministic(t *testing.T) {
	g, pel := encodeGrid(t)
	learner := components.Position{X: 2, Y: 3}
	ghosts := []GhostView{{Pos: components.Position{X: 5, Y: 1}}}

	a := Encode(g, pel, learner, components.DirRight, ghosts)
	b := Encode(g, pel, learner, components.DirRight, ghosts)
	if a != b {
		t.Fatalf("identical states encoded differently:\n%v\n%v", a, b)
	}
}

func TestEncodeNeighborTags(t *testing.T) {
	g, pel := encodeGrid(t)

	// At (1,1): up wall, down pellet, left wall, right pellet; the cell
	// itself is the power pellet but only neighbors are encoded.
	k := Encode(g, pel, components.Position{X: 1, Y: 1}, components.DirNone, nil)
	want := [4]NeighborTag{TagWall, TagPellet, TagWall, TagPellet}
	if k.Neighbors != want {
		t.Errorf("neighbors %v, want %v", k.Neighbors, want)
	}

	// Consuming the pellet below flips its tag to empty.
	if _, ok := pel.Consume(1, 2); !ok {
		t.Fatal("consume failed")
	}
	k = Encode(g, pel, components.Position{X: 1, Y: 1}, components.DirNone, nil)
	if k.Neighbors[components.DirDown.Index()] != TagEmpty {
		t.Errorf("consumed neighbor still tagged %v", k.Neighbors[components.DirDown.Index()])
	}
}

func TestEncodeGhostCues(t *testing.T) {
	g, pel := encodeGrid(t)
	learner := components.Position{X: 1, Y: 3}

	// Hostile ghost 2 cells to the right: octant 0, near bucket.
	k := Encode(g, pel, learner, components.DirNone, []GhostView{
		{Pos: components.Position{X: 3, Y: 3}},
	})
	if !k.Hostile.Present || k.Hostile.Octant != 0 || k.Hostile.Bucket != BucketNear {
		t.Errorf("hostile cue %+v", k.Hostile)
	}
	if k.Fright.Present {
		t.Errorf("unexpected fright cue %+v", k.Fright)
	}

	// A vulnerable ghost feeds the fright cue instead; exiting ghosts are
	// invisible to both.
	k = Encode(g, pel, learner, components.DirNone, []GhostView{
		{Pos: components.Position{X: 5, Y: 3}, Vulnerable: true},
		{Pos: components.Position{X: 2, Y: 3}, Exiting: true},
	})
	if k.Hostile.Present {
		t.Errorf("exiting ghost produced hostile cue %+v", k.Hostile)
	}
	if !k.Fright.Present || k.Fright.Bucket != BucketMid {
		t.Errorf("fright cue %+v", k.Fright)
	}
}

func TestEncodeNearestGhostWins(t *testing.T) {
	g, pel := encodeGrid(t)
	learner := components.Position{X: 1, Y: 3}

	k := Encode(g, pel, learner, components.DirNone, []GhostView{
		{Pos: components.Position{X: 1, Y: 1}}, // distance 2, straight up
		{Pos: components.Position{X: 5, Y: 3}}, // distance 4
	})
	// Octant 6 points up (negative y).
	if k.Hostile.Octant != 6 || k.Hostile.Bucket != BucketNear {
		t.Errorf("expected nearest ghost cue (octant 6, near), got %+v", k.Hostile)
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	keys := []Key{
		{},
		{
			Col: 9, Row: 3, Dir: components.DirLeft,
			Neighbors: [4]NeighborTag{TagWall, TagPellet, TagEmpty, TagPower},
			Hostile:   GhostCue{Present: true, Octant: 5, Bucket: BucketMid},
			Fright:    GhostCue{Present: true, Octant: 0, Bucket: BucketFar},
		},
		{Col: -1, Row: 0, Dir: components.DirUp},
	}

	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("round trip %q: got %+v, want %+v", k.String(), got, k)
		}
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"1,2;U;WWWW;-",        // missing field
		"x,2;U;WWWW;-;-",      // bad coordinates
		"1,2;U;WWW;-;-",       // short tags
		"1,2;U;WXWW;-;-",      // unknown tag
		"1,2;U;WWWW;9;-",      // bad cue length
		"1,2;U;WWWW;83;-",     // octant out of range
		"1,2;U;WWWW;05;-",     // bucket out of range
		"1,2;U;WWWW;-;-;more", // extra field
	}
	for _, s := range bad {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) accepted malformed input", s)
		}
	}
}
