package systems

import (
	"math/rand"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/maze"
)

// Weights are the non-learned direction-scoring coefficients. The
// evolutionary search mutates these; the learner uses them for exploration
// tie-breaking.
type Weights struct {
	PelletPull float64
	PowerPull  float64
	GhostAvoid float64
	HuntPull   float64
	Explore    float64
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Vector returns the genes in canonical order.
func (w Weights) Vector() [5]float64 {
	return [5]float64{w.PelletPull, w.PowerPull, w.GhostAvoid, w.HuntPull, w.Explore}
}

// WeightsFromVector is the inverse of Vector.
func WeightsFromVector(v [5]float64) Weights {
	return Weights{PelletPull: v[0], PowerPull: v[1], GhostAvoid: v[2], HuntPull: v[3], Explore: v[4]}
}

// GhostView is a read-only adversary summary consumed by steering, encoding
// and snapshots.
type GhostView struct {
	Pos        components.Position
	Vulnerable bool
	Exiting    bool
}

// rayDistance walks up to lookahead cells from (c,r) in direction d and
// returns the distance from the endpoint to target.
func rayDistance(g *maze.Grid, c, r int, d components.Dir, lookahead int, target components.Position) float64 {
	for i := 0; i < lookahead; i++ {
		if !neighborWalkable(g, c, r, d) {
			break
		}
		c, r = neighborCell(g, c, r, d)
	}
	p := components.Position{X: float64(c), Y: float64(r)}
	return p.DistanceTo(target)
}

// GhostDecide picks the intended direction for a non-exiting ghost. With
// probability Randomness the turn is a uniform legal one; otherwise candidate
// directions are scored by straight-line lookahead toward the learner (away
// from it while vulnerable), with Directness blending pursuit against
// keeping the current heading. Reversal is excluded unless it is the only
// option.
func GhostDecide(g *maze.Grid, pos components.Position, mot components.Motion, gh *components.Ghost, learner components.Position, vulnerable bool, rng *rand.Rand) components.Dir {
	c, r := pos.Cell()
	legal := LegalDirs(g, c, r)
	if len(legal) == 0 {
		return components.DirNone
	}

	if mot.Dir != components.DirNone && len(legal) > 1 {
		filtered := legal[:0:len(legal)]
		for _, d := range legal {
			if d != mot.Dir.Opposite() {
				filtered = append(filtered, d)
			}
		}
		if len(filtered) > 0 {
			legal = filtered
		}
	}

	p := gh.Personality
	if rng.Float64() < p.Randomness {
		return legal[rng.Intn(len(legal))]
	}

	best := legal[0]
	bestScore := ghostDirScore(g, c, r, legal[0], mot.Dir, p, learner, vulnerable)
	for _, d := range legal[1:] {
		if s := ghostDirScore(g, c, r, d, mot.Dir, p, learner, vulnerable); s > bestScore {
			best, bestScore = d, s
		}
	}
	return best
}

func ghostDirScore(g *maze.Grid, c, r int, d, cur components.Dir, p components.Personality, learner components.Position, vulnerable bool) float64 {
	lookahead := p.Lookahead
	if lookahead < 1 {
		lookahead = 1
	}
	dist := rayDistance(g, c, r, d, lookahead, learner)
	pursuit := -dist
	if vulnerable {
		pursuit = dist
	}
	persist := 0.0
	if d == cur {
		persist = 1
	}
	return p.Directness*pursuit + (1-p.Directness)*persist
}

// ForcedTurn returns a uniformly random legal direction, the liveness escape
// for a ghost blocked past the consecutive-tick limit.
func ForcedTurn(g *maze.Grid, pos components.Position, rng *rand.Rand) components.Dir {
	c, r := pos.Cell()
	legal := LegalDirs(g, c, r)
	if len(legal) == 0 {
		return components.DirNone
	}
	return legal[rng.Intn(len(legal))]
}

// pelletPull scans up to four cells in direction d and returns 1/k for the
// nearest un-consumed collectible of the wanted kind at distance k.
func pelletPull(g *maze.Grid, pel *maze.Pellets, c, r int, d components.Dir, want maze.Cell) float64 {
	for i := 1; i <= 4; i++ {
		if !neighborWalkable(g, c, r, d) {
			return 0
		}
		c, r = neighborCell(g, c, r, d)
		if g.At(c, r) == want && !pel.Consumed(c, r) {
			return 1 / float64(i)
		}
	}
	return 0
}

// HeuristicBest scores each legal direction with w and returns the highest
// scorer, ties to the earliest candidate. visited reports whether the learner
// already entered a cell this episode.
func HeuristicBest(g *maze.Grid, pel *maze.Pellets, pos components.Position, legal []components.Dir, ghosts []GhostView, w Weights, visited func(c, r int) bool) components.Dir {
	if len(legal) == 0 {
		return components.DirNone
	}
	c, r := pos.Cell()

	best := legal[0]
	bestScore := 0.0
	for i, d := range legal {
		tc, tr := neighborCell(g, c, r, d)
		target := components.Position{X: float64(tc), Y: float64(tr)}

		score := w.PelletPull * pelletPull(g, pel, c, r, d, maze.CellPellet)
		score += w.PowerPull * pelletPull(g, pel, c, r, d, maze.CellPower)

		for _, gv := range ghosts {
			if gv.Exiting {
				continue
			}
			prox := 1 / (1 + target.DistanceTo(gv.Pos))
			if gv.Vulnerable {
				score += w.HuntPull * prox
			} else {
				score -= w.GhostAvoid * prox
			}
		}

		if visited != nil && !visited(tc, tr) {
			score += w.Explore
		}

		if i == 0 || score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}
