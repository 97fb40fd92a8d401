// Package game drives episodes: it owns the entities and collectible state
// for the duration of one episode and wires the per-tick systems together.
package game

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/maze"
	"github.com/pthm-cable/muncher/policy"
	"github.com/pthm-cable/muncher/systems"
)

// State is the orchestrator state machine.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateTerminated
)

// Mode selects how the learner's intended direction is produced each tick.
type Mode uint8

const (
	// ModeLearn drives the learner from the value table with epsilon-greedy
	// selection and updates the table every tick.
	ModeLearn Mode = iota
	// ModeManual takes the intended direction from keyboard input and
	// bypasses the value store entirely.
	ModeManual
	// ModeHeuristic drives the learner purely from the weight-scored
	// heuristic path, as used by the evolutionary search.
	ModeHeuristic
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeHeuristic:
		return "heuristic"
	}
	return "learn"
}

// Outcome is the episode result record emitted on termination.
type Outcome struct {
	Episode     int
	Cause       components.Cause
	Ticks       int
	Score       int
	Pellets     int
	GhostsEaten int
	TotalReward float64
	Coverage    float64 // fraction of walkable cells visited
	Oscillation float64 // fraction of cell changes that were period-2 returns
}

// Options configures a Game.
type Options struct {
	Seed    int64
	Config  *config.Config
	Mode    Mode
	Weights systems.Weights // heuristic weights; also explore tie-breaker in ModeLearn
	Table   *policy.Table   // shared across episodes; created when nil in ModeLearn

	// OutcomeFunc receives the outcome record of every terminated episode.
	// Panics in the callback are recovered and logged so the training loop
	// never stalls.
	OutcomeFunc func(Outcome)
}

// oscWindow is the sliding window of recent learner cells used for
// period-2 oscillation detection.
const oscWindow = 32

// Game holds the complete per-episode world state plus the process-lifetime
// value table.
type Game struct {
	cfg     *config.Config
	grid    *maze.Grid
	pellets *maze.Pellets
	rng     *rand.Rand

	world *ecs.World

	learnerMapper *ecs.Map3[components.Position, components.Motion, components.Agent]
	ghostMapper   *ecs.Map3[components.Position, components.Motion, components.Ghost]

	posMap   *ecs.Map1[components.Position]
	motMap   *ecs.Map1[components.Motion]
	agentMap *ecs.Map1[components.Agent]
	ghostMap *ecs.Map1[components.Ghost]

	learner ecs.Entity
	ghosts  []ecs.Entity

	table       *policy.Table
	schedule    policy.Schedule
	params      policy.Params
	mode        Mode
	weights     systems.Weights
	outcomeFunc func(Outcome)

	state       State
	cause       components.Cause
	tick        int
	episode     int
	totalReward float64

	visited  map[maze.Point]bool
	cellHist []maze.Point
	oscCount int
	moves    int

	manualIntent components.Dir
	paused       bool
	stepsPerUpd  int
	restartWait  int
}

// NewGame builds a game from options and starts the first episode. A
// malformed maze is a fatal configuration error.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	grid, err := maze.Parse(cfg.Maze.Layout)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	table := opts.Table
	if table == nil {
		table = policy.NewTable()
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:     cfg,
		grid:    grid,
		pellets: maze.NewPellets(grid),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		world:   world,

		learnerMapper: ecs.NewMap3[components.Position, components.Motion, components.Agent](world),
		ghostMapper:   ecs.NewMap3[components.Position, components.Motion, components.Ghost](world),
		posMap:        ecs.NewMap1[components.Position](world),
		motMap:        ecs.NewMap1[components.Motion](world),
		agentMap:      ecs.NewMap1[components.Agent](world),
		ghostMap:      ecs.NewMap1[components.Ghost](world),

		table:       table,
		schedule:    policy.NewSchedule(cfg.Learning),
		mode:        opts.Mode,
		weights:     opts.Weights,
		outcomeFunc: opts.OutcomeFunc,
		stepsPerUpd: 1,
	}

	g.params = g.schedule.ParamsFor(1)

	if err := g.checkSpawns(); err != nil {
		return nil, err
	}

	g.Start()
	return g, nil
}

// checkSpawns validates the entity spawn configuration against the grid.
func (g *Game) checkSpawns() error {
	spawns := g.ghostSpawns()
	if len(spawns) == 0 {
		return nil
	}
	for _, p := range spawns {
		if g.grid.At(p.Col, p.Row) == maze.CellWall {
			return fmt.Errorf("game: ghost spawn (%d,%d) is a wall", p.Col, p.Row)
		}
	}
	return nil
}

// ghostSpawns returns the configured spawn override, or the den cells.
func (g *Game) ghostSpawns() []maze.Point {
	if len(g.cfg.Maze.GhostSpawns) > 0 {
		pts := make([]maze.Point, len(g.cfg.Maze.GhostSpawns))
		for i, s := range g.cfg.Maze.GhostSpawns {
			pts[i] = maze.Point{Col: s.Col, Row: s.Row}
		}
		return pts
	}
	return g.grid.DenSpawns()
}

// Start begins a new episode: Idle -> Running. Per-episode entity and
// collectible state is rebuilt; the value table is untouched.
func (g *Game) Start() {
	g.despawn()
	g.pellets.Reset()

	spawn := g.grid.Spawn()
	pos := components.Position{X: float64(spawn.Col), Y: float64(spawn.Row)}
	mot := components.Motion{Speed: g.cfg.Entity.LearnerSpeed}
	agent := components.Agent{}
	g.learner = g.learnerMapper.NewEntity(&pos, &mot, &agent)

	_, hasDoor := g.grid.Door()
	for i, home := range g.ghostSpawns() {
		pc := g.cfg.Ghosts[i%len(g.cfg.Ghosts)]
		gpos := components.Position{X: float64(home.Col), Y: float64(home.Row)}
		gmot := components.Motion{Speed: g.cfg.Entity.GhostSpeed}
		gh := components.Ghost{
			Personality: components.Personality{
				Directness: pc.Directness,
				Lookahead:  pc.Lookahead,
				Randomness: pc.Randomness,
			},
			Home:    home,
			Exiting: hasDoor && g.grid.At(home.Col, home.Row) == maze.CellDen,
		}
		g.ghosts = append(g.ghosts, g.ghostMapper.NewEntity(&gpos, &gmot, &gh))
	}

	g.state = StateRunning
	g.cause = components.CauseNone
	g.tick = 0
	g.episode++
	g.totalReward = 0
	g.manualIntent = components.DirNone
	g.visited = map[maze.Point]bool{spawn: true}
	g.cellHist = g.cellHist[:0]
	g.cellHist = append(g.cellHist, spawn)
	g.oscCount = 0
	g.moves = 0
}

// Reset discards all per-episode state and returns to Idle. Valid from any
// state; never touches the value table.
func (g *Game) Reset() {
	g.despawn()
	g.pellets.Reset()
	g.state = StateIdle
	g.cause = components.CauseNone
	g.tick = 0
}

func (g *Game) despawn() {
	if g.learner != (ecs.Entity{}) {
		g.learnerMapper.Remove(g.learner)
		g.learner = ecs.Entity{}
	}
	for _, e := range g.ghosts {
		g.ghostMapper.Remove(e)
	}
	g.ghosts = g.ghosts[:0]
}

// SetParams installs the learning parameters for subsequent ticks. The outer
// training loop calls this between episodes.
func (g *Game) SetParams(p policy.Params) { g.params = p }

// SetWeights installs heuristic weights, used by the evolutionary controller
// between evaluation episodes.
func (g *Game) SetWeights(w systems.Weights) { g.weights = w }

// SetManualIntent sets the keyboard-provided intended direction.
func (g *Game) SetManualIntent(d components.Dir) { g.manualIntent = d }

// Table returns the process-lifetime value table.
func (g *Game) Table() *policy.Table { return g.table }

// Grid returns the immutable maze.
func (g *Game) Grid() *maze.Grid { return g.grid }

// State returns the orchestrator state.
func (g *Game) State() State { return g.state }

// Cause returns the termination cause of the current episode, if terminated.
func (g *Game) Cause() components.Cause { return g.cause }

// Tick returns the tick index within the current episode.
func (g *Game) Tick() int { return g.tick }

// Episode returns the 1-based episode counter.
func (g *Game) Episode() int { return g.episode }
