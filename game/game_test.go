package game

import (
	"testing"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/systems"
)

// testConfig returns the embedded defaults with the layout swapped for a
// small fixture maze and spawn overrides cleared.
func testConfig(layout []string) *config.Config {
	cfg := config.Default()
	cfg.Maze.Layout = layout
	cfg.Maze.GhostSpawns = nil
	return cfg
}

func mustGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := NewGame(opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func TestClearTerminatesEpisode(t *testing.T) {
	// Corridor with a single pellet one cell to the right of the spawn.
	cfg := testConfig([]string{
		"#####",
		"#S.##",
		"#####",
	})
	cfg.Entity.LearnerSpeed = 1.0

	var outcomes []Outcome
	g := mustGame(t, Options{
		Seed:        1,
		Config:      cfg,
		Mode:        ModeHeuristic,
		Weights:     systems.Weights{PelletPull: 1},
		OutcomeFunc: func(o Outcome) { outcomes = append(outcomes, o) },
	})

	out := g.RunEpisode(100)

	if out.Cause != components.CauseCleared {
		t.Fatalf("expected cleared, got %v", out.Cause)
	}
	if out.Ticks != 1 {
		t.Errorf("expected termination at tick 1, got %d", out.Ticks)
	}
	if out.Score != cfg.Score.Pellet {
		t.Errorf("expected score %d, got %d", cfg.Score.Pellet, out.Score)
	}
	if out.Coverage != 1.0 {
		t.Errorf("expected full coverage, got %f", out.Coverage)
	}
	if len(outcomes) != 1 {
		t.Errorf("expected 1 outcome callback, got %d", len(outcomes))
	}
	if g.State() != StateTerminated {
		t.Errorf("expected terminated state, got %v", g.State())
	}
}

func TestContactWithHostileGhostCaptures(t *testing.T) {
	cfg := testConfig([]string{
		"######",
		"#oS.##",
		"######",
	})
	// Static ghost parked on the learner spawn cell.
	cfg.Maze.GhostSpawns = []config.SpawnPoint{{Col: 2, Row: 1}}
	cfg.Entity.LearnerSpeed = 0.1
	cfg.Entity.GhostSpeed = 0

	g := mustGame(t, Options{Seed: 1, Config: cfg, Mode: ModeManual})
	g.SetManualIntent(components.DirRight)

	out := g.RunEpisode(10)

	if out.Cause != components.CauseCaptured {
		t.Fatalf("expected capture, got %v", out.Cause)
	}
	if out.Ticks != 1 {
		t.Errorf("expected capture on tick 1, got %d", out.Ticks)
	}
	if out.Score != 0 {
		t.Errorf("expected no score on capture, got %d", out.Score)
	}
}

func TestPowerPelletVulnerabilityWindow(t *testing.T) {
	cfg := testConfig([]string{
		"######",
		"#oS.##",
		"######",
	})
	cfg.Maze.GhostSpawns = []config.SpawnPoint{{Col: 3, Row: 1}}
	cfg.Entity.LearnerSpeed = 1.0
	cfg.Entity.GhostSpeed = 0
	cfg.Power.DurationTicks = 5

	g := mustGame(t, Options{Seed: 1, Config: cfg, Mode: ModeManual})
	g.SetManualIntent(components.DirLeft)

	// Tick 1 consumes the power pellet; the learner then idles against the
	// left wall.
	g.TickOnce()
	snap := g.Snapshot()
	if !snap.Ghosts[0].Vulnerable {
		t.Fatal("ghost should be vulnerable after power pellet")
	}
	if snap.Score != cfg.Score.PowerPellet {
		t.Errorf("expected score %d, got %d", cfg.Score.PowerPellet, snap.Score)
	}

	// Vulnerability holds through tick duration-1 and expires exactly at the
	// duration boundary.
	for g.Tick() < cfg.Power.DurationTicks-1 {
		g.TickOnce()
	}
	if !g.Snapshot().Ghosts[0].Vulnerable {
		t.Fatalf("ghost should still be vulnerable at tick %d", g.Tick())
	}
	g.TickOnce()
	if g.Snapshot().Ghosts[0].Vulnerable {
		t.Fatalf("ghost should no longer be vulnerable at tick %d", g.Tick())
	}
	if g.State() != StateRunning {
		t.Fatalf("episode should still be running, got %v", g.State())
	}
}

func TestVulnerableGhostConsumedBeforeClearCheck(t *testing.T) {
	cfg := testConfig([]string{
		"######",
		"#oS.##",
		"######",
	})
	cfg.Maze.GhostSpawns = []config.SpawnPoint{{Col: 3, Row: 1}}
	cfg.Entity.LearnerSpeed = 1.0
	cfg.Entity.GhostSpeed = 0
	cfg.Power.DurationTicks = 100

	g := mustGame(t, Options{Seed: 1, Config: cfg, Mode: ModeManual})

	// Left to the power pellet, then back right across the corridor onto the
	// ghost's cell, which also holds the last pellet.
	g.SetManualIntent(components.DirLeft)
	g.TickOnce()
	g.SetManualIntent(components.DirRight)
	g.TickOnce()
	done := g.TickOnce()

	if !done {
		t.Fatal("expected episode to terminate")
	}
	out := g.outcome()
	if out.Cause != components.CauseCleared {
		t.Fatalf("expected clearance to win the tick, got %v", out.Cause)
	}
	if out.GhostsEaten != 1 {
		t.Errorf("expected 1 ghost eaten, got %d", out.GhostsEaten)
	}
	want := cfg.Score.PowerPellet + cfg.Score.Pellet + cfg.Score.GhostBounty
	if out.Score != want {
		t.Errorf("expected score %d, got %d", want, out.Score)
	}
}

func TestTickCapEmitsOutcomeWithoutCause(t *testing.T) {
	cfg := testConfig([]string{
		"#######",
		"#S....#",
		"#######",
	})
	cfg.Entity.LearnerSpeed = 0.1

	calls := 0
	g := mustGame(t, Options{
		Seed:        1,
		Config:      cfg,
		Mode:        ModeManual, // no intent set, learner never moves
		OutcomeFunc: func(Outcome) { calls++ },
	})

	out := g.RunEpisode(3)

	if out.Cause != components.CauseNone {
		t.Errorf("expected no terminal cause, got %v", out.Cause)
	}
	if out.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", out.Ticks)
	}
	if calls != 1 {
		t.Errorf("expected 1 outcome callback, got %d", calls)
	}
	if g.State() != StateTerminated {
		t.Errorf("expected terminated state, got %v", g.State())
	}
}

func TestOutcomeCallbackPanicIsRecovered(t *testing.T) {
	cfg := testConfig([]string{
		"#####",
		"#S.##",
		"#####",
	})
	cfg.Entity.LearnerSpeed = 1.0

	g := mustGame(t, Options{
		Seed:        1,
		Config:      cfg,
		Mode:        ModeHeuristic,
		Weights:     systems.Weights{PelletPull: 1},
		OutcomeFunc: func(Outcome) { panic("collector exploded") },
	})

	out := g.RunEpisode(100)
	if out.Cause != components.CauseCleared {
		t.Fatalf("expected cleared despite callback panic, got %v", out.Cause)
	}

	// The orchestrator must stay usable for the next episode.
	g.Start()
	if g.State() != StateRunning {
		t.Errorf("expected running after restart, got %v", g.State())
	}
}

func TestResetPreservesValueTable(t *testing.T) {
	cfg := testConfig([]string{
		"#####",
		"#S.##",
		"#####",
	})
	cfg.Entity.LearnerSpeed = 1.0

	g := mustGame(t, Options{Seed: 1, Config: cfg, Mode: ModeLearn})
	g.RunEpisode(100)

	if g.Table().Len() == 0 {
		t.Fatal("expected value table entries after a learning episode")
	}
	states := g.Table().Len()

	g.Reset()
	if g.State() != StateIdle {
		t.Errorf("expected idle after reset, got %v", g.State())
	}
	if g.Cause() != components.CauseNone {
		t.Errorf("expected no cause after reset, got %v", g.Cause())
	}
	if g.Table().Len() != states {
		t.Errorf("reset changed the value table: %d -> %d", states, g.Table().Len())
	}

	g.Start()
	if g.State() != StateRunning {
		t.Errorf("expected running after start, got %v", g.State())
	}
	snap := g.Snapshot()
	if snap.Tick != 0 {
		t.Errorf("expected tick 0 in new episode, got %d", snap.Tick)
	}
	if snap.Remaining != g.Grid().PelletCount() {
		t.Errorf("expected pellets restored to %d, got %d", g.Grid().PelletCount(), snap.Remaining)
	}
}

func TestGhostSpawnOnWallRejected(t *testing.T) {
	cfg := testConfig([]string{
		"#####",
		"#S.##",
		"#####",
	})
	cfg.Maze.GhostSpawns = []config.SpawnPoint{{Col: 0, Row: 0}}

	if _, err := NewGame(Options{Seed: 1, Config: cfg}); err == nil {
		t.Fatal("expected error for ghost spawn on a wall")
	}
}

func TestEpisodesAreReproducibleWithSeed(t *testing.T) {
	run := func() Outcome {
		g := mustGame(t, Options{Seed: 42, Config: config.Default(), Mode: ModeLearn})
		return g.RunEpisode(500)
	}

	a := run()
	b := run()
	if a != b {
		t.Errorf("same seed produced different outcomes:\n%+v\n%+v", a, b)
	}
}
