package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/game"
	"github.com/pthm-cable/muncher/policy"
	"github.com/pthm-cable/muncher/systems"
	"github.com/pthm-cable/muncher/telemetry"
)

// progressWindow is the number of recent episodes aggregated into each
// progress log line.
const progressWindow = 100

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run training without graphics")
	episodes := flag.Int("episodes", 1000, "Episodes to train in headless mode")
	maxTicks := flag.Int("max-ticks", 10000, "Per-episode tick cap (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	qtablePath := flag.String("qtable", "", "Value table JSON to load before and save after training")
	manual := flag.Bool("manual", false, "Start in manual keyboard control")
	heuristic := flag.Bool("heuristic", false, "Drive the learner purely by heuristic weights")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	mode := game.ModeLearn
	if *manual {
		mode = game.ModeManual
	} else if *heuristic {
		mode = game.ModeHeuristic
	}

	weights := systems.Weights{
		PelletPull: cfg.Heuristics.PelletPull,
		PowerPull:  cfg.Heuristics.PowerPull,
		GhostAvoid: cfg.Heuristics.GhostAvoid,
		HuntPull:   cfg.Heuristics.HuntPull,
		Explore:    cfg.Heuristics.Explore,
	}

	table := policy.NewTable()
	if *qtablePath != "" {
		if f, err := os.Open(*qtablePath); err == nil {
			err = table.Load(f)
			f.Close()
			if err != nil {
				slog.Error("failed to load value table", "path", *qtablePath, "error", err)
				os.Exit(1)
			}
			slog.Info("loaded value table", "path", *qtablePath, "states", table.Len())
		} else if !os.IsNotExist(err) {
			slog.Error("failed to open value table", "path", *qtablePath, "error", err)
			os.Exit(1)
		}
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
	}

	window := telemetry.NewWindow(progressWindow)

	var g *game.Game
	g, err = game.NewGame(game.Options{
		Seed:    rngSeed,
		Config:  cfg,
		Mode:    mode,
		Weights: weights,
		Table:   table,
		OutcomeFunc: func(o game.Outcome) {
			snap := g.Snapshot()
			window.Add(o)
			if err := out.WriteEpisode(telemetry.NewEpisodeRecord(o, snap.Epsilon, snap.States)); err != nil {
				slog.Error("failed to write episode record", "error", err)
			}
			if cfg.Telemetry.LogEvery > 0 && o.Episode%cfg.Telemetry.LogEvery == 0 {
				window.Stats().LogStats(o.Episode, snap.Epsilon, snap.States)
			}
		},
	})
	if err != nil {
		slog.Error("failed to build game", "error", err)
		os.Exit(1)
	}

	saveTable := func() {
		if err := out.WriteTable(g.Table()); err != nil {
			slog.Error("failed to write value table", "error", err)
		}
		if *qtablePath == "" {
			return
		}
		f, err := os.Create(*qtablePath)
		if err != nil {
			slog.Error("failed to create value table file", "path", *qtablePath, "error", err)
			return
		}
		defer f.Close()
		if err := g.Table().Save(f); err != nil {
			slog.Error("failed to save value table", "path", *qtablePath, "error", err)
		}
	}

	if *headless {
		// Headless mode - pure CPU training loop, no raylib needed
		schedule := policy.NewSchedule(cfg.Learning)

		slog.Info("starting headless training",
			"seed", rngSeed,
			"mode", mode.String(),
			"episodes", *episodes,
			"max_ticks", *maxTicks,
		)

		for ep := 1; ep <= *episodes; ep++ {
			g.SetParams(schedule.ParamsFor(ep))
			g.RunEpisode(*maxTicks)
		}

		slog.Info("training complete", "episodes", *episodes, "states", g.Table().Len())
		saveTable()
		return
	}

	// Graphical mode
	width := int32(g.Grid().Width() * cfg.Screen.CellSize)
	height := int32(g.Grid().Height()*cfg.Screen.CellSize + cfg.Screen.HUDHeight)
	rl.InitWindow(width, height, "Muncher")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
	saveTable()
}
