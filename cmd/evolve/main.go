// Package main runs the evolutionary search over heuristic steering weights:
// one full headless episode per individual, generational selection, and CSV
// logging of the search trajectory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/evolution"
	"github.com/pthm-cable/muncher/game"
	"github.com/pthm-cable/muncher/systems"
	"github.com/pthm-cable/muncher/telemetry"
)

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	generations := flag.Int("generations", 50, "Number of generations to run")
	maxTicks := flag.Int("max-ticks", 0, "Per-episode tick cap (0 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	tickCap := *maxTicks
	if tickCap == 0 {
		tickCap = cfg.Evolution.MaxTicks
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

	ctrl := evolution.NewController(cfg.Evolution, rngSeed)

	slog.Info("starting evolutionary search",
		"seed", rngSeed,
		"population", cfg.Evolution.Population,
		"generations", *generations,
		"max_ticks", tickCap,
	)
	start := time.Now()

	for gen := 0; gen < *generations; gen++ {
		slot := 0
		ctrl.Evaluate(func(w systems.Weights) (float64, int, int) {
			g, err := game.NewGame(game.Options{
				Seed:    rngSeed + int64(gen)*1000 + int64(slot),
				Config:  cfg,
				Mode:    game.ModeHeuristic,
				Weights: w,
			})
			if err != nil {
				slog.Error("failed to build evaluation episode", "error", err)
				os.Exit(1)
			}
			slot++
			o := g.RunEpisode(tickCap)
			return evolution.Fitness(o), o.Pellets, o.Score
		})

		pop := ctrl.Population()
		fitnesses := make([]float64, len(pop))
		best := 0
		for i, ind := range pop {
			fitnesses[i] = ind.Fitness
			if ind.Fitness > pop[best].Fitness {
				best = i
			}
		}
		genes := pop[best].Weights.Vector()
		rec := telemetry.GenerationRecord{
			Generation:  gen,
			BestFitness: pop[best].Fitness,
			MeanFitness: stat.Mean(fitnesses, nil),
			FitnessStd:  stat.StdDev(fitnesses, nil),
			BestScore:   pop[best].Score,
			BestPellets: pop[best].Pellets,
			PelletPull:  genes[0],
			PowerPull:   genes[1],
			GhostAvoid:  genes[2],
			HuntPull:    genes[3],
			Explore:     genes[4],
		}
		if err := out.WriteGeneration(rec); err != nil {
			slog.Error("failed to write generation record", "error", err)
		}

		elapsed := time.Since(start)
		avgPerGen := elapsed / time.Duration(gen+1)
		remaining := time.Duration(*generations-gen-1) * avgPerGen
		fmt.Printf("Gen %d/%d: best=%.1f mean=%.1f std=%.1f | elapsed: %s, ETA: %s\n",
			gen+1, *generations, rec.BestFitness, rec.MeanFitness, rec.FitnessStd,
			formatDuration(elapsed), formatDuration(remaining))

		ctrl.Next()
	}

	bestInd, ok := ctrl.Best()
	if !ok {
		slog.Error("no individual was ever evaluated")
		os.Exit(1)
	}

	totalTime := time.Since(start)
	fmt.Printf("\nSearch complete after %d generations in %s\n", *generations, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.1f\n", bestInd.Fitness)
	fmt.Println("\nBest weights:")
	genes := bestInd.Weights.Vector()
	for i, spec := range evolution.Genes {
		fmt.Printf("  %s: %.4f\n", spec.Name, genes[i])
	}

	if *outputDir != "" {
		bestCfg, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to reload base config", "error", err)
			os.Exit(1)
		}
		bestCfg.Heuristics = config.HeuristicsConfig{
			PelletPull: bestInd.Weights.PelletPull,
			PowerPull:  bestInd.Weights.PowerPull,
			GhostAvoid: bestInd.Weights.GhostAvoid,
			HuntPull:   bestInd.Weights.HuntPull,
			Explore:    bestInd.Weights.Explore,
		}
		configOut := filepath.Join(*outputDir, "best_config.yaml")
		if err := bestCfg.WriteYAML(configOut); err != nil {
			slog.Error("failed to write best config", "error", err)
		} else {
			fmt.Printf("\nBest config saved to: %s\n", configOut)
		}
	}
}
