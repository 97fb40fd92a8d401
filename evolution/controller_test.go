package evolution

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/game"
	"github.com/pthm-cable/muncher/systems"
)

func testEvoConfig() config.EvolutionConfig {
	return config.EvolutionConfig{
		Population:     10,
		EliteMutants:   2,
		TournamentBase: 3,
		TournamentGrow: 5,
		CrossoverBlend: 0.5,
		MutationRate:   0.3,
		MutationSigma:  0.1,
		MutationDecay:  0.98,
		InjectInitial:  2,
		InjectDecay:    4,
		MaxTicks:       1000,
	}
}

func TestElitismPreservesDominantIndividual(t *testing.T) {
	c := NewController(testEvoConfig(), 7)

	// One individual strictly dominates; its weights must reappear unchanged
	// in the next generation's first slot.
	dominant := systems.Weights{PelletPull: 3.3, GhostAvoid: 2.2, Explore: 1.1}
	for i := range c.pop {
		c.pop[i].Fitness = 1
	}
	c.pop[4].Weights = dominant
	c.pop[4].Fitness = 1000

	c.Next()

	if c.Population()[0].Weights != dominant {
		t.Fatalf("elite slot holds %+v, want %+v", c.Population()[0].Weights, dominant)
	}
	if c.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", c.Generation())
	}
}

func TestNextGenerationStaysInGeneRanges(t *testing.T) {
	c := NewController(testEvoConfig(), 3)
	c.Evaluate(func(w systems.Weights) (float64, int, int) {
		return w.PelletPull, 0, 0
	})

	for gen := 0; gen < 5; gen++ {
		c.Next()
		for slot, ind := range c.Population() {
			v := ind.Weights.Vector()
			for i, spec := range Genes {
				if v[i] < spec.Min || v[i] > spec.Max {
					t.Fatalf("gen %d slot %d gene %s out of range: %f", gen, slot, spec.Name, v[i])
				}
			}
		}
		c.Evaluate(func(w systems.Weights) (float64, int, int) {
			return w.PelletPull, 0, 0
		})
	}
}

func TestPopulationSizeIsStable(t *testing.T) {
	cfg := testEvoConfig()
	c := NewController(cfg, 1)
	for gen := 0; gen < 10; gen++ {
		c.Evaluate(func(systems.Weights) (float64, int, int) { return 0, 0, 0 })
		c.Next()
		if len(c.Population()) != cfg.Population {
			t.Fatalf("gen %d population %d, want %d", gen, len(c.Population()), cfg.Population)
		}
	}
}

func TestInjectionDecays(t *testing.T) {
	c := NewController(testEvoConfig(), 1)
	first := c.injectCount()
	c.generation = 20
	later := c.injectCount()
	if first < later {
		t.Errorf("injection grew over generations: %d -> %d", first, later)
	}
	if later != 0 {
		t.Errorf("expected injection to decay to 0 by generation 20, got %d", later)
	}
}

func TestTournamentSizeGrows(t *testing.T) {
	c := NewController(testEvoConfig(), 1)
	base := c.tournamentSize()
	c.generation = 10
	grown := c.tournamentSize()
	if grown <= base {
		t.Errorf("tournament size did not grow: %d -> %d", base, grown)
	}
	c.generation = 1000
	if s := c.tournamentSize(); s > len(c.pop) {
		t.Errorf("tournament size %d exceeds population %d", s, len(c.pop))
	}
}

func TestClampForcesGenesIntoRange(t *testing.T) {
	w := Clamp(systems.Weights{PelletPull: 99, PowerPull: -5, GhostAvoid: 3, HuntPull: 100, Explore: -1})
	want := systems.Weights{PelletPull: 4, PowerPull: 0, GhostAvoid: 3, HuntPull: 4, Explore: 0}
	if w != want {
		t.Errorf("got %+v, want %+v", w, want)
	}
}

func TestRandomRespectsRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for n := 0; n < 100; n++ {
		v := Random(rng).Vector()
		for i, spec := range Genes {
			if v[i] < spec.Min || v[i] > spec.Max {
				t.Fatalf("gene %s out of range: %f", spec.Name, v[i])
			}
		}
	}
}

func TestFitnessIsDeterministic(t *testing.T) {
	out := game.Outcome{
		Cause:       components.CauseCleared,
		Ticks:       500,
		Pellets:     40,
		GhostsEaten: 2,
		Coverage:    0.8,
		Oscillation: 0.1,
	}
	if Fitness(out) != Fitness(out) {
		t.Fatal("fitness not deterministic for identical outcomes")
	}
}

func TestFitnessPenalizesOscillation(t *testing.T) {
	smooth := game.Outcome{Pellets: 10, Ticks: 100, Oscillation: 0.2}
	jittery := smooth
	jittery.Oscillation = 0.9
	if Fitness(jittery) >= Fitness(smooth) {
		t.Errorf("oscillating run should score lower: %f vs %f", Fitness(jittery), Fitness(smooth))
	}
}

func TestFitnessRewardsConsumptionAndCoverage(t *testing.T) {
	base := game.Outcome{Pellets: 5, Ticks: 200, Coverage: 0.2}
	better := game.Outcome{Pellets: 20, Ticks: 200, Coverage: 0.6, GhostsEaten: 1}
	if Fitness(better) <= Fitness(base) {
		t.Errorf("stronger run should score higher: %f vs %f", Fitness(better), Fitness(base))
	}
}
