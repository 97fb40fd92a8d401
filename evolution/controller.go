package evolution

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/systems"
)

// Individual is one population member: a weight vector and the result of its
// single evaluation episode.
type Individual struct {
	Weights systems.Weights
	Fitness float64
	Pellets int
	Score   int
}

// Controller runs the generational search. Evaluation itself is delegated so
// the controller stays independent of the episode machinery.
type Controller struct {
	cfg        config.EvolutionConfig
	rng        *rand.Rand
	pop        []Individual
	generation int
	best       Individual
	hasBest    bool
}

// NewController builds a controller with a fully random initial population.
func NewController(cfg config.EvolutionConfig, seed int64) *Controller {
	c := &Controller{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		pop: make([]Individual, cfg.Population),
	}
	for i := range c.pop {
		c.pop[i] = Individual{Weights: Random(c.rng)}
	}
	return c
}

// Generation returns the 0-based generation index.
func (c *Controller) Generation() int { return c.generation }

// Population returns the current generation's individuals.
func (c *Controller) Population() []Individual { return c.pop }

// Best returns the best individual seen across all generations.
func (c *Controller) Best() (Individual, bool) { return c.best, c.hasBest }

// Evaluate scores every individual with the supplied episode evaluator, in
// slot order. Episodes run strictly sequentially.
func (c *Controller) Evaluate(eval func(systems.Weights) (fitness float64, pellets, score int)) {
	for i := range c.pop {
		f, pellets, score := eval(c.pop[i].Weights)
		c.pop[i].Fitness = f
		c.pop[i].Pellets = pellets
		c.pop[i].Score = score
		if !c.hasBest || f > c.best.Fitness {
			c.best = c.pop[i]
			c.hasBest = true
		}
	}
}

// bestIndex returns the slot of the generation's fittest individual.
func (c *Controller) bestIndex() int {
	best := 0
	for i := 1; i < len(c.pop); i++ {
		if c.pop[i].Fitness > c.pop[best].Fitness {
			best = i
		}
	}
	return best
}

// tournamentSize grows with the generation index, sharpening selection
// pressure as the search converges.
func (c *Controller) tournamentSize() int {
	size := c.cfg.TournamentBase
	if c.cfg.TournamentGrow > 0 {
		size += c.generation / c.cfg.TournamentGrow
	}
	if size > len(c.pop) {
		size = len(c.pop)
	}
	return size
}

// selectParent runs one tournament over the evaluated population.
func (c *Controller) selectParent() Individual {
	size := c.tournamentSize()
	best := c.pop[c.rng.Intn(len(c.pop))]
	for i := 1; i < size; i++ {
		cand := c.pop[c.rng.Intn(len(c.pop))]
		if cand.Fitness > best.Fitness {
			best = cand
		}
	}
	return best
}

// crossover combines two parents, weighting by relative fitness: either a
// continuous blend of both vectors or a per-gene discrete pick.
func (c *Controller) crossover(a, b Individual) systems.Weights {
	// Shift so the weaker parent still gets a non-zero share.
	low := math.Min(a.Fitness, b.Fitness)
	fa := a.Fitness - low + 1
	fb := b.Fitness - low + 1
	t := fa / (fa + fb)

	va, vb := a.Weights.Vector(), b.Weights.Vector()
	var v [5]float64
	if c.rng.Float64() < c.cfg.CrossoverBlend {
		for i := range v {
			v[i] = t*va[i] + (1-t)*vb[i]
		}
	} else {
		for i := range v {
			if c.rng.Float64() < t {
				v[i] = va[i]
			} else {
				v[i] = vb[i]
			}
		}
	}
	return Clamp(systems.WeightsFromVector(v))
}

// diversityFactor measures population spread on one sampled gene and maps it
// to a mutation multiplier: a collapsed population mutates up to twice as
// hard, a well-spread one at the base rate.
func (c *Controller) diversityFactor() float64 {
	gene := c.rng.Intn(len(Genes))
	vals := make([]float64, len(c.pop))
	for i, ind := range c.pop {
		vals[i] = ind.Weights.Vector()[gene]
	}
	spread := stat.StdDev(vals, nil) / Range(gene)
	if math.IsNaN(spread) {
		spread = 0
	}
	if spread > 1 {
		spread = 1
	}
	return 2 - spread
}

// mutate applies per-gene gaussian mutation scaled by sigma and each gene's
// range, then clamps.
func (c *Controller) mutate(w systems.Weights, sigma float64) systems.Weights {
	v := w.Vector()
	for i := range v {
		if c.rng.Float64() < c.cfg.MutationRate {
			v[i] += c.rng.NormFloat64() * sigma * Range(i)
		}
	}
	return Clamp(systems.WeightsFromVector(v))
}

// injectCount is the number of fully random individuals for this generation,
// decaying exponentially from the configured initial count.
func (c *Controller) injectCount() int {
	if c.cfg.InjectDecay <= 0 {
		return 0
	}
	n := c.cfg.InjectInitial * math.Exp(-float64(c.generation)/c.cfg.InjectDecay)
	return int(math.Round(n))
}

// Next replaces the population with the next generation. Slot 0 always holds
// the generation's best individual unmodified; the following slots hold its
// light mutants, then tournament offspring, then random injections.
func (c *Controller) Next() {
	sigma := c.cfg.MutationSigma *
		math.Pow(c.cfg.MutationDecay, float64(c.generation)) *
		c.diversityFactor()

	elite := c.pop[c.bestIndex()]
	next := make([]Individual, 0, len(c.pop))
	next = append(next, Individual{Weights: elite.Weights})

	for i := 0; i < c.cfg.EliteMutants && len(next) < len(c.pop); i++ {
		next = append(next, Individual{Weights: c.mutate(elite.Weights, sigma/2)})
	}

	inject := c.injectCount()
	for len(next) < len(c.pop)-inject {
		child := c.crossover(c.selectParent(), c.selectParent())
		next = append(next, Individual{Weights: c.mutate(child, sigma)})
	}
	for len(next) < len(c.pop) {
		next = append(next, Individual{Weights: Random(c.rng)})
	}

	c.pop = next
	c.generation++
}
