// Package evolution implements the population search over heuristic steering
// weights. It is independent of the tabular value store; the two mechanisms
// never run in the same process loop.
package evolution

import (
	"math/rand"

	"github.com/pthm-cable/muncher/systems"
)

// GeneSpec defines the legal range of a single weight gene.
type GeneSpec struct {
	Name string
	Min  float64
	Max  float64
}

// Genes is the fixed gene layout of a weight vector, in the canonical order
// of systems.Weights.Vector.
var Genes = [5]GeneSpec{
	{Name: "pellet_pull", Min: 0, Max: 4},
	{Name: "power_pull", Min: 0, Max: 4},
	{Name: "ghost_avoid", Min: 0, Max: 8},
	{Name: "hunt_pull", Min: 0, Max: 4},
	{Name: "explore", Min: 0, Max: 2},
}

// Range returns the width of gene i's legal interval.
func Range(i int) float64 { return Genes[i].Max - Genes[i].Min }

// Clamp forces every gene of w into its legal range.
func Clamp(w systems.Weights) systems.Weights {
	v := w.Vector()
	for i, spec := range Genes {
		if v[i] < spec.Min {
			v[i] = spec.Min
		}
		if v[i] > spec.Max {
			v[i] = spec.Max
		}
	}
	return systems.WeightsFromVector(v)
}

// Random draws a uniformly random weight vector within the gene ranges.
func Random(rng *rand.Rand) systems.Weights {
	var v [5]float64
	for i, spec := range Genes {
		v[i] = spec.Min + rng.Float64()*(spec.Max-spec.Min)
	}
	return systems.WeightsFromVector(v)
}
