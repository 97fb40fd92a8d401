// Package policy implements the tabular value store and epsilon-greedy
// action selection.
package policy

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/pthm-cable/muncher/components"
	"github.com/pthm-cable/muncher/systems"
)

// Params are the process-wide learning parameters for one invocation. They
// are passed explicitly on every call; the store keeps no schedule state.
type Params struct {
	Epsilon float64 // exploration rate
	Alpha   float64 // learning rate
	Gamma   float64 // discount factor
	Clamp   float64 // absolute bound on stored estimates; 0 disables
}

// Table maps encoded state keys to per-action value estimates. Keys are
// lazily initialized to all-zero on first reference and never pruned.
type Table struct {
	values map[systems.Key]*[4]float64
}

// NewTable creates an empty value table.
func NewTable() *Table {
	return &Table{values: make(map[systems.Key]*[4]float64)}
}

// Len returns the number of state keys visited so far.
func (t *Table) Len() int { return len(t.values) }

func (t *Table) actionValues(k systems.Key) *[4]float64 {
	v, ok := t.values[k]
	if !ok {
		v = &[4]float64{}
		t.values[k] = v
	}
	return v
}

// Value returns the stored estimate for (key, action) without initializing
// the key.
func (t *Table) Value(k systems.Key, a components.Dir) float64 {
	v, ok := t.values[k]
	if !ok || a.Index() < 0 {
		return 0
	}
	return v[a.Index()]
}

// Greedy returns the legal action with the highest stored value, ties broken
// by the first-enumerated action. Legal actions must be non-empty.
func (t *Table) Greedy(k systems.Key, legal []components.Dir) components.Dir {
	v := t.actionValues(k)
	best := legal[0]
	bestVal := v[best.Index()]
	for _, a := range legal[1:] {
		if v[a.Index()] > bestVal {
			best, bestVal = a, v[a.Index()]
		}
	}
	return best
}

// SelectAction picks epsilon-greedily among legal actions. With probability
// p.Epsilon the explore func chooses (uniform random when explore is nil);
// otherwise the greedy action wins. Epsilon zero is fully deterministic.
func (t *Table) SelectAction(k systems.Key, legal []components.Dir, p Params, rng *rand.Rand, explore func([]components.Dir) components.Dir) components.Dir {
	if len(legal) == 0 {
		return components.DirNone
	}
	if p.Epsilon > 0 && rng.Float64() < p.Epsilon {
		if explore != nil {
			return explore(legal)
		}
		return legal[rng.Intn(len(legal))]
	}
	return t.Greedy(k, legal)
}

// maxOver returns the highest stored value among legal actions of k.
func (t *Table) maxOver(k systems.Key, legal []components.Dir) float64 {
	if len(legal) == 0 {
		return 0
	}
	v := t.actionValues(k)
	best := v[legal[0].Index()]
	for _, a := range legal[1:] {
		if v[a.Index()] > best {
			best = v[a.Index()]
		}
	}
	return best
}

// Update applies the one-step tabular bootstrap:
//
//	Q(s,a) += alpha * (r + gamma*max_a' Q(s',a')*(terminal?0:1) - Q(s,a))
//
// Non-finite rewards skip the update; the new estimate is clamped to
// ±p.Clamp so a single degenerate sample cannot poison later lookups.
func (t *Table) Update(k systems.Key, a components.Dir, reward float64, next systems.Key, nextLegal []components.Dir, terminal bool, p Params) {
	if a.Index() < 0 || math.IsNaN(reward) || math.IsInf(reward, 0) {
		return
	}
	v := t.actionValues(k)

	future := 0.0
	if !terminal {
		future = t.maxOver(next, nextLegal)
	}
	target := reward + p.Gamma*future
	updated := v[a.Index()] + p.Alpha*(target-v[a.Index()])

	if math.IsNaN(updated) || math.IsInf(updated, 0) {
		return
	}
	if p.Clamp > 0 {
		updated = math.Max(-p.Clamp, math.Min(p.Clamp, updated))
	}
	v[a.Index()] = updated
}

// actionValuesJSON is the persisted per-state record: exactly four named
// action-value scalars.
type actionValuesJSON struct {
	Up    float64 `json:"up"`
	Down  float64 `json:"down"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Save writes the table as a JSON mapping from state key string to the four
// action values. The layout round-trips losslessly through Load.
func (t *Table) Save(w io.Writer) error {
	out := make(map[string]actionValuesJSON, len(t.values))
	for k, v := range t.values {
		out[k.String()] = actionValuesJSON{
			Up:    v[components.DirUp.Index()],
			Down:  v[components.DirDown.Index()],
			Left:  v[components.DirLeft.Index()],
			Right: v[components.DirRight.Index()],
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding value table: %w", err)
	}
	return nil
}

// Load replaces the table contents from a Save stream.
func (t *Table) Load(r io.Reader) error {
	var in map[string]actionValuesJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decoding value table: %w", err)
	}
	values := make(map[systems.Key]*[4]float64, len(in))
	for s, av := range in {
		k, err := systems.ParseKey(s)
		if err != nil {
			return fmt.Errorf("loading value table: %w", err)
		}
		v := &[4]float64{}
		v[components.DirUp.Index()] = av.Up
		v[components.DirDown.Index()] = av.Down
		v[components.DirLeft.Index()] = av.Left
		v[components.DirRight.Index()] = av.Right
		values[k] = v
	}
	t.values = values
	return nil
}
