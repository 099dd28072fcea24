package genetic

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// DefaultWeights are the relative odds MixedMut gives each mutator.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"point":    0.30,
		"perm":     0.15,
		"hoist":    0.075,
		"collapse": 0.075,
		"subtree":  0.30,
		"const":    0.10,
	}
}

// MixedMut draws one mutator by weight and delegates to it.
type MixedMut struct {
	mutators []Mutator
	cum      []float64
}

// NewMixed builds a dispatcher over the named mutators. Zero weights drop a
// mutator; at least one weight must be positive.
func NewMixed(env Env, weights map[string]float64) (*MixedMut, error) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	// map order is random, the draw must not be
	sort.Strings(names)

	m := &MixedMut{}
	total := 0.0
	for _, name := range names {
		w := weights[name]
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight %v for mutator %s", expr.ErrConfig, w, name)
		}
		if w == 0 {
			continue
		}
		if name == "mixed" {
			return nil, fmt.Errorf("%w: mixed mutator cannot nest itself", expr.ErrConfig)
		}
		mut, err := Get(name, env)
		if err != nil {
			return nil, err
		}
		total += w
		m.mutators = append(m.mutators, mut)
		m.cum = append(m.cum, total)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no mutator has a positive weight", expr.ErrConfig)
	}
	return m, nil
}

func (m *MixedMut) Name() string { return "mixed" }

// Pick draws the mutator for one application.
func (m *MixedMut) Pick(rng *rand.Rand) Mutator {
	r := rng.Float64() * m.cum[len(m.cum)-1]
	i := sort.SearchFloat64s(m.cum, r)
	if i < len(m.cum) && m.cum[i] == r {
		i++
	}
	if i >= len(m.mutators) {
		i = len(m.mutators) - 1
	}
	return m.mutators[i]
}

func (m *MixedMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	return m.Pick(rng).Mutate(t, rng)
}
