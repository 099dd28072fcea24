// Package genetic holds the operators that produce new trees from existing
// ones: the mutation family, subtree exchange and tournament selection.
//
// Every operator works on a deep copy, calls Update on the result and leaves
// its inputs untouched. When an operator finds nothing to act on it returns an
// unchanged copy.
package genetic

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/pool"
)

// Mutator produces a mutated copy of a tree.
type Mutator interface {
	Name() string
	Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree
}

// Recombiner produces two offspring from two parents.
type Recombiner interface {
	Name() string
	Recombine(a, b *expr.Tree, rng *rand.Rand) (*expr.Tree, *expr.Tree)
}

// Env is what mutators need to draw fresh material.
type Env struct {
	Pool     *pool.Pool
	MaxDepth int
}

var registry = map[string]func(env Env) Mutator{}

// Register adds a mutator constructor to the registry.
func Register(name string, constructor func(env Env) Mutator) {
	registry[name] = constructor
}

// Get returns a mutator by name.
func Get(name string, env Env) (Mutator, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown mutator: %s", expr.ErrConfig, name)
	}
	return ctor(env), nil
}

// Names returns all registered mutator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// opNodes returns the non-leaf nodes of t in pre-order.
func opNodes(t *expr.Tree, keepRoot bool) []*expr.OpNode {
	nodes := t.Subnodes(false, keepRoot)
	out := make([]*expr.OpNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.(*expr.OpNode)
	}
	return out
}
