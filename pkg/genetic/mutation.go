package genetic

import (
	"math/rand"

	"github.com/wildfunctions/symgp/pkg/expr"
)

func init() {
	Register("point", func(env Env) Mutator { return &PointMut{Env: env} })
	Register("perm", func(env Env) Mutator { return &PermMut{} })
	Register("hoist", func(env Env) Mutator { return &HoistMut{} })
	Register("const", func(env Env) Mutator { return &ConstMut{Env: env} })
	Register("collapse", func(env Env) Mutator { return &CollapseMut{Env: env} })
	Register("subtree", func(env Env) Mutator { return &SubTreeMut{Env: env} })
	Register("mixed", func(env Env) Mutator {
		m, err := NewMixed(env, DefaultWeights())
		if err != nil {
			panic(err)
		}
		return m
	})
}

// PointMut swaps the operator of a random non-leaf node (root included) for
// another one of the same arity.
type PointMut struct{ Env Env }

func (m *PointMut) Name() string { return "point" }

func (m *PointMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	nodes := opNodes(ret, true)
	if len(nodes) == 0 {
		return ret
	}
	target := nodes[rng.Intn(len(nodes))]
	if op := m.Env.Pool.RandomOperatorOfArity(rng, target.Op.Arity); op != nil {
		target.Op = op
	}
	ret.Update()
	return ret
}

// PermMut shuffles the children of a random node with two or more children.
type PermMut struct{}

func (m *PermMut) Name() string { return "perm" }

func (m *PermMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	var nary []*expr.OpNode
	for _, n := range opNodes(ret, true) {
		if n.Op.Arity > 1 {
			nary = append(nary, n)
		}
	}
	if len(nary) == 0 {
		return ret
	}
	target := nary[rng.Intn(len(nary))]
	rng.Shuffle(len(target.Args), func(i, j int) {
		target.Args[i], target.Args[j] = target.Args[j], target.Args[i]
	})
	ret.Update()
	return ret
}

// HoistMut promotes a random non-root operator node to be the new root. It
// only ever shrinks a tree.
type HoistMut struct{}

func (m *HoistMut) Name() string { return "hoist" }

func (m *HoistMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	nodes := opNodes(ret, false)
	if len(nodes) == 0 {
		return ret
	}
	ret.SetRoot(nodes[rng.Intn(len(nodes))])
	ret.Update()
	return ret
}

// ConstMut redraws the value of a random constant leaf. Named constants and
// variables are never touched.
type ConstMut struct{ Env Env }

func (m *ConstMut) Name() string { return "const" }

func (m *ConstMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	var consts []*expr.Leaf
	ret.Walk(func(n expr.Node, _ int) bool {
		if l, ok := n.(*expr.Leaf); ok {
			consts = append(consts, l)
		}
		return true
	})
	if len(consts) == 0 {
		return ret
	}
	consts[rng.Intn(len(consts))].Val = m.Env.Pool.RandomConstant(rng)
	ret.Update()
	return ret
}

// CollapseMut replaces a random child of a random operator node with a fresh
// terminal.
type CollapseMut struct{ Env Env }

func (m *CollapseMut) Name() string { return "collapse" }

func (m *CollapseMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	nodes := opNodes(ret, true)
	if len(nodes) == 0 {
		return ret
	}
	target := nodes[rng.Intn(len(nodes))]
	target.Args[rng.Intn(len(target.Args))] = m.Env.Pool.RandomTerminal(rng)
	ret.Update()
	return ret
}

// SubTreeMut replaces a random child of a random non-root operator node with
// a freshly grown subtree, sized so the tree stays within MaxDepth+1 levels.
type SubTreeMut struct{ Env Env }

func (m *SubTreeMut) Name() string { return "subtree" }

func (m *SubTreeMut) Mutate(t *expr.Tree, rng *rand.Rand) *expr.Tree {
	ret := t.DeepCopy()
	type site struct {
		node  *expr.OpNode
		level int
	}
	var sites []site
	ret.Walk(func(n expr.Node, level int) bool {
		if op, ok := n.(*expr.OpNode); ok && level > 0 {
			sites = append(sites, site{op, level})
		}
		return true
	})
	if len(sites) == 0 {
		return ret
	}
	s := sites[rng.Intn(len(sites))]
	depth := m.Env.MaxDepth - s.level - 1
	if depth < 0 {
		depth = 0
	}
	s.node.Args[rng.Intn(len(s.node.Args))] = m.Env.Pool.Grow(rng, depth)
	ret.Update()
	return ret
}
