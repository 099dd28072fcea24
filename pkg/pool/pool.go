package pool

import (
	"fmt"
	"math/rand"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/funcs"
)

// Pool provides random building blocks for constructing expression trees.
type Pool struct {
	unary     []*expr.Operator
	nary      []*expr.Operator
	variables []string
	unaryProb float64
	terms     TerminalPolicy
	specials  []*expr.SpecialLeaf
}

// New builds a pool over the given operator set and input names. unaryProb is
// the chance of drawing a unary operator when both kinds are available.
func New(ops []*expr.Operator, variables []string, unaryProb float64, terms TerminalPolicy) (*Pool, error) {
	if unaryProb < 0 || unaryProb > 1 {
		return nil, fmt.Errorf("%w: unary probability %v outside [0, 1]", expr.ErrConfig, unaryProb)
	}
	for _, op := range ops {
		if op == nil {
			return nil, fmt.Errorf("%w: nil operator in function set", expr.ErrConfig)
		}
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	specials, err := terms.specialLeaves()
	if err != nil {
		return nil, err
	}
	return &Pool{
		unary:     funcs.Unary(ops),
		nary:      funcs.Nary(ops),
		variables: append([]string(nil), variables...),
		unaryProb: unaryProb,
		terms:     terms,
		specials:  specials,
	}, nil
}

// Functions returns the pool's operators, unary first.
func (p *Pool) Functions() []*expr.Operator {
	out := make([]*expr.Operator, 0, len(p.unary)+len(p.nary))
	out = append(out, p.unary...)
	return append(out, p.nary...)
}

// Variables returns the input names terminals may refer to.
func (p *Pool) Variables() []string { return p.variables }

// Terminals returns the terminal policy.
func (p *Pool) Terminals() TerminalPolicy { return p.terms }

// RandomOperator draws a unary operator with probability unaryProb, otherwise
// an n-ary one, falling back to whichever subset is non-empty. It returns nil
// when the pool has no operators.
func (p *Pool) RandomOperator(rng *rand.Rand) *expr.Operator {
	switch {
	case len(p.unary) == 0 && len(p.nary) == 0:
		return nil
	case len(p.nary) == 0:
		return p.unary[rng.Intn(len(p.unary))]
	case len(p.unary) == 0:
		return p.nary[rng.Intn(len(p.nary))]
	}
	if rng.Float64() < p.unaryProb {
		return p.unary[rng.Intn(len(p.unary))]
	}
	return p.nary[rng.Intn(len(p.nary))]
}

// RandomOperatorOfArity draws uniformly among operators with the given arity,
// or returns nil when there are none.
func (p *Pool) RandomOperatorOfArity(rng *rand.Rand, arity int) *expr.Operator {
	var candidates []*expr.Operator
	if arity == 1 {
		candidates = p.unary
	} else {
		candidates = funcs.ByArity(p.nary, arity)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}

// Grow builds a random tree. Levels 0..maxDepth-1 draw operators and level
// maxDepth draws a terminal, so the result has depth at most maxDepth+1.
func (p *Pool) Grow(rng *rand.Rand, maxDepth int) expr.Node {
	return p.grow(rng, 0, maxDepth)
}

func (p *Pool) grow(rng *rand.Rand, level, maxDepth int) expr.Node {
	if level >= maxDepth {
		return p.RandomTerminal(rng)
	}
	op := p.RandomOperator(rng)
	if op == nil {
		return p.RandomTerminal(rng)
	}
	args := make([]expr.Node, op.Arity)
	for i := range args {
		args[i] = p.grow(rng, level+1, maxDepth)
	}
	return &expr.OpNode{Op: op, Args: args}
}

// GrowTree grows a tree and simplifies it.
func (p *Pool) GrowTree(rng *rand.Rand, maxDepth int) *expr.Tree {
	return expr.NewTree(p.Grow(rng, maxDepth), true)
}
