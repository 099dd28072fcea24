package expr

import "fmt"

// Func computes an operator over its already-evaluated arguments.
// Implementations must be pure and must not retain args.
type Func func(args []Value) Value

// Rewrite describes how a simplification rule replaces a node.
// Exactly one of the three forms is used:
//   - Const: the node collapses to Leaf(Value)
//   - Replace != nil: the node is replaced by that subtree
//   - Op != nil: the node keeps its place with a new operator and children
type Rewrite struct {
	Const    bool
	Value    float64
	Replace  Node
	Op       *Operator
	Children []Node
}

// Rule inspects the simplified children of a node and optionally proposes a rewrite.
type Rule func(children []Node) (Rewrite, bool)

// Operator is a named, arity-tagged numeric function. Operators are immutable
// once built and are shared between trees by pointer.
type Operator struct {
	Name  string
	Arity int
	Fn    Func
	Rule  Rule

	// Template renders the solved expression. Placeholders #1..#n are replaced
	// by the rendered children. Empty means "name(#1, ..., #n)".
	Template string
}

// NewOperator validates and returns an operator.
func NewOperator(name string, arity int, fn Func) (*Operator, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: operator name is required", ErrConfig)
	}
	if arity < 1 {
		return nil, fmt.Errorf("%w: operator %q has arity %d", ErrArity, name, arity)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: operator %q has no function", ErrConfig, name)
	}
	return &Operator{Name: name, Arity: arity, Fn: fn}, nil
}

// Apply calls the operator function after checking argument count and shapes.
func (o *Operator) Apply(args ...Value) (Value, error) {
	if len(args) != o.Arity {
		return nil, fmt.Errorf("%w: operator %q expects %d arguments, got %d", ErrArity, o.Name, o.Arity, len(args))
	}
	if _, err := broadcastLen(args...); err != nil {
		return nil, fmt.Errorf("operator %q: %w", o.Name, err)
	}
	return o.Fn(args), nil
}

// Simplify asks the operator's rule for a rewrite of the given children.
func (o *Operator) Simplify(children []Node) (Rewrite, bool) {
	if o.Rule == nil {
		return Rewrite{}, false
	}
	return o.Rule(children)
}

func (o *Operator) String() string { return o.Name }
