package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnassigned is returned when a VarLeaf is evaluated before a value was assigned.
	ErrUnassigned = errors.New("unassigned input")
	// ErrArity is returned when an operator receives the wrong number of arguments or children.
	ErrArity = errors.New("arity mismatch")
	// ErrShape is returned when vector arguments cannot be broadcast together.
	ErrShape = errors.New("shape mismatch")
	// ErrConfig is returned for malformed configuration parameters.
	ErrConfig = errors.New("invalid configuration")
)

// Node is the interface for all expression tree nodes.
type Node interface {
	Evaluate() (Value, error)
	String() string
	Clone() Node
	Children() []Node
	Equal(other Node) bool
	NodeCount() int
	Depth() int
}

// OpNode applies an operator to an ordered list of children.
// len(Args) always equals Op.Arity.
type OpNode struct {
	Op   *Operator
	Args []Node
}

// Leaf holds a fixed numeric constant.
type Leaf struct {
	Val float64
}

// VarLeaf is a named input slot. It holds no permanent value; Assign binds one
// before evaluation.
type VarLeaf struct {
	Name  string
	value Value
	bound bool
}

// SpecialLeaf is a named mathematical constant such as pi or e.
type SpecialLeaf struct {
	Name string
	Val  float64
}

// NewOpNode builds an operator node, checking the child count against the arity.
func NewOpNode(op *Operator, children ...Node) (*OpNode, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operator", ErrConfig)
	}
	if len(children) != op.Arity {
		return nil, fmt.Errorf("%w: operator %q expects %d children, got %d", ErrArity, op.Name, op.Arity, len(children))
	}
	args := make([]Node, len(children))
	copy(args, children)
	return &OpNode{Op: op, Args: args}, nil
}

// MustOpNode is like NewOpNode but panics on error. Intended for tests and
// statically known trees.
func MustOpNode(op *Operator, children ...Node) *OpNode {
	n, err := NewOpNode(op, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// NewLeaf returns a constant terminal.
func NewLeaf(v float64) *Leaf { return &Leaf{Val: v} }

// NewVarLeaf returns an unbound input terminal.
func NewVarLeaf(name string) *VarLeaf { return &VarLeaf{Name: name} }

// NewSpecialLeaf returns a named constant terminal.
func NewSpecialLeaf(name string, v float64) *SpecialLeaf {
	return &SpecialLeaf{Name: name, Val: v}
}

// Assign binds the leaf to v until the next Assign or Reset.
func (v *VarLeaf) Assign(val Value) {
	v.value = val
	v.bound = true
}

// Reset clears the current binding.
func (v *VarLeaf) Reset() {
	v.value = nil
	v.bound = false
}

// Assigned reports whether the leaf currently holds a value.
func (v *VarLeaf) Assigned() bool { return v.bound }

func (n *OpNode) Children() []Node      { return n.Args }
func (l *Leaf) Children() []Node        { return nil }
func (v *VarLeaf) Children() []Node     { return nil }
func (s *SpecialLeaf) Children() []Node { return nil }

// IsTerminal reports whether n has no children.
func IsTerminal(n Node) bool {
	_, ok := n.(*OpNode)
	return !ok
}

// IsConstant reports whether n is a Leaf or SpecialLeaf.
func IsConstant(n Node) bool {
	switch n.(type) {
	case *Leaf, *SpecialLeaf:
		return true
	}
	return false
}

// Structural equality. Two subtrees are equal only when they have the same
// shape, operators, names and constant values.

func (n *OpNode) Equal(other Node) bool {
	o, ok := other.(*OpNode)
	if !ok || o.Op.Name != n.Op.Name || len(o.Args) != len(n.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (l *Leaf) Equal(other Node) bool {
	o, ok := other.(*Leaf)
	return ok && o.Val == l.Val
}

func (v *VarLeaf) Equal(other Node) bool {
	o, ok := other.(*VarLeaf)
	return ok && o.Name == v.Name
}

func (s *SpecialLeaf) Equal(other Node) bool {
	o, ok := other.(*SpecialLeaf)
	return ok && o.Name == s.Name
}
