package expr

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Tree is one individual: a root node plus a cached index from input name to
// every VarLeaf occurrence of that name.
type Tree struct {
	root   Node
	inputs map[string][]*VarLeaf
	depth  int
}

// NewTree wraps root. When simplify is set the tree is simplified first.
func NewTree(root Node, simplify bool) *Tree {
	t := &Tree{root: root}
	if simplify {
		t.Update()
	} else {
		t.reindex()
	}
	return t
}

// Root returns the root node.
func (t *Tree) Root() Node { return t.root }

// SetRoot replaces the root. Call Update afterwards.
func (t *Tree) SetRoot(n Node) { t.root = n }

// Update re-simplifies the tree and rebuilds the input index. It must be
// called after every structural edit.
func (t *Tree) Update() {
	t.root = Simplify(t.root)
	t.reindex()
}

func (t *Tree) reindex() {
	inputs := make(map[string][]*VarLeaf)
	Walk(t.root, func(n Node, _ int) bool {
		if v, ok := n.(*VarLeaf); ok {
			inputs[v.Name] = append(inputs[v.Name], v)
		}
		return true
	})
	t.inputs = inputs
	t.depth = t.root.Depth()
}

// Inputs returns the VarLeaf occurrences of name.
func (t *Tree) Inputs(name string) []*VarLeaf { return t.inputs[name] }

// InputNames returns the distinct input names used by the tree, sorted.
func (t *Tree) InputNames() []string {
	names := make([]string, 0, len(t.inputs))
	for k := range t.inputs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Depth returns the cached depth: 1 for a single terminal.
func (t *Tree) Depth() int { return t.depth }

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return t.root.NodeCount() }

// DeepCopy returns a fully independent tree sharing only operator pointers.
func (t *Tree) DeepCopy() *Tree {
	return NewTree(t.root.Clone(), false)
}

// Subnodes returns the tree's nodes in pre-order under the given filter.
func (t *Tree) Subnodes(keepLeaves, keepRoot bool) []Node {
	return Subnodes(t.root, keepLeaves, keepRoot)
}

// Walk visits the tree depth-first with each node's level.
func (t *Tree) Walk(fn func(n Node, level int) bool) { Walk(t.root, fn) }

// Format writes an indented outline of the tree.
func (t *Tree) Format(w io.Writer) error { return Format(w, t.root) }

// String returns the solved expression.
func (t *Tree) String() string { return t.root.String() }

// Equal reports structural equality with another tree.
func (t *Tree) Equal(o *Tree) bool { return t.root.Equal(o.root) }

// Bind clears every input binding, then assigns row i of X to each VarLeaf
// named order[i]. X is variables × samples. It returns the sample count.
func (t *Tree) Bind(X mat.Matrix, order []string) (int, error) {
	rows, cols := X.Dims()
	if len(order) != rows {
		return 0, fmt.Errorf("%w: %d variable names for %d input rows", ErrConfig, len(order), rows)
	}
	for _, leaves := range t.inputs {
		for _, v := range leaves {
			v.Reset()
		}
	}
	for i, name := range order {
		leaves := t.inputs[name]
		if len(leaves) == 0 {
			continue
		}
		row := Value(mat.Row(nil, i, X))
		for _, v := range leaves {
			v.Assign(row)
		}
	}
	return cols, nil
}

// Evaluate binds X and evaluates the root once, returning one output per
// sample. Constant trees are broadcast to the sample count.
func (t *Tree) Evaluate(X mat.Matrix, order []string) ([]float64, error) {
	samples, err := t.Bind(X, order)
	if err != nil {
		return nil, err
	}
	v, err := t.root.Evaluate()
	if err != nil {
		return nil, err
	}
	return v.Broadcast(samples)
}
