package expr

import "math"

// maxRewrites caps how many rule applications a single node may go through.
const maxRewrites = 20

// Simplify rewrites node bottom-up and returns the replacement root. OpNodes
// are modified in place; a node may also be replaced by a Leaf or by one of
// its own subtrees.
//
// Rules match subtrees structurally (Equal), so only exact duplicates trigger
// rewrites such as a-a → 0.
func Simplify(node Node) Node {
	n, ok := node.(*OpNode)
	if !ok {
		return node
	}
	for i, c := range n.Args {
		n.Args[i] = Simplify(c)
	}
	return rewrite(n)
}

func rewrite(n *OpNode) Node {
	for i := 0; i < maxRewrites; i++ {
		if folded, ok := foldConstants(n); ok {
			return folded
		}
		rw, ok := n.Op.Simplify(n.Args)
		if !ok {
			return n
		}
		switch {
		case rw.Const:
			return NewLeaf(rw.Value)
		case rw.Replace != nil:
			return rw.Replace
		case rw.Op != nil && len(rw.Children) == rw.Op.Arity:
			n.Op = rw.Op
			n.Args = rw.Children
		default:
			// malformed rewrite, keep the node as is
			return n
		}
	}
	return n
}

// foldConstants collapses a node whose children are all constants into a
// single Leaf, provided the result is a finite scalar.
func foldConstants(n *OpNode) (Node, bool) {
	for _, c := range n.Args {
		if !IsConstant(c) {
			return nil, false
		}
	}
	v, err := n.Evaluate()
	if err != nil || len(v) != 1 || math.IsNaN(v[0]) || math.IsInf(v[0], 0) {
		return nil, false
	}
	return NewLeaf(v[0]), true
}

// ContainsVar reports whether the expression tree contains an input variable.
func ContainsVar(node Node) bool {
	switch n := node.(type) {
	case *VarLeaf:
		return true
	case *OpNode:
		for _, c := range n.Args {
			if ContainsVar(c) {
				return true
			}
		}
	}
	return false
}
