package funcs

import "github.com/wildfunctions/symgp/pkg/expr"

func installRules() {
	Add.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		switch {
		case c[0].Equal(c[1]):
			return rewriteTo(Mul, expr.NewLeaf(2), c[0]), true
		case isValue(c[1], 0):
			return replaceWith(c[0]), true
		case isValue(c[0], 0):
			return replaceWith(c[1]), true
		}
		return expr.Rewrite{}, false
	}
	Sub.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		switch {
		case c[0].Equal(c[1]):
			return constant(0), true
		case isValue(c[1], 0):
			return replaceWith(c[0]), true
		}
		return expr.Rewrite{}, false
	}
	Mul.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		switch {
		case isValue(c[0], 0), isValue(c[1], 0):
			return constant(0), true
		case isValue(c[1], 1):
			return replaceWith(c[0]), true
		case isValue(c[0], 1):
			return replaceWith(c[1]), true
		case c[0].Equal(c[1]):
			return rewriteTo(Pow, c[0], expr.NewLeaf(2)), true
		}
		return expr.Rewrite{}, false
	}
	Div.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		switch {
		case c[0].Equal(c[1]):
			// wrong for a == 0, accepted
			return constant(1), true
		case isValue(c[1], 1):
			return replaceWith(c[0]), true
		}
		return expr.Rewrite{}, false
	}
	Pow.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		switch {
		case isValue(c[1], 1):
			return replaceWith(c[0]), true
		case isValue(c[1], 0):
			return constant(1), true
		}
		return expr.Rewrite{}, false
	}
	Maximum.Rule = sameOperands
	Minimum.Rule = sameOperands
	Neg.Rule = func(c []expr.Node) (expr.Rewrite, bool) {
		if inner, ok := c[0].(*expr.OpNode); ok && inner.Op == Neg {
			return replaceWith(inner.Args[0]), true
		}
		return expr.Rewrite{}, false
	}
}

// sameOperands collapses f(a, a) to a.
func sameOperands(c []expr.Node) (expr.Rewrite, bool) {
	if c[0].Equal(c[1]) {
		return replaceWith(c[0]), true
	}
	return expr.Rewrite{}, false
}

func isValue(n expr.Node, v float64) bool {
	l, ok := n.(*expr.Leaf)
	return ok && l.Val == v
}

func constant(v float64) expr.Rewrite { return expr.Rewrite{Const: true, Value: v} }

func replaceWith(n expr.Node) expr.Rewrite { return expr.Rewrite{Replace: n} }

func rewriteTo(op *expr.Operator, children ...expr.Node) expr.Rewrite {
	return expr.Rewrite{Op: op, Children: children}
}
