// Package funcs is the operator registry: the standard numeric function set
// used to grow and evaluate expression trees, looked up by name.
package funcs

import (
	"fmt"
	"sort"

	"github.com/wildfunctions/symgp/pkg/expr"
)

var registry = map[string]*expr.Operator{}

// Register adds an operator. Names are unique; registering a name twice is an
// error. Register is not safe for use concurrently with lookups and is meant
// to be called during initialisation.
func Register(op *expr.Operator) error {
	if op == nil || op.Name == "" {
		return fmt.Errorf("%w: operator without a name", expr.ErrConfig)
	}
	if op.Arity < 1 || op.Fn == nil {
		return fmt.Errorf("%w: operator %q is incomplete", expr.ErrConfig, op.Name)
	}
	if _, ok := registry[op.Name]; ok {
		return fmt.Errorf("%w: function %s already registered", expr.ErrConfig, op.Name)
	}
	registry[op.Name] = op
	return nil
}

// Get returns an operator by name.
func Get(name string) (*expr.Operator, error) {
	op, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown function: %s", expr.ErrConfig, name)
	}
	return op, nil
}

// MustGet is like Get but panics for unknown names.
func MustGet(name string) *expr.Operator {
	op, err := Get(name)
	if err != nil {
		panic(err)
	}
	return op
}

// Lookup resolves several names at once.
func Lookup(names ...string) ([]*expr.Operator, error) {
	ops := make([]*expr.Operator, 0, len(names))
	for _, n := range names {
		op, err := Get(n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Names returns all registered function names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// All returns every registered operator ordered by name.
func All() []*expr.Operator {
	names := Names()
	ops := make([]*expr.Operator, len(names))
	for i, n := range names {
		ops[i] = registry[n]
	}
	return ops
}

// Unary returns the operators of arity 1.
func Unary(ops []*expr.Operator) []*expr.Operator { return ByArity(ops, 1) }

// Nary returns the operators of arity 2 or more.
func Nary(ops []*expr.Operator) []*expr.Operator {
	var out []*expr.Operator
	for _, op := range ops {
		if op.Arity > 1 {
			out = append(out, op)
		}
	}
	return out
}

// ByArity returns the operators with exactly n arguments.
func ByArity(ops []*expr.Operator, n int) []*expr.Operator {
	var out []*expr.Operator
	for _, op := range ops {
		if op.Arity == n {
			out = append(out, op)
		}
	}
	return out
}
