// Package exprlang evaluates rendered expression strings, the output of
// expr.Tree.String, with a gval language built from the operator registry.
package exprlang

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/PaesslerAG/gval"
	"gonum.org/v1/gonum/mat"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/funcs"
	"github.com/wildfunctions/symgp/pkg/pool"
)

// Language returns arithmetic plus one function per operator and the named
// special constants. Infix operators render through arithmetic; every other
// operator is called by name.
func Language(ops []*expr.Operator) gval.Language {
	bases := []gval.Language{gval.Arithmetic()}
	for _, op := range ops {
		bases = append(bases, gval.Function(op.Name, call(op)))
	}
	for name, v := range pool.Specials {
		bases = append(bases, gval.Constant(name, v))
	}
	return gval.NewLanguage(bases...)
}

var defaultLanguage = sync.OnceValue(func() gval.Language {
	return Language(funcs.All())
})

// Default is the language over every operator registered when it is first
// used.
func Default() gval.Language { return defaultLanguage() }

func call(op *expr.Operator) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		vals := make([]expr.Value, len(args))
		for i, a := range args {
			f, err := toFloat(a)
			if err != nil {
				return nil, fmt.Errorf("%s argument %d: %w", op.Name, i+1, err)
			}
			vals[i] = expr.Scalar(f)
		}
		v, err := op.Apply(vals...)
		if err != nil {
			return nil, err
		}
		return v[0], nil
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return math.NaN(), fmt.Errorf("%w: %v (%T) is not a number", expr.ErrShape, v, v)
}

// Evaluate computes a scalar expression in the default language.
func Evaluate(expression string, vars map[string]interface{}) (float64, error) {
	v, err := Default().Evaluate(expression, vars)
	if err != nil {
		return 0, err
	}
	return toFloat(v)
}

// EvaluateRows compiles expression once and evaluates it for every sample
// of X (variables × samples), binding row i to the name order[i].
func EvaluateRows(ctx context.Context, lang gval.Language, expression string, X mat.Matrix, order []string) ([]float64, error) {
	rows, cols := X.Dims()
	if len(order) != rows {
		return nil, fmt.Errorf("%w: %d variable names for %d input rows", expr.ErrConfig, len(order), rows)
	}
	eval, err := lang.NewEvaluable(expression)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", expression, err)
	}
	out := make([]float64, cols)
	params := make(map[string]interface{}, rows)
	for j := 0; j < cols; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, name := range order {
			params[name] = X.At(i, j)
		}
		v, err := eval(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", j, err)
		}
		if out[j], err = toFloat(v); err != nil {
			return nil, fmt.Errorf("sample %d: %w", j, err)
		}
	}
	return out, nil
}
