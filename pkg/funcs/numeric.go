package funcs

import (
	"math"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// Arithmetic.
var (
	Add = binary("add", "(#1 + #2)", func(x, y float64) float64 { return x + y })
	Sub = binary("sub", "(#1 - #2)", func(x, y float64) float64 { return x - y })
	Mul = binary("mul", "(#1 * #2)", func(x, y float64) float64 { return x * y })
	Div = binary("div", "(#1 / #2)", func(x, y float64) float64 { return x / y })
	Pow = binary("pow", "", math.Pow)
	// Log is the logarithm of #1 in base #2.
	Log = binary("log", "", func(x, b float64) float64 { return math.Log(x) / math.Log(b) })

	Maximum = binary("maximum", "", math.Max)
	Minimum = binary("minimum", "", math.Min)
)

// Elementwise unary functions.
var (
	Sin     = unary("sin", math.Sin)
	Cos     = unary("cos", math.Cos)
	Tan     = unary("tan", math.Tan)
	Arcsin  = unary("arcsin", math.Asin)
	Arccos  = unary("arccos", math.Acos)
	Arctan  = unary("arctan", math.Atan)
	Sinh    = unary("sinh", math.Sinh)
	Cosh    = unary("cosh", math.Cosh)
	Tanh    = unary("tanh", math.Tanh)
	Arcsinh = unary("arcsinh", math.Asinh)
	Arccosh = unary("arccosh", math.Acosh)
	Arctanh = unary("arctanh", math.Atanh)
	Abs     = unary("abs", math.Abs)
	Sign    = unary("sign", sign)
	Floor   = unary("floor", math.Floor)
	Ceil    = unary("ceil", math.Ceil)
	Round   = unary("round", math.RoundToEven)
	Exp     = unary("exp", math.Exp)
	Sqrt    = unary("sqrt", math.Sqrt)
	Neg     = unary("neg", func(x float64) float64 { return -x })
)

func init() {
	Neg.Template = "-(#1)"
	installRules()
	for _, op := range []*expr.Operator{
		Add, Sub, Mul, Div, Pow, Log, Maximum, Minimum,
		Sin, Cos, Tan, Arcsin, Arccos, Arctan,
		Sinh, Cosh, Tanh, Arcsinh, Arccosh, Arctanh,
		Abs, Sign, Floor, Ceil, Round, Exp, Sqrt, Neg,
	} {
		if err := Register(op); err != nil {
			panic(err)
		}
	}
}

func unary(name string, f func(float64) float64) *expr.Operator {
	return &expr.Operator{
		Name:  name,
		Arity: 1,
		Fn:    func(a []expr.Value) expr.Value { return expr.Map1(a[0], f) },
	}
}

func binary(name, template string, f func(x, y float64) float64) *expr.Operator {
	return &expr.Operator{
		Name:     name,
		Arity:    2,
		Template: template,
		Fn:       func(a []expr.Value) expr.Value { return expr.Map2(a[0], a[1], f) },
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	// 0, -0 and NaN pass through
	return x
}
