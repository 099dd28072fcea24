package pool

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// Distribution of random constants.
const (
	Uniform = "uniform"
	Normal  = "normal"
)

// Specials maps the names a SpecialLeaf may take to their values.
var Specials = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"phi": math.Phi,
}

// CheckVariable rejects input names that would render like another terminal:
// empty names, special constant names and names that read as a number.
func CheckVariable(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty variable name", expr.ErrConfig)
	}
	if _, ok := Specials[name]; ok {
		return fmt.Errorf("%w: variable %q is a special constant name", expr.ErrConfig, name)
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return fmt.Errorf("%w: variable %q reads as a number", expr.ErrConfig, name)
	}
	return nil
}

// TerminalPolicy decides what a freshly drawn terminal is.
type TerminalPolicy struct {
	// Relative weights of a variable, a random constant and a special constant.
	VarWeight     float64 `toml:"var_weight" json:"var_weight"`
	ConstWeight   float64 `toml:"const_weight" json:"const_weight"`
	SpecialWeight float64 `toml:"special_weight" json:"special_weight"`

	Distribution string  `toml:"distribution" json:"distribution"`
	Min          float64 `toml:"min" json:"min"`
	Max          float64 `toml:"max" json:"max"`
	Mean         float64 `toml:"mean" json:"mean"`
	Std          float64 `toml:"std" json:"std"`
	Integer      bool    `toml:"integer" json:"integer"`

	Specials []string `toml:"specials" json:"specials"`
}

// DefaultTerminalPolicy favours variables, with uniform constants in [-5, 5).
func DefaultTerminalPolicy() TerminalPolicy {
	return TerminalPolicy{
		VarWeight:     0.5,
		ConstWeight:   0.4,
		SpecialWeight: 0.1,
		Distribution:  Uniform,
		Min:           -5,
		Max:           5,
		Std:           1,
		Specials:      []string{"pi", "e"},
	}
}

// Validate checks weights, distribution parameters and special names.
func (tp TerminalPolicy) Validate() error {
	if tp.VarWeight < 0 || tp.ConstWeight < 0 || tp.SpecialWeight < 0 {
		return fmt.Errorf("%w: negative terminal weight", expr.ErrConfig)
	}
	switch tp.Distribution {
	case Uniform, "":
		if tp.Max < tp.Min {
			return fmt.Errorf("%w: constant range [%v, %v) is empty", expr.ErrConfig, tp.Min, tp.Max)
		}
	case Normal:
		if tp.Std < 0 {
			return fmt.Errorf("%w: negative standard deviation %v", expr.ErrConfig, tp.Std)
		}
	default:
		return fmt.Errorf("%w: unknown constant distribution %q", expr.ErrConfig, tp.Distribution)
	}
	_, err := tp.specialLeaves()
	return err
}

func (tp TerminalPolicy) specialLeaves() ([]*expr.SpecialLeaf, error) {
	leaves := make([]*expr.SpecialLeaf, 0, len(tp.Specials))
	for _, name := range tp.Specials {
		v, ok := Specials[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown special constant %q", expr.ErrConfig, name)
		}
		leaves = append(leaves, expr.NewSpecialLeaf(name, v))
	}
	return leaves, nil
}

// RandomConstant draws a constant value under the policy.
func (p *Pool) RandomConstant(rng *rand.Rand) float64 {
	var v float64
	if p.terms.Distribution == Normal {
		v = p.terms.Mean + rng.NormFloat64()*p.terms.Std
	} else {
		v = p.terms.Min + rng.Float64()*(p.terms.Max-p.terms.Min)
	}
	if p.terms.Integer {
		v = math.Round(v)
	}
	return v
}

// RandomTerminal draws a variable, a constant or a special constant by the
// policy weights. Kinds with nothing to draw from get zero weight; if every
// weight is zero a constant is returned.
func (p *Pool) RandomTerminal(rng *rand.Rand) expr.Node {
	wVar, wConst, wSpecial := p.terms.VarWeight, p.terms.ConstWeight, p.terms.SpecialWeight
	if len(p.variables) == 0 {
		wVar = 0
	}
	if len(p.specials) == 0 {
		wSpecial = 0
	}
	total := wVar + wConst + wSpecial
	if total <= 0 {
		return expr.NewLeaf(p.RandomConstant(rng))
	}
	r := rng.Float64() * total
	switch {
	case r < wVar:
		return expr.NewVarLeaf(p.variables[rng.Intn(len(p.variables))])
	case r < wVar+wSpecial:
		s := p.specials[rng.Intn(len(p.specials))]
		return expr.NewSpecialLeaf(s.Name, s.Val)
	default:
		return expr.NewLeaf(p.RandomConstant(rng))
	}
}
