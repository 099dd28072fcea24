package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// Schedule is a rate that is either fixed or interpolated linearly from Start
// at generation 0 towards End at the last generation.
type Schedule struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Fixed returns a constant schedule.
func Fixed(v float64) Schedule { return Schedule{Start: v, End: v} }

// Linear returns a schedule annealing from start to end.
func Linear(start, end float64) Schedule { return Schedule{Start: start, End: end} }

// At returns the value for generation gen out of generations.
func (s Schedule) At(gen, generations int) float64 {
	if generations <= 0 || s.Start == s.End {
		return s.Start
	}
	return s.Start + (s.End-s.Start)*float64(gen)/float64(generations)
}

func (s Schedule) within(lo, hi float64) bool {
	return s.Start >= lo && s.Start <= hi && s.End >= lo && s.End <= hi
}

// String renders "v" for fixed and "start:end" for linear schedules.
func (s Schedule) String() string {
	if s.Start == s.End {
		return strconv.FormatFloat(s.Start, 'g', -1, 64)
	}
	return strconv.FormatFloat(s.Start, 'g', -1, 64) + ":" + strconv.FormatFloat(s.End, 'g', -1, 64)
}

// Set parses "v" or "start:end", so a Schedule can be a command-line flag.
func (s *Schedule) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) > 2 {
		return fmt.Errorf("%w: schedule %q", expr.ErrConfig, v)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("%w: schedule %q: %v", expr.ErrConfig, v, err)
		}
		vals[i] = f
	}
	if len(vals) == 1 {
		*s = Fixed(vals[0])
	} else {
		*s = Linear(vals[0], vals[1])
	}
	return nil
}

// UnmarshalTOML accepts a number, a [start, end] pair or a "start:end" string.
func (s *Schedule) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case float64:
		*s = Fixed(v)
	case int64:
		*s = Fixed(float64(v))
	case string:
		return s.Set(v)
	case []interface{}:
		if len(v) != 2 {
			return fmt.Errorf("%w: schedule needs [start, end], got %d values", expr.ErrConfig, len(v))
		}
		var pair [2]float64
		for i, e := range v {
			switch n := e.(type) {
			case float64:
				pair[i] = n
			case int64:
				pair[i] = float64(n)
			default:
				return fmt.Errorf("%w: schedule value %v is not a number", expr.ErrConfig, e)
			}
		}
		*s = Linear(pair[0], pair[1])
	default:
		return fmt.Errorf("%w: cannot read schedule from %T", expr.ErrConfig, data)
	}
	return nil
}

// EvolveParams controls one call to Evolve.
type EvolveParams struct {
	Elitism   Schedule `toml:"elitism" json:"elitism"`
	Mutation  Schedule `toml:"mutation" json:"mutation"`
	Parsimony Schedule `toml:"parsimony" json:"parsimony"`

	PoolSize        int                  `toml:"pool_size" json:"pool_size"`
	ParsimonyFormat expr.ParsimonyFormat `toml:"parsimony_format" json:"parsimony_format"`

	// Grouping is the fraction of the ranked population forming the top
	// group that tournaments favour. 0 disables grouping.
	Grouping float64 `toml:"grouping" json:"grouping"`
}

// groupBias is the chance a grouped tournament draws from the top group.
const groupBias = 0.8

// DefaultEvolveParams returns moderate settings.
func DefaultEvolveParams() EvolveParams {
	return EvolveParams{
		Elitism:         Fixed(0.1),
		Mutation:        Fixed(0.3),
		Parsimony:       Fixed(0.01),
		PoolSize:        5,
		ParsimonyFormat: expr.Linear,
	}
}

// Validate reports the first malformed parameter.
func (p EvolveParams) Validate() error {
	switch {
	case !p.Elitism.within(0, 1):
		return fmt.Errorf("%w: elitism %v outside [0, 1]", expr.ErrConfig, p.Elitism)
	case !p.Mutation.within(0, 1):
		return fmt.Errorf("%w: mutation %v outside [0, 1]", expr.ErrConfig, p.Mutation)
	case p.Parsimony.Start < 0 || p.Parsimony.End < 0:
		return fmt.Errorf("%w: negative parsimony weight", expr.ErrConfig)
	case p.PoolSize < 1:
		return fmt.Errorf("%w: tournament pool size %d", expr.ErrConfig, p.PoolSize)
	case p.Grouping < 0 || p.Grouping >= 1:
		return fmt.Errorf("%w: grouping %v outside [0, 1)", expr.ErrConfig, p.Grouping)
	}
	if p.ParsimonyFormat != "" {
		if _, err := expr.ParseParsimonyFormat(string(p.ParsimonyFormat)); err != nil {
			return err
		}
	}
	return nil
}
