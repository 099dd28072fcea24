package expr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ParsimonyFormat selects how the depth penalty combines with the error.
type ParsimonyFormat string

const (
	// Linear scores mse + depth*weight.
	Linear ParsimonyFormat = "linear"
	// Bilinear scores mse * depth*weight.
	Bilinear ParsimonyFormat = "bilinear"
)

// ParseParsimonyFormat validates a format name.
func ParseParsimonyFormat(s string) (ParsimonyFormat, error) {
	switch f := ParsimonyFormat(s); f {
	case Linear, Bilinear:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown parsimony format %q", ErrConfig, s)
}

// MeanSquaredError compares predictions with targets. A position whose
// difference is NaN contributes 0 when both sides are NaN and +Inf otherwise,
// so NaN never reaches the aggregate.
func MeanSquaredError(predicted, target []float64) (float64, error) {
	if len(predicted) != len(target) {
		return 0, fmt.Errorf("%w: %d predictions for %d targets", ErrShape, len(predicted), len(target))
	}
	if len(target) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrConfig)
	}
	var sum float64
	for i, p := range predicted {
		d := p - target[i]
		if math.IsNaN(d) {
			if math.IsNaN(p) && math.IsNaN(target[i]) {
				continue
			}
			return math.Inf(1), nil
		}
		sum += d * d
	}
	return sum / float64(len(target)), nil
}

// Penalize turns an error and a depth into a fitness. Higher is better.
func Penalize(mse float64, depth int, weight float64, format ParsimonyFormat) (float64, error) {
	penalty := float64(depth) * weight
	switch format {
	case Linear, "":
		return -(mse + penalty), nil
	case Bilinear:
		return -(mse * penalty), nil
	}
	return 0, fmt.Errorf("%w: unknown parsimony format %q", ErrConfig, format)
}

// MSE evaluates the tree on X and returns the mean squared error against y.
func (t *Tree) MSE(X mat.Matrix, y []float64, order []string) (float64, error) {
	predicted, err := t.Evaluate(X, order)
	if err != nil {
		return 0, err
	}
	return MeanSquaredError(predicted, y)
}

// Fitness is the negated, parsimony-penalised MSE.
func (t *Tree) Fitness(X mat.Matrix, y []float64, order []string, weight float64, format ParsimonyFormat) (float64, error) {
	mse, err := t.MSE(X, y, order)
	if err != nil {
		return 0, err
	}
	return Penalize(mse, t.Depth(), weight, format)
}
