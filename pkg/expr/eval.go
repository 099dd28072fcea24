package expr

import "fmt"

// Value is a vector of per-sample results. A length-1 Value is a scalar and
// broadcasts against longer vectors.
type Value []float64

// Scalar returns a length-1 Value.
func Scalar(v float64) Value { return Value{v} }

// At returns element i, repeating a scalar for every index.
func (v Value) At(i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

// Broadcast expands v to n samples. A scalar is repeated; a vector of length n
// is copied as is.
func (v Value) Broadcast(n int) ([]float64, error) {
	if len(v) != 1 && len(v) != n {
		return nil, fmt.Errorf("%w: cannot broadcast %d values to %d samples", ErrShape, len(v), n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v.At(i)
	}
	return out, nil
}

func broadcastLen(args ...Value) (int, error) {
	n := 1
	for _, a := range args {
		switch {
		case len(a) == 0:
			return 0, fmt.Errorf("%w: empty argument", ErrShape)
		case len(a) == 1:
		case n == 1:
			n = len(a)
		case len(a) != n:
			return 0, fmt.Errorf("%w: lengths %d and %d", ErrShape, n, len(a))
		}
	}
	return n, nil
}

// Map1 applies f elementwise.
func Map1(a Value, f func(float64) float64) Value {
	out := make(Value, len(a))
	for i, x := range a {
		out[i] = f(x)
	}
	return out
}

// Map2 applies f elementwise with scalar broadcasting. Callers must pass
// compatible shapes; Operator.Apply checks them.
func Map2(a, b Value, f func(x, y float64) float64) Value {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Value, n)
	for i := range out {
		out[i] = f(a.At(i), b.At(i))
	}
	return out
}

func (n *OpNode) Evaluate() (Value, error) {
	args := make([]Value, len(n.Args))
	for i, c := range n.Args {
		v, err := c.Evaluate()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return n.Op.Apply(args...)
}

func (l *Leaf) Evaluate() (Value, error) {
	return Scalar(l.Val), nil
}

func (v *VarLeaf) Evaluate() (Value, error) {
	if !v.bound {
		return nil, fmt.Errorf("%w: %q", ErrUnassigned, v.Name)
	}
	return v.value, nil
}

func (s *SpecialLeaf) Evaluate() (Value, error) {
	return Scalar(s.Val), nil
}
