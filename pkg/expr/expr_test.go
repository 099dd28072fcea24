package expr

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var (
	opAdd = &Operator{Name: "add", Arity: 2, Template: "(#1 + #2)",
		Fn: func(a []Value) Value { return Map2(a[0], a[1], func(x, y float64) float64 { return x + y }) }}
	opMul = &Operator{Name: "mul", Arity: 2, Template: "(#1 * #2)",
		Fn: func(a []Value) Value { return Map2(a[0], a[1], func(x, y float64) float64 { return x * y }) }}
	opNeg = &Operator{Name: "neg", Arity: 1, Template: "-(#1)",
		Fn: func(a []Value) Value { return Map1(a[0], func(x float64) float64 { return -x }) }}
	opSub = &Operator{Name: "sub", Arity: 2, Template: "(#1 - #2)",
		Fn: func(a []Value) Value { return Map2(a[0], a[1], func(x, y float64) float64 { return x - y }) },
		Rule: func(c []Node) (Rewrite, bool) {
			if c[0].Equal(c[1]) {
				return Rewrite{Const: true, Value: 0}, true
			}
			return Rewrite{}, false
		}}
	opDiv = &Operator{Name: "div", Arity: 2, Template: "(#1 / #2)",
		Fn: func(a []Value) Value { return Map2(a[0], a[1], func(x, y float64) float64 { return x / y }) }}
	opSum3 = &Operator{Name: "sum3", Arity: 3,
		Fn: func(a []Value) Value {
			s := Map2(a[0], a[1], func(x, y float64) float64 { return x + y })
			return Map2(s, a[2], func(x, y float64) float64 { return x + y })
		}}
)

func init() {
	// add(a, a) → mul(2, a)
	opAdd.Rule = func(c []Node) (Rewrite, bool) {
		if c[0].Equal(c[1]) {
			return Rewrite{Op: opMul, Children: []Node{NewLeaf(2), c[0]}}, true
		}
		return Rewrite{}, false
	}
	// neg(neg(a)) → a
	opNeg.Rule = func(c []Node) (Rewrite, bool) {
		if inner, ok := c[0].(*OpNode); ok && inner.Op.Name == "neg" {
			return Rewrite{Replace: inner.Args[0]}, true
		}
		return Rewrite{}, false
	}
}

func inputs(rows ...[]float64) *mat.Dense {
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data)
}

func assertValues(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values %v, want %d values %v", len(got), got, len(want), want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("value[%d] = %v, want %v (tol=%v)", i, got[i], want[i], tol)
		}
	}
}

func TestLeafEvaluate(t *testing.T) {
	v, err := NewLeaf(3.5).Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, v, []float64{3.5}, 0)

	v, err = NewSpecialLeaf("pi", math.Pi).Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, v, []float64{math.Pi}, 0)
}

func TestVarLeafUnassigned(t *testing.T) {
	x := NewVarLeaf("x")
	if _, err := x.Evaluate(); !errors.Is(err, ErrUnassigned) {
		t.Fatalf("Evaluate() error = %v, want ErrUnassigned", err)
	}
	x.Assign(Value{1, 2})
	if !x.Assigned() {
		t.Fatal("Assigned() = false after Assign")
	}
	x.Reset()
	if _, err := x.Evaluate(); !errors.Is(err, ErrUnassigned) {
		t.Fatalf("Evaluate() after Reset error = %v, want ErrUnassigned", err)
	}
}

func TestOpNodeArity(t *testing.T) {
	if _, err := NewOpNode(opAdd, NewLeaf(1)); !errors.Is(err, ErrArity) {
		t.Errorf("NewOpNode with 1 child error = %v, want ErrArity", err)
	}
	if _, err := NewOpNode(nil); !errors.Is(err, ErrConfig) {
		t.Errorf("NewOpNode(nil) error = %v, want ErrConfig", err)
	}
	if _, err := opAdd.Apply(Scalar(1)); !errors.Is(err, ErrArity) {
		t.Errorf("Apply with 1 arg error = %v, want ErrArity", err)
	}
}

func TestNewOperatorValidation(t *testing.T) {
	fn := func(a []Value) Value { return a[0] }
	if _, err := NewOperator("", 1, fn); !errors.Is(err, ErrConfig) {
		t.Errorf("empty name error = %v, want ErrConfig", err)
	}
	if _, err := NewOperator("id", 0, fn); !errors.Is(err, ErrArity) {
		t.Errorf("arity 0 error = %v, want ErrArity", err)
	}
	if _, err := NewOperator("id", 1, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("nil fn error = %v, want ErrConfig", err)
	}
	if op, err := NewOperator("id", 1, fn); err != nil || op.Arity != 1 {
		t.Errorf("NewOperator(id) = %v, %v", op, err)
	}
}

func TestBroadcasting(t *testing.T) {
	x := NewVarLeaf("x")
	x.Assign(Value{1, 2, 3})
	n := MustOpNode(opMul, NewLeaf(2), x)
	v, err := n.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, v, []float64{2, 4, 6}, 0)
}

func TestShapeMismatch(t *testing.T) {
	x := NewVarLeaf("x")
	y := NewVarLeaf("y")
	x.Assign(Value{1, 2, 3})
	y.Assign(Value{1, 2})
	n := MustOpNode(opAdd, x, y)
	if _, err := n.Evaluate(); !errors.Is(err, ErrShape) {
		t.Fatalf("Evaluate() error = %v, want ErrShape", err)
	}
	if _, err := Scalar(1).Broadcast(0); err != nil {
		t.Errorf("scalar broadcast to 0 samples: %v", err)
	}
	if _, err := (Value{1, 2}).Broadcast(3); !errors.Is(err, ErrShape) {
		t.Errorf("Broadcast(3) error = %v, want ErrShape", err)
	}
}

func TestString(t *testing.T) {
	x := NewVarLeaf("x")
	tests := []struct {
		node Node
		want string
	}{
		{NewLeaf(2), "2"},
		{NewLeaf(-1.5), "(-1.5)"},
		{NewSpecialLeaf("pi", math.Pi), "pi"},
		{MustOpNode(opAdd, x, NewLeaf(1)), "(x + 1)"},
		{MustOpNode(opNeg, MustOpNode(opMul, x, x)), "-((x * x))"},
		{MustOpNode(opSum3, x, NewLeaf(1), NewLeaf(2)), "sum3(x, 1, 2)"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTemplateManyPlaceholders(t *testing.T) {
	args := make([]Node, 11)
	for i := range args {
		args[i] = NewLeaf(float64(i + 1))
	}
	op := &Operator{Name: "wide", Arity: 11, Template: "#1|#10|#11",
		Fn: func(a []Value) Value { return a[0] }}
	if got := MustOpNode(op, args...).String(); got != "1|10|11" {
		t.Errorf("String() = %q, want %q", got, "1|10|11")
	}
}

func TestDepthAndCount(t *testing.T) {
	x := NewVarLeaf("x")
	if d := x.Depth(); d != 1 {
		t.Errorf("terminal Depth() = %d, want 1", d)
	}
	n := MustOpNode(opAdd, MustOpNode(opMul, x, NewLeaf(2)), NewLeaf(1))
	if d := n.Depth(); d != 3 {
		t.Errorf("Depth() = %d, want 3", d)
	}
	if c := n.NodeCount(); c != 5 {
		t.Errorf("NodeCount() = %d, want 5", c)
	}
}

func TestSubnodes(t *testing.T) {
	x := NewVarLeaf("x")
	inner := MustOpNode(opMul, x, NewLeaf(2))
	root := MustOpNode(opAdd, inner, NewLeaf(1))

	if got := len(Subnodes(root, true, true)); got != 5 {
		t.Errorf("all nodes = %d, want 5", got)
	}
	got := Subnodes(root, false, false)
	if len(got) != 1 || got[0] != Node(inner) {
		t.Errorf("internal non-root nodes = %v, want [%v]", got, inner)
	}
	if got := Subnodes(root, false, true); len(got) != 2 || got[0] != Node(root) {
		t.Errorf("internal nodes with root = %v", got)
	}
	if got := Subnodes(x, true, false); len(got) != 0 {
		t.Errorf("Subnodes of a terminal without root = %v, want none", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	x := NewVarLeaf("x")
	x.Assign(Scalar(4))
	orig := MustOpNode(opAdd, x, NewLeaf(1))
	cp := orig.Clone().(*OpNode)

	if !orig.Equal(cp) {
		t.Fatal("clone should be structurally equal")
	}
	if cp.Args[0].(*VarLeaf).Assigned() {
		t.Error("cloned VarLeaf should be unbound")
	}
	cp.Args[1].(*Leaf).Val = 9
	if orig.Args[1].(*Leaf).Val != 1 {
		t.Error("mutating the clone changed the original")
	}
	if cp.Op != orig.Op {
		t.Error("clone should share the operator pointer")
	}
}

func TestEqual(t *testing.T) {
	x := NewVarLeaf("x")
	a := MustOpNode(opAdd, x, NewLeaf(1))
	if !a.Equal(MustOpNode(opAdd, NewVarLeaf("x"), NewLeaf(1))) {
		t.Error("same structure should be equal")
	}
	if a.Equal(MustOpNode(opAdd, NewLeaf(1), NewVarLeaf("x"))) {
		t.Error("commuted operands are not structurally equal")
	}
	if NewLeaf(1).Equal(NewSpecialLeaf("one", 1)) {
		t.Error("Leaf and SpecialLeaf should differ")
	}
	if NewVarLeaf("x").Equal(NewVarLeaf("y")) {
		t.Error("different names should differ")
	}
}

func TestSimplifyRules(t *testing.T) {
	x := NewVarLeaf("x")

	got := Simplify(MustOpNode(opSub, x, NewVarLeaf("x")))
	if l, ok := got.(*Leaf); !ok || l.Val != 0 {
		t.Errorf("x - x simplified to %v, want 0", got)
	}

	got = Simplify(MustOpNode(opAdd, NewVarLeaf("x"), NewVarLeaf("x")))
	if got.String() != "(2 * x)" {
		t.Errorf("x + x simplified to %v, want (2 * x)", got)
	}

	got = Simplify(MustOpNode(opNeg, MustOpNode(opNeg, NewVarLeaf("y"))))
	if v, ok := got.(*VarLeaf); !ok || v.Name != "y" {
		t.Errorf("neg(neg(y)) simplified to %v, want y", got)
	}
}

func TestSimplifyFoldsConstants(t *testing.T) {
	n := MustOpNode(opAdd, MustOpNode(opMul, NewLeaf(2), NewLeaf(3)), NewVarLeaf("x"))
	got := Simplify(n)
	if got.String() != "(6 + x)" {
		t.Errorf("Simplify = %v, want (6 + x)", got)
	}

	// 1/0 is not finite and must stay as is.
	div := MustOpNode(opDiv, NewLeaf(1), NewLeaf(0))
	if _, ok := Simplify(div).(*OpNode); !ok {
		t.Error("non-finite constant expression should not fold")
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	n := MustOpNode(opAdd,
		MustOpNode(opSub, NewVarLeaf("x"), NewVarLeaf("x")),
		MustOpNode(opAdd, NewVarLeaf("y"), NewVarLeaf("y")))
	once := Simplify(n)
	twice := Simplify(once.Clone())
	if !once.Equal(twice) {
		t.Errorf("Simplify not idempotent: %v then %v", once, twice)
	}
}

func TestSimplifyMalformedRewrite(t *testing.T) {
	bad := &Operator{Name: "bad", Arity: 1,
		Fn: func(a []Value) Value { return a[0] },
		Rule: func(c []Node) (Rewrite, bool) {
			return Rewrite{Op: opAdd, Children: c}, true
		}}
	x := NewVarLeaf("x")
	n := MustOpNode(bad, x)
	if got := Simplify(n); got != Node(n) || n.Op != bad {
		t.Errorf("malformed rewrite should leave node unchanged, got %v", got)
	}
}

func TestTreeEvaluate(t *testing.T) {
	root := MustOpNode(opAdd, MustOpNode(opMul, NewVarLeaf("x"), NewVarLeaf("y")), NewVarLeaf("x"))
	tree := NewTree(root, false)
	X := inputs([]float64{1, 2, 3}, []float64{10, 20, 30})

	got, err := tree.Evaluate(X, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, got, []float64{11, 42, 93}, 1e-12)

	// Order maps rows to names, so swapping the names swaps the roles.
	got, err = tree.Evaluate(X, []string{"y", "x"})
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, got, []float64{20, 60, 120}, 1e-12)

	if _, err := tree.Evaluate(X, []string{"x"}); !errors.Is(err, ErrConfig) {
		t.Errorf("short order error = %v, want ErrConfig", err)
	}
}

func TestTreeMissingInput(t *testing.T) {
	tree := NewTree(MustOpNode(opAdd, NewVarLeaf("x"), NewVarLeaf("z")), false)
	X := inputs([]float64{1, 2})
	if _, err := tree.Evaluate(X, []string{"x"}); !errors.Is(err, ErrUnassigned) {
		t.Fatalf("Evaluate error = %v, want ErrUnassigned", err)
	}
}

func TestTreeConstantBroadcast(t *testing.T) {
	tree := NewTree(NewLeaf(7), false)
	got, err := tree.Evaluate(inputs([]float64{1, 2, 3, 4}), []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	assertValues(t, got, []float64{7, 7, 7, 7}, 0)
}

func TestTreeInputsCache(t *testing.T) {
	root := MustOpNode(opAdd, NewVarLeaf("x"), MustOpNode(opMul, NewVarLeaf("x"), NewVarLeaf("y")))
	tree := NewTree(root, false)
	if n := len(tree.Inputs("x")); n != 2 {
		t.Errorf("Inputs(x) = %d leaves, want 2", n)
	}
	if names := tree.InputNames(); len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Errorf("InputNames() = %v", names)
	}

	// Replace y with a constant and refresh.
	root.Args[1].(*OpNode).Args[1] = NewLeaf(3)
	tree.Update()
	if n := len(tree.Inputs("y")); n != 0 {
		t.Errorf("Inputs(y) after Update = %d, want 0", n)
	}
	if d := tree.Depth(); d != 3 {
		t.Errorf("Depth() = %d, want 3", d)
	}
}

func TestTreeDeepCopy(t *testing.T) {
	tree := NewTree(MustOpNode(opAdd, NewVarLeaf("x"), NewLeaf(1)), false)
	cp := tree.DeepCopy()
	if !tree.Equal(cp) {
		t.Fatal("copy should equal the original")
	}
	cp.Root().(*OpNode).Args[1].(*Leaf).Val = 5
	cp.Update()
	if tree.String() != "(x + 1)" {
		t.Errorf("original changed to %v after editing the copy", tree)
	}
	if tree.Inputs("x")[0] == cp.Inputs("x")[0] {
		t.Error("copy shares VarLeaf instances with the original")
	}
}

func TestTreeSimplifyOnConstruct(t *testing.T) {
	tree := NewTree(MustOpNode(opSub, NewVarLeaf("x"), NewVarLeaf("x")), true)
	if tree.String() != "0" || tree.Depth() != 1 {
		t.Errorf("NewTree(simplify) = %v depth %d, want 0 depth 1", tree, tree.Depth())
	}
	if len(tree.InputNames()) != 0 {
		t.Errorf("InputNames() = %v, want none", tree.InputNames())
	}
}

func TestFormat(t *testing.T) {
	tree := NewTree(MustOpNode(opAdd, NewVarLeaf("x"), NewSpecialLeaf("pi", math.Pi)), false)
	var buf bytes.Buffer
	if err := tree.Format(&buf); err != nil {
		t.Fatal(err)
	}
	want := "add\n  var x\n  const pi\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestMeanSquaredError(t *testing.T) {
	tests := []struct {
		name      string
		pred, tgt []float64
		want      float64
	}{
		{"exact", []float64{1, 2}, []float64{1, 2}, 0},
		{"offset", []float64{2, 3}, []float64{1, 2}, 1},
		{"both NaN", []float64{math.NaN(), 2}, []float64{math.NaN(), 4}, 2},
		{"NaN prediction", []float64{math.NaN(), 2}, []float64{1, 2}, math.Inf(1)},
		{"NaN target", []float64{1, 2}, []float64{math.NaN(), 2}, math.Inf(1)},
		{"inf minus inf", []float64{math.Inf(1)}, []float64{math.Inf(1)}, math.Inf(1)},
	}
	for _, tt := range tests {
		got, err := MeanSquaredError(tt.pred, tt.tgt)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: MSE = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := MeanSquaredError([]float64{1}, []float64{1, 2}); !errors.Is(err, ErrShape) {
		t.Errorf("length mismatch error = %v, want ErrShape", err)
	}
}

func TestFitness(t *testing.T) {
	// x + 1 against y = x: mse 1, depth 2.
	tree := NewTree(MustOpNode(opAdd, NewVarLeaf("x"), NewLeaf(1)), false)
	X := inputs([]float64{1, 2, 3})
	y := []float64{1, 2, 3}

	got, err := tree.Fitness(X, y, []string{"x"}, 0.5, Linear)
	if err != nil {
		t.Fatal(err)
	}
	if got != -2 {
		t.Errorf("linear fitness = %v, want -2", got)
	}
	got, err = tree.Fitness(X, y, []string{"x"}, 0.5, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	if got != -1 {
		t.Errorf("bilinear fitness = %v, want -1", got)
	}
	if _, err := tree.Fitness(X, y, []string{"x"}, 0.5, "cubic"); !errors.Is(err, ErrConfig) {
		t.Errorf("unknown format error = %v, want ErrConfig", err)
	}
	if _, err := ParseParsimonyFormat("cubic"); !errors.Is(err, ErrConfig) {
		t.Errorf("ParseParsimonyFormat error = %v, want ErrConfig", err)
	}
}
