package genetic

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/funcs"
	"github.com/wildfunctions/symgp/pkg/pool"
)

func testEnv(ops ...*expr.Operator) Env {
	if len(ops) == 0 {
		ops = []*expr.Operator{funcs.Add, funcs.Sub, funcs.Mul, funcs.Sin, funcs.Cos}
	}
	p, err := pool.New(ops, []string{"x", "y"}, 0.3, pool.DefaultTerminalPolicy())
	Expect(err).NotTo(HaveOccurred())
	return Env{Pool: p, MaxDepth: 3}
}

func vx() expr.Node { return expr.NewVarLeaf("x") }
func vy() expr.Node { return expr.NewVarLeaf("y") }

// (x * 2) + sin(y), depth 3
func sampleTree() *expr.Tree {
	return expr.NewTree(expr.MustOpNode(funcs.Add,
		expr.MustOpNode(funcs.Mul, vx(), expr.NewLeaf(2)),
		expr.MustOpNode(funcs.Sin, vy())), true)
}

func checkArity(t *expr.Tree) {
	t.Walk(func(n expr.Node, _ int) bool {
		if op, ok := n.(*expr.OpNode); ok {
			Expect(op.Args).To(HaveLen(op.Op.Arity))
		}
		return true
	})
}

var _ = Describe("Mutators", func() {
	DescribeTable("never modify the parent",
		func(name string) {
			mut, err := Get(name, testEnv())
			Expect(err).NotTo(HaveOccurred())
			Expect(mut.Name()).To(Equal(name))

			rng := rand.New(rand.NewSource(7))
			parent := sampleTree()
			before := parent.String()
			for i := 0; i < 200; i++ {
				child := mut.Mutate(parent, rng)
				Expect(child).NotTo(BeIdenticalTo(parent))
				Expect(child.Root()).NotTo(BeIdenticalTo(parent.Root()))
				checkArity(child)
			}
			Expect(parent.String()).To(Equal(before))
		},
		Entry("point", "point"),
		Entry("perm", "perm"),
		Entry("hoist", "hoist"),
		Entry("const", "const"),
		Entry("collapse", "collapse"),
		Entry("subtree", "subtree"),
		Entry("mixed", "mixed"),
	)

	DescribeTable("are no-ops on a single terminal",
		func(name string) {
			mut, err := Get(name, testEnv())
			Expect(err).NotTo(HaveOccurred())
			rng := rand.New(rand.NewSource(1))

			parent := expr.NewTree(vx(), false)
			child := mut.Mutate(parent, rng)
			Expect(child.Equal(parent)).To(BeTrue())
			Expect(child).NotTo(BeIdenticalTo(parent))
		},
		Entry("point", "point"),
		Entry("perm", "perm"),
		Entry("hoist", "hoist"),
		Entry("collapse", "collapse"),
		Entry("subtree", "subtree"),
	)

	It("point mutation keeps the arity of the replaced operator", func() {
		env := testEnv(funcs.Add, funcs.Mul, funcs.Sub)
		mut := &PointMut{Env: env}
		rng := rand.New(rand.NewSource(3))
		parent := expr.NewTree(expr.MustOpNode(funcs.Add, vx(), vy()), false)
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			child := mut.Mutate(parent, rng)
			root, ok := child.Root().(*expr.OpNode)
			Expect(ok).To(BeTrue())
			Expect(root.Op.Arity).To(Equal(2))
			seen[root.Op.Name] = true
		}
		Expect(seen).To(HaveKey("mul"))
		Expect(seen).To(HaveKey("sub"))
	})

	It("permutation mutation reorders children", func() {
		mut := &PermMut{}
		rng := rand.New(rand.NewSource(5))
		parent := expr.NewTree(expr.MustOpNode(funcs.Sub, vx(), vy()), false)
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			seen[mut.Mutate(parent, rng).String()] = true
		}
		Expect(seen).To(Equal(map[string]bool{"(x - y)": true, "(y - x)": true}))
	})

	It("permutation mutation skips unary-only trees", func() {
		parent := expr.NewTree(expr.MustOpNode(funcs.Sin, vx()), false)
		child := (&PermMut{}).Mutate(parent, rand.New(rand.NewSource(1)))
		Expect(child.String()).To(Equal("sin(x)"))
	})

	It("hoist mutation promotes a non-root operator node", func() {
		mut := &HoistMut{}
		rng := rand.New(rand.NewSource(11))
		parent := sampleTree()
		for i := 0; i < 50; i++ {
			child := mut.Mutate(parent, rng)
			Expect(child.String()).To(BeElementOf("(x * 2)", "sin(y)"))
			Expect(child.Depth()).To(BeNumerically("<", parent.Depth()))
		}
	})

	It("const mutation redraws plain constants only", func() {
		mut := &ConstMut{Env: testEnv()}
		rng := rand.New(rand.NewSource(13))

		parent := expr.NewTree(expr.MustOpNode(funcs.Add, vx(), expr.NewLeaf(3)), false)
		child := mut.Mutate(parent, rng)
		Expect(child.String()).NotTo(Equal(parent.String()))
		Expect(child.Inputs("x")).To(HaveLen(1))

		special := expr.NewTree(expr.MustOpNode(funcs.Add, vx(), expr.NewSpecialLeaf("pi", math.Pi)), false)
		Expect(mut.Mutate(special, rng).Equal(special)).To(BeTrue())
	})

	It("collapse mutation never deepens a tree", func() {
		mut := &CollapseMut{Env: testEnv()}
		rng := rand.New(rand.NewSource(17))
		parent := sampleTree()
		for i := 0; i < 100; i++ {
			Expect(mut.Mutate(parent, rng).Depth()).To(BeNumerically("<=", parent.Depth()))
		}
	})

	It("subtree mutation stays within the depth limit", func() {
		env := testEnv()
		mut := &SubTreeMut{Env: env}
		rng := rand.New(rand.NewSource(19))
		parent := sampleTree()
		for i := 0; i < 200; i++ {
			Expect(mut.Mutate(parent, rng).Depth()).To(BeNumerically("<=", env.MaxDepth+1))
		}

		// No operator node below the root: nothing to replace.
		flat := expr.NewTree(expr.MustOpNode(funcs.Add, vx(), vy()), false)
		Expect(mut.Mutate(flat, rng).String()).To(Equal("(x + y)"))
	})
})

var _ = Describe("MixedMut", func() {
	It("delegates by weight", func() {
		m, err := NewMixed(testEnv(), map[string]float64{"hoist": 1, "perm": 0})
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(23))
		for i := 0; i < 20; i++ {
			Expect(m.Pick(rng).Name()).To(Equal("hoist"))
		}
	})

	It("draws every mutator with positive weight", func() {
		m, err := NewMixed(testEnv(), DefaultWeights())
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(29))
		counts := map[string]int{}
		for i := 0; i < 4000; i++ {
			counts[m.Pick(rng).Name()]++
		}
		Expect(counts).To(HaveLen(6))
		Expect(counts["point"]).To(BeNumerically(">", counts["hoist"]))
	})

	DescribeTable("rejects bad weights",
		func(weights map[string]float64) {
			_, err := NewMixed(testEnv(), weights)
			Expect(err).To(HaveOccurred())
		},
		Entry("negative", map[string]float64{"point": -1}),
		Entry("all zero", map[string]float64{"point": 0}),
		Entry("empty", map[string]float64{}),
		Entry("unknown", map[string]float64{"teleport": 1}),
		Entry("nested", map[string]float64{"mixed": 1}),
	)

	It("lists registered mutators", func() {
		Expect(Names()).To(ContainElements("point", "perm", "hoist", "const", "collapse", "subtree", "mixed"))
		_, err := Get("teleport", testEnv())
		Expect(err).To(MatchError(ContainSubstring("unknown mutator")))
	})
})

var _ = Describe("SubEx", func() {
	It("swaps child subtrees and leaves the parents alone", func() {
		a := expr.NewTree(expr.MustOpNode(funcs.Sin, vx()), false)
		b := expr.NewTree(expr.MustOpNode(funcs.Cos, vy()), false)

		c1, c2 := SubEx{}.Recombine(a, b, rand.New(rand.NewSource(1)))
		Expect(c1.String()).To(Equal("sin(y)"))
		Expect(c2.String()).To(Equal("cos(x)"))
		Expect(c1.Inputs("y")).To(HaveLen(1))
		Expect(c1.Inputs("x")).To(BeEmpty())
		Expect(a.String()).To(Equal("sin(x)"))
		Expect(b.String()).To(Equal("cos(y)"))
	})

	It("returns copies when a parent has no operator node", func() {
		a := expr.NewTree(vx(), false)
		b := sampleTree()
		c1, c2 := SubEx{}.Recombine(a, b, rand.New(rand.NewSource(1)))
		Expect(c1.Equal(a)).To(BeTrue())
		Expect(c2.Equal(b)).To(BeTrue())
		Expect(c2.Root()).NotTo(BeIdenticalTo(b.Root()))
	})

	It("keeps every operator's arity", func() {
		rng := rand.New(rand.NewSource(31))
		env := testEnv()
		for i := 0; i < 100; i++ {
			c1, c2 := SubEx{}.Recombine(env.Pool.GrowTree(rng, 3), env.Pool.GrowTree(rng, 3), rng)
			checkArity(c1)
			checkArity(c2)
		}
	})
})

var _ = Describe("Tournament", func() {
	It("returns the fittest individual of the drawn pool", func() {
		fitness := make([]float64, 40)
		src := rand.New(rand.NewSource(37))
		for i := range fitness {
			fitness[i] = -src.Float64() * 100
		}
		for seed := int64(0); seed < 200; seed++ {
			drawn := Draw(rand.New(rand.NewSource(seed)), len(fitness), nil, 5)
			winner := Tournament(rand.New(rand.NewSource(seed)), fitness, nil, 5)
			Expect(drawn).To(ContainElement(winner))
			for _, i := range drawn {
				Expect(fitness[winner]).To(BeNumerically(">=", fitness[i]))
			}
		}
	})

	It("draws distinct individuals", func() {
		rng := rand.New(rand.NewSource(41))
		for i := 0; i < 100; i++ {
			drawn := Draw(rng, 10, nil, 10)
			Expect(drawn).To(HaveLen(10))
			Expect(drawn).To(ConsistOf(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))
		}
	})

	It("caps the pool at the candidate count", func() {
		rng := rand.New(rand.NewSource(43))
		Expect(Draw(rng, 3, nil, 10)).To(HaveLen(3))
		Expect(Draw(rng, 3, nil, 0)).To(HaveLen(1))
		Expect(Tournament(rng, []float64{1, 5, 3}, nil, 10)).To(Equal(1))
		Expect(Tournament(rng, nil, nil, 3)).To(Equal(-1))
	})

	It("only draws from the given candidates", func() {
		rng := rand.New(rand.NewSource(47))
		fitness := []float64{10, 9, 8, 7, 6}
		for i := 0; i < 50; i++ {
			Expect(Tournament(rng, fitness, []int{3, 4}, 2)).To(Equal(3))
		}
		Expect(Tournament(rng, fitness, []int{}, 2)).To(Equal(-1))
	})

	DescribeTable("Fitter",
		func(a, b float64, want bool) {
			Expect(Fitter(a, b)).To(Equal(want))
		},
		Entry("greater", 2.0, 1.0, true),
		Entry("smaller", 1.0, 2.0, false),
		Entry("equal", 1.0, 1.0, false),
		Entry("over NaN", -1e9, math.NaN(), true),
		Entry("NaN", math.NaN(), -1e9, false),
		Entry("both NaN", math.NaN(), math.NaN(), false),
		Entry("over -Inf", -1e300, math.Inf(-1), true),
	)
})
