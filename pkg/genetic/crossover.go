package genetic

import (
	"math/rand"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// SubEx exchanges one child subtree between the two parents.
type SubEx struct{}

func (SubEx) Name() string { return "subex" }

// Recombine copies both parents, picks an operator node in each (roots
// included) and swaps a random child slot of one with a random child slot of
// the other.
func (SubEx) Recombine(a, b *expr.Tree, rng *rand.Rand) (*expr.Tree, *expr.Tree) {
	c1 := a.DeepCopy()
	c2 := b.DeepCopy()

	nodesA := opNodes(c1, true)
	nodesB := opNodes(c2, true)
	if len(nodesA) == 0 || len(nodesB) == 0 {
		return c1, c2
	}

	p1 := nodesA[rng.Intn(len(nodesA))]
	p2 := nodesB[rng.Intn(len(nodesB))]
	i := rng.Intn(len(p1.Args))
	j := rng.Intn(len(p2.Args))

	// Swap the subtrees
	p1.Args[i], p2.Args[j] = p2.Args[j], p1.Args[i]

	c1.Update()
	c2.Update()
	return c1, c2
}
