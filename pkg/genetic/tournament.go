package genetic

import (
	"math"
	"math/rand"
)

// Fitter reports whether fitness a ranks above b. NaN ranks below everything.
func Fitter(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}

// Draw picks k distinct entries of candidates, or of 0..n-1 when candidates
// is nil. k is clamped to [1, available].
func Draw(rng *rand.Rand, n int, candidates []int, k int) []int {
	var idx []int
	if candidates == nil {
		idx = make([]int, n)
		for i := range idx {
			idx[i] = i
		}
	} else {
		idx = append([]int(nil), candidates...)
	}
	if k > len(idx) {
		k = len(idx)
	}
	if k < 1 {
		k = 1
	}
	// partial Fisher-Yates
	for i := 0; i < k && i < len(idx)-1; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// Tournament draws poolSize distinct individuals and returns the index of
// the fittest. fitness is indexed by population position; candidates limits
// the draw to a subset and may be nil. It returns -1 if there is nothing to
// draw from.
func Tournament(rng *rand.Rand, fitness []float64, candidates []int, poolSize int) int {
	if len(fitness) == 0 || (candidates != nil && len(candidates) == 0) {
		return -1
	}
	drawn := Draw(rng, len(fitness), candidates, poolSize)
	best := drawn[0]
	for _, i := range drawn[1:] {
		if Fitter(fitness[i], fitness[best]) {
			best = i
		}
	}
	return best
}
