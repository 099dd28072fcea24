package engine

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	cpool "github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/wildfunctions/symgp/pkg/expr"
)

// scorer computes population MSE in parallel. Results are cached by
// expression string for the lifetime of one data set.
type scorer struct {
	workers int
	cache   *lru.Cache
	hits    atomic.Int64
}

func newScorer(workers, cacheSize int) (*scorer, error) {
	if workers <= 0 {
		workers = 1
	}
	s := &scorer{workers: workers}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("mse cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// reset drops cached results; called whenever the data set changes.
func (s *scorer) reset() {
	if s.cache != nil {
		s.cache.Purge()
	}
	s.hits.Store(0)
}

// mse evaluates every tree. Each goroutine owns one tree and one result slot,
// so trees must be distinct pointers.
func (s *scorer) mse(trees []*expr.Tree, X mat.Matrix, y []float64, order []string) ([]float64, error) {
	out := make([]float64, len(trees))
	p := cpool.New().WithErrors().WithMaxGoroutines(s.workers)
	for i, t := range trees {
		i, t := i, t
		p.Go(func() error {
			key := t.String()
			if s.cache != nil {
				if v, ok := s.cache.Get(key); ok {
					s.hits.Add(1)
					out[i] = v.(float64)
					return nil
				}
			}
			v, err := t.MSE(X, y, order)
			if err != nil {
				return fmt.Errorf("scoring %s: %w", key, err)
			}
			if s.cache != nil {
				s.cache.Add(key, v)
			}
			out[i] = v
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
