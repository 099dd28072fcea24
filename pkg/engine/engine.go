package engine

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/funcs"
	"github.com/wildfunctions/symgp/pkg/genetic"
	"github.com/wildfunctions/symgp/pkg/pool"
)

// Model owns a population of expression trees and evolves it against data.
// A Model is not safe for concurrent use.
type Model struct {
	cfg        Config
	pool       *pool.Pool
	mutator    genetic.Mutator
	recombiner genetic.Recombiner
	scorer     *scorer
	rng        *rand.Rand
	log        *slog.Logger

	population []*expr.Tree
	mse        []float64 // aligned with population after Evolve
	history    []GenerationReport
	params     EvolveParams
}

// New creates a model from the given config. Every random draw the model
// makes goes through one generator seeded with cfg.Seed.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ops := cfg.Operators
	if len(ops) == 0 {
		var err error
		if ops, err = funcs.Lookup(cfg.Functions...); err != nil {
			return nil, err
		}
	}
	p, err := pool.New(ops, cfg.Variables, cfg.UnaryProb, cfg.Terminals)
	if err != nil {
		return nil, err
	}
	weights := cfg.MutationWeights
	if len(weights) == 0 {
		weights = genetic.DefaultWeights()
	}
	mut, err := genetic.NewMixed(genetic.Env{Pool: p, MaxDepth: cfg.MaxDepth}, weights)
	if err != nil {
		return nil, err
	}
	sc, err := newScorer(cfg.Workers, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Model{
		cfg:        cfg,
		pool:       p,
		mutator:    mut,
		recombiner: genetic.SubEx{},
		scorer:     sc,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		log:        logger,
	}, nil
}

// Config returns the model's configuration.
func (m *Model) Config() Config { return m.cfg }

// Pool returns the gene pool the model grows trees from.
func (m *Model) Pool() *pool.Pool { return m.pool }

// Sample grows one tree without touching the population.
func (m *Model) Sample() *expr.Tree {
	return m.pool.GrowTree(m.rng, m.cfg.MaxDepth)
}

// Populate replaces the population with PopulationSize fresh trees.
func (m *Model) Populate() {
	pop := make([]*expr.Tree, m.cfg.PopulationSize)
	for i := range pop {
		pop[i] = m.Sample()
	}
	m.population = pop
	m.mse = nil
}

// Kill clears the population.
func (m *Model) Kill() {
	m.population = nil
	m.mse = nil
}

// Population returns a copy of the population slice. The trees are shared.
func (m *Model) Population() []*expr.Tree {
	return append([]*expr.Tree(nil), m.population...)
}

// Len returns the population size.
func (m *Model) Len() int { return len(m.population) }

// At returns the i-th individual.
func (m *Model) At(i int) *expr.Tree { return m.population[i] }

// All iterates over the population in order.
func (m *Model) All() iter.Seq2[int, *expr.Tree] {
	return func(yield func(int, *expr.Tree) bool) {
		for i, t := range m.population {
			if !yield(i, t) {
				return
			}
		}
	}
}

// History returns the reports of every generation evolved so far.
func (m *Model) History() []GenerationReport {
	return append([]GenerationReport(nil), m.history...)
}

// MSE returns the error of the i-th individual as of the end of the last
// Evolve call, and false if it is not known.
func (m *Model) MSE(i int) (float64, bool) {
	if i < 0 || i >= len(m.mse) {
		return 0, false
	}
	return m.mse[i], true
}

// ranked is one scored individual.
type ranked struct {
	tree    *expr.Tree
	mse     float64
	fitness float64
}

// Evolve runs generations rounds of selection and variation against the
// samples in X (variables × samples, rows in Config.Variables order) and the
// targets y. Afterwards the population is sorted by ascending MSE so At(0) is
// the best fit. An empty population is populated first.
func (m *Model) Evolve(X mat.Matrix, y []float64, generations int, p EvolveParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ParsimonyFormat == "" {
		p.ParsimonyFormat = expr.Linear
	}
	rows, cols := X.Dims()
	switch {
	case rows != len(m.cfg.Variables):
		return fmt.Errorf("%w: %d input rows for %d variables", expr.ErrConfig, rows, len(m.cfg.Variables))
	case cols != len(y):
		return fmt.Errorf("%w: %d samples but %d targets", expr.ErrShape, cols, len(y))
	case generations < 0:
		return fmt.Errorf("%w: negative generation count %d", expr.ErrConfig, generations)
	}
	if len(m.population) == 0 {
		m.log.Info("population empty, growing a new one", "size", m.cfg.PopulationSize)
		m.Populate()
	}

	m.params = p
	m.scorer.reset()
	m.log.Info("starting evolution",
		"population", len(m.population), "generations", generations,
		"max_depth", m.cfg.MaxDepth, "workers", m.scorer.workers, "seed", m.cfg.Seed)

	best := math.Inf(-1)
	for gen := 0; gen < generations; gen++ {
		weight := p.Parsimony.At(gen, generations)
		scored, err := m.rank(X, y, weight, p.ParsimonyFormat)
		if err != nil {
			return fmt.Errorf("generation %d: %w", gen, err)
		}

		elites := int(math.Round(p.Elitism.At(gen, generations) * float64(m.cfg.PopulationSize)))
		if elites > len(scored) {
			elites = len(scored)
		}
		next := make([]*expr.Tree, 0, m.cfg.PopulationSize+1)
		for _, r := range scored[:elites] {
			next = append(next, r.tree)
		}
		offspring := m.breed(scored, m.cfg.PopulationSize-elites, p.Mutation.At(gen, generations), p)

		report := newGenerationReport(gen, scored, elites, len(offspring))
		report.CacheHits = int(m.scorer.hits.Load())
		m.record(report, genetic.Fitter(report.BestFitness.Float(), best) || gen%20 == 0)
		if genetic.Fitter(report.BestFitness.Float(), best) {
			best = report.BestFitness.Float()
		}

		m.population = append(next, offspring...)
	}

	return m.finish(X, y)
}

// rank scores the population and sorts it by descending fitness. NaN
// fitness ranks last.
func (m *Model) rank(X mat.Matrix, y []float64, weight float64, format expr.ParsimonyFormat) ([]ranked, error) {
	errs, err := m.scorer.mse(m.population, X, y, m.cfg.Variables)
	if err != nil {
		return nil, err
	}
	scored := make([]ranked, len(m.population))
	for i, t := range m.population {
		f, err := expr.Penalize(errs[i], t.Depth(), weight, format)
		if err != nil {
			return nil, err
		}
		scored[i] = ranked{tree: t, mse: errs[i], fitness: f}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return genetic.Fitter(scored[i].fitness, scored[j].fitness)
	})
	for i, r := range scored {
		m.population[i] = r.tree
	}
	return scored, nil
}

// breed produces at least want offspring from the ranked population. A
// recombination yields two children, so one more than want may be returned.
func (m *Model) breed(scored []ranked, want int, mutation float64, p EvolveParams) []*expr.Tree {
	fitness := make([]float64, len(scored))
	for i, r := range scored {
		fitness[i] = r.fitness
	}
	top, rest := groups(len(scored), p.Grouping)

	pick := func() *expr.Tree {
		candidates := top
		if rest != nil && m.rng.Float64() >= groupBias {
			candidates = rest
		}
		return scored[genetic.Tournament(m.rng, fitness, candidates, p.PoolSize)].tree
	}

	out := make([]*expr.Tree, 0, want+1)
	for len(out) < want {
		if m.rng.Float64() < mutation {
			out = append(out, m.mutator.Mutate(pick(), m.rng))
			continue
		}
		a, b := m.recombiner.Recombine(pick(), pick(), m.rng)
		out = append(out, a, b)
	}
	return out
}

// groups splits ranks 0..n-1 into a top fraction and the rest. Without
// grouping, or when either side would be empty, top is nil (draw from
// everyone) and rest is nil.
func groups(n int, fraction float64) (top, rest []int) {
	if fraction <= 0 {
		return nil, nil
	}
	k := int(math.Round(fraction * float64(n)))
	if k < 1 || k >= n {
		return nil, nil
	}
	top = make([]int, k)
	for i := range top {
		top[i] = i
	}
	rest = make([]int, n-k)
	for i := range rest {
		rest[i] = k + i
	}
	return top, rest
}

// finish scores the final population and sorts it by ascending MSE.
func (m *Model) finish(X mat.Matrix, y []float64) error {
	errs, err := m.scorer.mse(m.population, X, y, m.cfg.Variables)
	if err != nil {
		return fmt.Errorf("final scoring: %w", err)
	}
	idx := make([]int, len(m.population))
	for i := range idx {
		idx[i] = i
	}
	// lower error first, NaN last
	sort.SliceStable(idx, func(a, b int) bool {
		return genetic.Fitter(-errs[idx[a]], -errs[idx[b]])
	})
	pop := make([]*expr.Tree, len(idx))
	mse := make([]float64, len(idx))
	for i, j := range idx {
		pop[i] = m.population[j]
		mse[i] = errs[j]
	}
	m.population = pop
	m.mse = mse
	if len(pop) > 0 {
		m.log.Info("evolution finished",
			"best", pop[0].String(), "mse", mse[0], "depth", pop[0].Depth(),
			"cache_hits", m.scorer.hits.Load())
	}
	return nil
}

func (m *Model) record(r GenerationReport, announce bool) {
	m.history = append(m.history, r)
	attrs := []any{
		"gen", r.Generation, "best_fitness", r.BestFitness.Float(), "best_mse", r.BestMSE.Float(),
		"mean_fitness", r.MeanFitness.Float(), "depth", r.BestDepth, "best", r.BestExpression,
	}
	if announce {
		m.log.Info("generation", attrs...)
	} else {
		m.log.Debug("generation", attrs...)
	}
	if m.cfg.OnGeneration != nil {
		m.cfg.OnGeneration(r)
	}
}
