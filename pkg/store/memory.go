package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wildfunctions/symgp/pkg/engine"
)

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	generations map[string][]engine.GenerationReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.generations = make(map[string][]engine.GenerationReport)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	if err := validateID(run.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run.Report.Generations = nil
	run.Report.Top = append([]engine.Individual(nil), run.Report.Top...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return Run{}, false, ErrNotInitialized
	}
	run, ok := s.runs[id]
	return run, ok, nil
}

// SaveGeneration stores gen, replacing an earlier report with the same
// generation index.
func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, gen engine.GenerationReport) error {
	if err := validateID(runID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	gens := s.generations[runID]
	i := sort.Search(len(gens), func(i int) bool { return gens[i].Generation >= gen.Generation })
	switch {
	case i < len(gens) && gens[i].Generation == gen.Generation:
		gens[i] = gen
	default:
		gens = append(gens, engine.GenerationReport{})
		copy(gens[i+1:], gens[i:])
		gens[i] = gen
	}
	s.generations[runID] = gens
	return nil
}

// ListGenerations returns the reports of a run ordered by generation.
func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]engine.GenerationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return append([]engine.GenerationReport(nil), s.generations[runID]...), nil
}
