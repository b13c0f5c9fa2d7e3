package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"fuzzevo/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type trialKey struct {
	runID string
	trial int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	trials      map[string][]model.Trial
	history     map[trialKey][]float64
	diagnostics map[trialKey][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.trials = make(map[string][]model.Trial)
	s.history = make(map[trialKey][]float64)
	s.diagnostics = make(map[trialKey][]model.GenerationDiagnostics)
	return nil
}

func copyRun(run model.Run) model.Run {
	run.Config.Operators = maps.Clone(run.Config.Operators)
	return run
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = copyRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.Run{}, false, nil
	}
	return copyRun(run), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, copyRun(run))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	delete(s.trials, id)
	for key := range s.history {
		if key.runID == id {
			delete(s.history, key)
		}
	}
	for key := range s.diagnostics {
		if key.runID == id {
			delete(s.diagnostics, key)
		}
	}
	return nil
}

func (s *MemoryStore) SaveTrials(_ context.Context, runID string, trials []model.Trial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.trials[runID] = slices.Clone(trials)
	return nil
}

func (s *MemoryStore) GetTrials(_ context.Context, runID string) ([]model.Trial, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trials, ok := s.trials[runID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(trials), true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, trial int, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	copied := append([]float64(nil), history...)
	s.history[trialKey{runID, trial}] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string, trial int) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[trialKey{runID, trial}]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, trial int, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[trialKey{runID, trial}] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string, trial int) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[trialKey{runID, trial}]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

// sortNewestFirst orders by creation time, then by id, both descending.
func sortNewestFirst(runs []model.Run) {
	slices.SortFunc(runs, func(a, b model.Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
