package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
)

// MemorySimulationStore keeps simulations in process memory. A single
// RWMutex serializes writers.
type MemorySimulationStore struct {
	mu        sync.RWMutex
	records   map[int64]*simulation.Simulation
	highWater int64
}

// NewMemorySimulationStore creates an empty store
func NewMemorySimulationStore() *MemorySimulationStore {
	return &MemorySimulationStore{records: make(map[int64]*simulation.Simulation)}
}

// Create implements simulation.Repository
func (s *MemorySimulationStore) Create(ctx context.Context, sim *simulation.Simulation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.highWater
	for id := range s.records {
		if id > next {
			next = id
		}
	}
	next++
	s.highWater = next

	sim.ID = next
	sim.Version = 1
	s.records[next] = sim.Clone()
	return next, nil
}

// Update implements simulation.Repository
func (s *MemorySimulationStore) Update(ctx context.Context, sim *simulation.Simulation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[sim.ID]
	if !ok {
		return simulation.ErrSimulationNotFound
	}
	if stored.Version != sim.Version {
		return shared.ErrConcurrencyConflict
	}
	sim.Version++
	s.records[sim.ID] = sim.Clone()
	return nil
}

// Delete implements simulation.Repository
func (s *MemorySimulationStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return simulation.ErrSimulationNotFound
	}
	delete(s.records, id)
	return nil
}

// Get implements simulation.Repository
func (s *MemorySimulationStore) Get(ctx context.Context, id int64) (*simulation.Simulation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.records[id]
	if !ok {
		return nil, simulation.ErrSimulationNotFound
	}
	return stored.Clone(), nil
}

// List implements simulation.Repository
func (s *MemorySimulationStore) List(ctx context.Context, filter simulation.Filter) ([]simulation.Simulation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.records))
	for id, sim := range s.records {
		if filter.Matches(sim) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	page := filter.Filter.Normalize()
	start := min(filter.Filter.Offset(), len(ids))
	end := min(start+page.PageSize, len(ids))

	result := make([]simulation.Simulation, 0, end-start)
	for _, id := range ids[start:end] {
		result = append(result, *s.records[id].Clone())
	}
	return result, total, nil
}

var _ simulation.Repository = (*MemorySimulationStore)(nil)
