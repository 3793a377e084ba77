package simulation

import (
	"context"

	"github.com/erp/taxsim/internal/domain/shared"
)

// Filter narrows List results
type Filter struct {
	shared.Filter
	Status                    Status
	OriginJurisdictionID      string
	DestinationJurisdictionID string
}

// Matches reports whether s passes the non-paging criteria
func (f Filter) Matches(s *Simulation) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.OriginJurisdictionID != "" && s.OriginJurisdictionID != f.OriginJurisdictionID {
		return false
	}
	if f.DestinationJurisdictionID != "" && s.DestinationJurisdictionID != f.DestinationJurisdictionID {
		return false
	}
	return true
}

// Repository persists simulations. Implementations store and return deep
// copies, so callers never alias stored state.
type Repository interface {
	// Create assigns the next id (one above the highest id ever issued, so
	// deleted ids are not reused), sets Version to 1 and stores the simulation.
	Create(ctx context.Context, s *Simulation) (int64, error)

	// Update replaces the stored simulation with the same id. It fails with
	// ErrSimulationNotFound for unknown ids and shared.ErrConcurrencyConflict
	// when s.Version is stale. On success s.Version is incremented.
	Update(ctx context.Context, s *Simulation) error

	// Delete removes the simulation or fails with ErrSimulationNotFound
	Delete(ctx context.Context, id int64) error

	// Get returns the simulation or ErrSimulationNotFound
	Get(ctx context.Context, id int64) (*Simulation, error)

	// List returns simulations matching the filter ordered by id, plus the
	// total number of matches before paging.
	List(ctx context.Context, filter Filter) ([]Simulation, int64, error)
}
