package simulation

import (
	"context"

	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
)

// DraftWorkspace applies editing commands to registry drafts through the
// SimulationService. It backs the stateful HTTP editing endpoints.
type DraftWorkspace struct {
	service  *SimulationService
	registry *DraftRegistry
}

// NewDraftWorkspace creates a new DraftWorkspace
func NewDraftWorkspace(service *SimulationService, registry *DraftRegistry) *DraftWorkspace {
	return &DraftWorkspace{service: service, registry: registry}
}

// Open starts a new draft
func (w *DraftWorkspace) Open(ctx context.Context, req NewDraftRequest) (uuid.UUID, *simulation.Simulation, error) {
	draft, err := w.service.NewDraft(ctx, req)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, err := w.registry.Put(draft)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, draft, nil
}

// OpenSaved loads a persisted simulation into a new draft for editing.
// Saving that draft updates the persisted simulation.
func (w *DraftWorkspace) OpenSaved(ctx context.Context, simulationID int64) (uuid.UUID, *simulation.Simulation, error) {
	sim, err := w.service.Load(ctx, simulationID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, err := w.registry.Put(sim)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, sim, nil
}

// Get returns the current state of a draft
func (w *DraftWorkspace) Get(draftID uuid.UUID) (*simulation.Simulation, error) {
	return w.registry.Get(draftID)
}

// SetItem appends or replaces an item
func (w *DraftWorkspace) SetItem(ctx context.Context, draftID uuid.UUID, req AddItemRequest) (*simulation.Simulation, error) {
	return w.registry.Update(draftID, func(sim *simulation.Simulation) (*simulation.Simulation, error) {
		return w.service.AddOrUpdateItem(ctx, sim, req)
	})
}

// RemoveItem deletes the item at index
func (w *DraftWorkspace) RemoveItem(ctx context.Context, draftID uuid.UUID, index int) (*simulation.Simulation, error) {
	return w.registry.Update(draftID, func(sim *simulation.Simulation) (*simulation.Simulation, error) {
		return w.service.RemoveItem(ctx, sim, index)
	})
}

// ChangeRoute replaces the header and recomputes the items
func (w *DraftWorkspace) ChangeRoute(ctx context.Context, draftID uuid.UUID, req ChangeRouteRequest) (*simulation.Simulation, error) {
	return w.registry.Update(draftID, func(sim *simulation.Simulation) (*simulation.Simulation, error) {
		return w.service.ChangeRoute(ctx, sim, req)
	})
}

// Save persists the draft. The draft stays open and now carries the
// persisted id, so later saves update the same simulation.
func (w *DraftWorkspace) Save(ctx context.Context, draftID uuid.UUID) (*simulation.Simulation, error) {
	return w.registry.Update(draftID, func(sim *simulation.Simulation) (*simulation.Simulation, error) {
		if _, err := w.service.Save(ctx, sim); err != nil {
			return nil, err
		}
		return sim, nil
	})
}

// Discard drops the draft without saving
func (w *DraftWorkspace) Discard(draftID uuid.UUID) error {
	return w.registry.Discard(draftID)
}
