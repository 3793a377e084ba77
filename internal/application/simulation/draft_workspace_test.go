package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/erp/taxsim/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T) (*DraftWorkspace, *persistence.MemorySimulationStore) {
	t.Helper()
	catalog := persistence.NewMemoryCatalog()
	require.NoError(t, catalog.UpsertProducts(context.Background(), []fiscal.Product{*notebook()}))
	require.NoError(t, catalog.UpsertParties(context.Background(), []fiscal.Party{*contributor(), *consumer()}))

	store := persistence.NewMemorySimulationStore()
	service := NewSimulationService(store, catalog, catalog, testResolver(t), nil)
	service.now = func() time.Time { return testNow }
	return NewDraftWorkspace(service, NewDraftRegistry(time.Hour, 10)), store
}

func TestDraftWorkspace_EditSaveReopen(t *testing.T) {
	ctx := context.Background()
	w, store := newWorkspace(t)

	partyID := contributorID
	draftID, _, err := w.Open(ctx, NewDraftRequest{
		OriginJurisdictionID:      "SP",
		DestinationJurisdictionID: "BA",
		PartyID:                   &partyID,
	})
	require.NoError(t, err)

	for _, qty := range []Quantity{1, 2} {
		_, err = w.SetItem(ctx, draftID, AddItemRequest{ProductID: notebookID, Quantity: qty})
		require.NoError(t, err)
	}
	sim, err := w.RemoveItem(ctx, draftID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, sim.ItemCount())
	assert.Equal(t, int64(2), sim.Items[0].Quantity)

	saved, err := w.Save(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, simulation.StatusSaved, saved.Status)

	// the open draft now tracks the persisted id; a second save updates it
	_, err = w.SetItem(ctx, draftID, AddItemRequest{ProductID: notebookID, Quantity: 5})
	require.NoError(t, err)
	resaved, err := w.Save(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resaved.ID)
	assert.Equal(t, 2, resaved.Version)

	stored, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ItemCount())
	assert.True(t, stored.Summary.Equal(resaved.Summary))

	require.NoError(t, w.Discard(draftID))
	_, err = w.Get(draftID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	reopenedID, reopened, err := w.OpenSaved(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, draftID, reopenedID)
	assert.Equal(t, int64(1), reopened.ID)

	moved, err := w.ChangeRoute(ctx, reopenedID, ChangeRouteRequest{
		OriginJurisdictionID:      "SP",
		DestinationJurisdictionID: "SP",
	})
	require.NoError(t, err)
	assert.Nil(t, moved.Party)
	assert.True(t, moved.Summary.DifalTotal.IsZero())
}

func TestDraftWorkspace_FailedCommandKeepsDraft(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorkspace(t)

	draftID, _, err := w.Open(ctx, NewDraftRequest{OriginJurisdictionID: "SP", DestinationJurisdictionID: "SP"})
	require.NoError(t, err)
	_, err = w.SetItem(ctx, draftID, AddItemRequest{ProductID: notebookID, Quantity: 1})
	require.NoError(t, err)

	_, err = w.RemoveItem(ctx, draftID, 3)
	assert.ErrorIs(t, err, simulation.ErrItemIndexOutOfRange)

	draft, err := w.Get(draftID)
	require.NoError(t, err)
	assert.Equal(t, 1, draft.ItemCount())
}

func TestDraftWorkspace_OpenSavedUnknown(t *testing.T) {
	w, _ := newWorkspace(t)
	_, _, err := w.OpenSaved(context.Background(), 99)
	assert.ErrorIs(t, err, simulation.ErrSimulationNotFound)
}
