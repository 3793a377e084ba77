package simulation

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func testProduct(code, sale, cost string) fiscal.Product {
	return fiscal.Product{
		ID:         uuid.New(),
		Code:       code,
		Name:       code,
		CostPrice:  valueobject.MustMoneyBRL(cost),
		SalePrice:  valueobject.MustMoneyBRL(sale),
		IcmsRate:   valueobject.MustPercent("18"),
		IpiRate:    valueobject.MustPercent("15"),
		PisRate:    valueobject.MustPercent("1.65"),
		CofinsRate: valueobject.MustPercent("7.6"),
	}
}

func lineFor(p fiscal.Product, qty int64) fiscal.LineItem {
	rates := fiscal.ResolvedRates{AppliedIcmsRate: valueobject.MustPercent("18"), OriginFound: true, DestinationFound: true}
	return fiscal.NewItemTaxCalculator().Compute(fiscal.ItemInput{ProductID: p.ID, Quantity: qty}, p, rates)
}

func newDraft(t *testing.T) *Simulation {
	t.Helper()
	s, err := NewDraft("sp", "SP", OperationSale, nil, testNow)
	require.NoError(t, err)
	return s
}

func TestNewDraft(t *testing.T) {
	t.Run("creates an empty draft", func(t *testing.T) {
		party := &fiscal.Party{ID: uuid.New(), Name: "ACME", JurisdictionID: "RS", IsTaxContributor: true}
		s, err := NewDraft("sp", "rs", "", party, testNow)
		require.NoError(t, err)

		assert.Equal(t, int64(0), s.ID)
		assert.Equal(t, "SP", s.OriginJurisdictionID)
		assert.Equal(t, "RS", s.DestinationJurisdictionID)
		assert.Equal(t, OperationSale, s.OperationType)
		assert.Equal(t, StatusDraft, s.Status)
		assert.True(t, s.BuyerIsContributor())
		assert.Empty(t, s.Items)
		assert.True(t, s.Summary.TotalRevenue.IsZero())

		party.IsTaxContributor = false
		assert.True(t, s.BuyerIsContributor(), "party is copied")
	})

	t.Run("rejects unknown operation type", func(t *testing.T) {
		_, err := NewDraft("SP", "SP", OperationType("gift"), nil, testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidOperationType))
	})

	t.Run("requires a route", func(t *testing.T) {
		_, err := NewDraft(" ", "SP", OperationSale, nil, testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("no party means final consumer", func(t *testing.T) {
		assert.False(t, newDraft(t).BuyerIsContributor())
	})
}

func TestSimulation_SetItem(t *testing.T) {
	a := testProduct("A", "100", "50")
	b := testProduct("B", "200", "80")
	c := testProduct("C", "300", "90")

	t.Run("appends and aggregates", func(t *testing.T) {
		s := newDraft(t)
		require.NoError(t, s.SetItem(lineFor(a, 1), nil))
		require.NoError(t, s.SetItem(lineFor(b, 2), nil))

		assert.Equal(t, 2, s.ItemCount())
		assert.True(t, s.Summary.TotalRevenue.Equal(decimal.NewFromInt(500)))
		assert.True(t, s.Summary.Equal(fiscal.Aggregate(s.Items)))
	})

	t.Run("replaces by index", func(t *testing.T) {
		s := newDraft(t)
		require.NoError(t, s.SetItem(lineFor(a, 1), nil))
		require.NoError(t, s.SetItem(lineFor(b, 1), nil))

		idx := 0
		require.NoError(t, s.SetItem(lineFor(c, 1), &idx))

		assert.Equal(t, 2, s.ItemCount())
		assert.Equal(t, "C", s.Items[0].ProductCode)
		assert.Equal(t, "B", s.Items[1].ProductCode)
		assert.True(t, s.Summary.TotalRevenue.Equal(decimal.NewFromInt(500)))
	})

	t.Run("rejects out of range index", func(t *testing.T) {
		s := newDraft(t)
		require.NoError(t, s.SetItem(lineFor(a, 1), nil))

		for _, idx := range []int{-1, 1, 5} {
			i := idx
			err := s.SetItem(lineFor(b, 1), &i)
			assert.ErrorIs(t, err, ErrItemIndexOutOfRange)
		}
		assert.Equal(t, 1, s.ItemCount())
	})
}

func TestSimulation_RemoveItem(t *testing.T) {
	a := testProduct("A", "100", "50")
	b := testProduct("B", "200", "80")
	c := testProduct("C", "300", "90")

	s := newDraft(t)
	for _, p := range []fiscal.Product{a, b, c} {
		require.NoError(t, s.SetItem(lineFor(p, 1), nil))
	}

	require.NoError(t, s.RemoveItem(1))

	require.Equal(t, 2, s.ItemCount())
	assert.Equal(t, "A", s.Items[0].ProductCode)
	assert.Equal(t, "C", s.Items[1].ProductCode)

	fresh := newDraft(t)
	require.NoError(t, fresh.SetItem(lineFor(a, 1), nil))
	require.NoError(t, fresh.SetItem(lineFor(c, 1), nil))
	assert.True(t, s.Summary.Equal(fresh.Summary))

	assert.ErrorIs(t, s.RemoveItem(2), ErrItemIndexOutOfRange)
}

func TestSimulation_Lifecycle(t *testing.T) {
	t.Run("draft cannot be submitted", func(t *testing.T) {
		s := newDraft(t)
		err := s.Submit(testNow)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, StatusDraft, s.Status)
	})

	t.Run("saved simulation can be submitted", func(t *testing.T) {
		s := newDraft(t)
		s.ID = 7
		s.MarkSaved(testNow)
		assert.Equal(t, StatusSaved, s.Status)

		later := testNow.Add(time.Hour)
		require.NoError(t, s.Submit(later))
		assert.Equal(t, StatusSubmitted, s.Status)
		require.NotNil(t, s.SubmittedAt)
		assert.Equal(t, later, *s.SubmittedAt)

		s.MarkSaved(later)
		assert.Equal(t, StatusSaved, s.Status)
		assert.Nil(t, s.SubmittedAt)
	})
}

func TestSimulation_Clone(t *testing.T) {
	s := newDraft(t)
	s.Party = &fiscal.Party{Name: "ACME"}
	require.NoError(t, s.SetItem(lineFor(testProduct("A", "100", "50"), 1), nil))

	c := s.Clone()
	c.Party.Name = "Other"
	c.Items[0].ProductCode = "Z"
	c.Items = append(c.Items, lineFor(testProduct("B", "1", "1"), 1))

	assert.Equal(t, "ACME", s.Party.Name)
	assert.Equal(t, "A", s.Items[0].ProductCode)
	assert.Equal(t, 1, s.ItemCount())

	var nilSim *Simulation
	assert.Nil(t, nilSim.Clone())
}

func TestSimulation_CopyAsDraft(t *testing.T) {
	s := newDraft(t)
	s.ID = 3
	s.Version = 4
	s.MarkSaved(testNow)

	c := s.CopyAsDraft(testNow.Add(time.Minute))
	assert.Equal(t, int64(0), c.ID)
	assert.Equal(t, 0, c.Version)
	assert.Equal(t, StatusDraft, c.Status)
	assert.Equal(t, int64(3), s.ID)
}

func TestFilter_Matches(t *testing.T) {
	s := newDraft(t)
	s.MarkSaved(testNow)

	assert.True(t, Filter{}.Matches(s))
	assert.True(t, Filter{Status: StatusSaved, OriginJurisdictionID: "SP"}.Matches(s))
	assert.False(t, Filter{Status: StatusSubmitted}.Matches(s))
	assert.False(t, Filter{DestinationJurisdictionID: "RS"}.Matches(s))
}

func TestEvents(t *testing.T) {
	s := newDraft(t)
	s.ID = 9
	s.Party = &fiscal.Party{Name: "ACME"}
	s.MarkSaved(testNow)
	require.NoError(t, s.Submit(testNow))

	saved := NewSimulationSavedEvent(s)
	assert.Equal(t, EventTypeSimulationSaved, saved.EventType())
	assert.Equal(t, "9", saved.AggregateID())
	assert.Equal(t, AggregateTypeSimulation, saved.AggregateType())

	submitted := NewSimulationSubmittedEvent(s)
	assert.Equal(t, EventTypeSimulationSubmitted, submitted.EventType())
	assert.Equal(t, "ACME", submitted.PartyName)
	assert.Equal(t, testNow, submitted.SubmittedAt)

	deleted := NewSimulationDeletedEvent(9)
	assert.Equal(t, EventTypeSimulationDeleted, deleted.EventType())
	assert.Equal(t, int64(9), deleted.SimulationID)
}
