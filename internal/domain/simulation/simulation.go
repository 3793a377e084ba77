package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared"
)

// OperationType classifies the simulated operation. It is recorded for
// reporting and does not change the tax rules.
type OperationType string

const (
	OperationSale     OperationType = "sale"
	OperationTransfer OperationType = "transfer"
	OperationReturn   OperationType = "return"
	OperationBonus    OperationType = "bonus"
)

// IsValid checks if the operation type is known
func (o OperationType) IsValid() bool {
	switch o {
	case OperationSale, OperationTransfer, OperationReturn, OperationBonus:
		return true
	}
	return false
}

// Status is the lifecycle state of a simulation
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSaved     Status = "saved"
	StatusSubmitted Status = "submitted"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSaved, StatusSubmitted:
		return true
	}
	return false
}

// Simulation errors
var (
	ErrSimulationNotFound   = shared.NewDomainError("SIMULATION_NOT_FOUND", "Simulation not found")
	ErrItemIndexOutOfRange  = shared.NewDomainError("ITEM_INDEX_OUT_OF_RANGE", "Item index out of range")
	ErrInvalidOperationType = shared.NewDomainError("INVALID_OPERATION_TYPE", "Invalid operation type")
	ErrRouteRequired        = shared.NewDomainError("INVALID_INPUT", "Origin and destination jurisdictions are required")
)

// Simulation is a hypothetical sale: an operation header plus an ordered list
// of line items. Items are addressed by index; an insert or removal before an
// index invalidates that index.
type Simulation struct {
	ID                        int64
	Date                      time.Time
	OriginJurisdictionID      string
	DestinationJurisdictionID string
	OperationType             OperationType
	Party                     *fiscal.Party
	Items                     []fiscal.LineItem
	Summary                   fiscal.Summary
	Status                    Status
	Version                   int
	Remark                    string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
	SubmittedAt               *time.Time
}

// NewDraft creates an empty, unsaved simulation
func NewDraft(origin, destination string, operationType OperationType, party *fiscal.Party, now time.Time) (*Simulation, error) {
	if operationType == "" {
		operationType = OperationSale
	}
	if !operationType.IsValid() {
		return nil, shared.NewDomainError(ErrInvalidOperationType.Code, fmt.Sprintf("Invalid operation type %q", operationType))
	}
	s := &Simulation{
		Date:          now,
		OperationType: operationType,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.SetRoute(origin, destination, party); err != nil {
		return nil, err
	}
	s.Summary = fiscal.Aggregate(nil)
	return s, nil
}

// SetRoute changes the operation header. Items must be recomputed by the
// caller because the resolved rates depend on the route.
func (s *Simulation) SetRoute(origin, destination string, party *fiscal.Party) error {
	origin = fiscal.NormalizeJurisdictionID(origin)
	destination = fiscal.NormalizeJurisdictionID(destination)
	if origin == "" || destination == "" {
		return ErrRouteRequired
	}
	s.OriginJurisdictionID = origin
	s.DestinationJurisdictionID = destination
	s.Party = cloneParty(party)
	return nil
}

// SetOperationType changes the operation classification
func (s *Simulation) SetOperationType(operationType OperationType) error {
	if !operationType.IsValid() {
		return shared.NewDomainError(ErrInvalidOperationType.Code, fmt.Sprintf("Invalid operation type %q", operationType))
	}
	s.OperationType = operationType
	return nil
}

// SetRemark sets the free-text remark
func (s *Simulation) SetRemark(remark string) {
	s.Remark = strings.TrimSpace(remark)
}

// BuyerIsContributor reports whether the party is an ICMS contributor.
// A simulation without a party is treated as a sale to a final consumer.
func (s *Simulation) BuyerIsContributor() bool {
	return s.Party != nil && s.Party.IsTaxContributor
}

// SetItem appends the item when editIndex is nil, otherwise replaces the item
// at that index. The summary is re-derived afterwards.
func (s *Simulation) SetItem(item fiscal.LineItem, editIndex *int) error {
	if editIndex == nil {
		s.Items = append(s.Items, item.Clone())
	} else {
		if err := s.checkIndex(*editIndex); err != nil {
			return err
		}
		s.Items[*editIndex] = item.Clone()
	}
	s.recalculate()
	return nil
}

// RemoveItem deletes the item at index and re-derives the summary
func (s *Simulation) RemoveItem(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	s.recalculate()
	return nil
}

// ReplaceItems swaps the whole item list, used after a route change
func (s *Simulation) ReplaceItems(items []fiscal.LineItem) {
	s.Items = make([]fiscal.LineItem, len(items))
	for i, item := range items {
		s.Items[i] = item.Clone()
	}
	s.recalculate()
}

// Item returns the item at index
func (s *Simulation) Item(index int) (fiscal.LineItem, error) {
	if err := s.checkIndex(index); err != nil {
		return fiscal.LineItem{}, err
	}
	return s.Items[index].Clone(), nil
}

// ItemCount returns the number of items
func (s *Simulation) ItemCount() int {
	return len(s.Items)
}

// MarkSaved moves the simulation into the saved state. Saving a submitted
// simulation again returns it to saved because its content may have changed.
func (s *Simulation) MarkSaved(now time.Time) {
	s.Status = StatusSaved
	s.SubmittedAt = nil
	s.UpdatedAt = now
}

// Submit records that the saved simulation was sent for review.
// Submission is informational and does not lock the simulation.
func (s *Simulation) Submit(now time.Time) error {
	if s.ID == 0 || s.Status == StatusDraft {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Only saved simulations can be submitted")
	}
	s.Status = StatusSubmitted
	submittedAt := now
	s.SubmittedAt = &submittedAt
	s.UpdatedAt = now
	return nil
}

// IsPersisted reports whether the simulation has been saved at least once
func (s *Simulation) IsPersisted() bool {
	return s.ID != 0
}

// Clone returns a deep copy
func (s *Simulation) Clone() *Simulation {
	if s == nil {
		return nil
	}
	c := *s
	c.Party = cloneParty(s.Party)
	if s.Items != nil {
		c.Items = make([]fiscal.LineItem, len(s.Items))
		for i, item := range s.Items {
			c.Items[i] = item.Clone()
		}
	}
	if s.SubmittedAt != nil {
		submittedAt := *s.SubmittedAt
		c.SubmittedAt = &submittedAt
	}
	return &c
}

// CopyAsDraft returns an unsaved copy, used to start a new simulation from
// an existing one.
func (s *Simulation) CopyAsDraft(now time.Time) *Simulation {
	c := s.Clone()
	c.ID = 0
	c.Version = 0
	c.Status = StatusDraft
	c.SubmittedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

func (s *Simulation) recalculate() {
	s.Summary = fiscal.Aggregate(s.Items)
}

func (s *Simulation) checkIndex(index int) error {
	if index < 0 || index >= len(s.Items) {
		return shared.NewDomainError(ErrItemIndexOutOfRange.Code,
			fmt.Sprintf("Item index %d out of range [0, %d)", index, len(s.Items)))
	}
	return nil
}

func cloneParty(p *fiscal.Party) *fiscal.Party {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
