package simulation

import (
	"strconv"
	"time"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSimulation = "Simulation"

// Event type constants
const (
	EventTypeSimulationSaved     = "SimulationSaved"
	EventTypeSimulationSubmitted = "SimulationSubmitted"
	EventTypeSimulationDeleted   = "SimulationDeleted"
)

// SimulationSavedEvent is raised after a simulation is persisted
type SimulationSavedEvent struct {
	shared.BaseDomainEvent
	SimulationID int64           `json:"simulation_id"`
	Version      int             `json:"version"`
	ItemCount    int             `json:"item_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
}

// NewSimulationSavedEvent creates a new SimulationSavedEvent
func NewSimulationSavedEvent(s *Simulation) *SimulationSavedEvent {
	return &SimulationSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSimulationSaved, AggregateTypeSimulation, strconv.FormatInt(s.ID, 10)),
		SimulationID:    s.ID,
		Version:         s.Version,
		ItemCount:       len(s.Items),
		TotalRevenue:    s.Summary.TotalRevenue,
		GrossProfit:     s.Summary.GrossProfit,
	}
}

// SimulationSubmittedEvent is raised when a saved simulation is sent for
// review. Subscribers deliver it to the commercial office.
type SimulationSubmittedEvent struct {
	shared.BaseDomainEvent
	SimulationID              int64           `json:"simulation_id"`
	OriginJurisdictionID      string          `json:"origin_jurisdiction_id"`
	DestinationJurisdictionID string          `json:"destination_jurisdiction_id"`
	PartyName                 string          `json:"party_name,omitempty"`
	TotalRevenue              decimal.Decimal `json:"total_revenue"`
	TaxBurden                 decimal.Decimal `json:"tax_burden"`
	ContributionMargin        decimal.Decimal `json:"contribution_margin"`
	SubmittedAt               time.Time       `json:"submitted_at"`
}

// NewSimulationSubmittedEvent creates a new SimulationSubmittedEvent
func NewSimulationSubmittedEvent(s *Simulation) *SimulationSubmittedEvent {
	e := &SimulationSubmittedEvent{
		BaseDomainEvent:           shared.NewBaseDomainEvent(EventTypeSimulationSubmitted, AggregateTypeSimulation, strconv.FormatInt(s.ID, 10)),
		SimulationID:              s.ID,
		OriginJurisdictionID:      s.OriginJurisdictionID,
		DestinationJurisdictionID: s.DestinationJurisdictionID,
		TotalRevenue:              s.Summary.TotalRevenue,
		TaxBurden:                 s.Summary.TaxBurden(),
		ContributionMargin:        s.Summary.ContributionMarginPercent,
	}
	if s.Party != nil {
		e.PartyName = s.Party.Name
	}
	if s.SubmittedAt != nil {
		e.SubmittedAt = *s.SubmittedAt
	}
	return e
}

// SimulationDeletedEvent is raised after a simulation is removed
type SimulationDeletedEvent struct {
	shared.BaseDomainEvent
	SimulationID int64 `json:"simulation_id"`
}

// NewSimulationDeletedEvent creates a new SimulationDeletedEvent
func NewSimulationDeletedEvent(id int64) *SimulationDeletedEvent {
	return &SimulationDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSimulationDeleted, AggregateTypeSimulation, strconv.FormatInt(id, 10)),
		SimulationID:    id,
	}
}
