package models

import (
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SimulationSequenceName names the sequence row used for simulation ids
const SimulationSequenceName = "simulations"

// IDSequenceModel keeps the highest id ever issued per sequence, so ids of
// deleted rows are never handed out again.
type IDSequenceModel struct {
	Name   string `gorm:"primaryKey;size:64"`
	LastID int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (IDSequenceModel) TableName() string {
	return "simulation_id_sequences"
}

// SimulationModel is the persistence model for the Simulation aggregate
type SimulationModel struct {
	ID                        int64           `gorm:"primaryKey;autoIncrement:false"`
	Date                      time.Time       `gorm:"not null"`
	OriginJurisdictionID      string          `gorm:"size:2;not null;index"`
	DestinationJurisdictionID string          `gorm:"size:2;not null;index"`
	OperationType             string          `gorm:"size:16;not null"`
	PartyID                   *string         `gorm:"size:36"`
	PartyName                 string          `gorm:"size:200"`
	PartyJurisdictionID       string          `gorm:"size:2"`
	PartyIsTaxContributor     bool            `gorm:"not null;default:false"`
	Status                    string          `gorm:"size:16;not null;index"`
	Version                   int             `gorm:"not null;default:1"`
	Remark                    string          `gorm:"size:2000"`
	TotalRevenue              decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	TotalTax                  decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	GrossProfit               decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	CreatedAt                 time.Time       `gorm:"not null"`
	UpdatedAt                 time.Time       `gorm:"not null"`
	SubmittedAt               *time.Time
	Items                     []SimulationItemModel `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SimulationModel) TableName() string {
	return "simulations"
}

// SimulationItemModel is one line of a simulation, ordered by Position
type SimulationItemModel struct {
	ID              uint            `gorm:"primaryKey"`
	SimulationID    int64           `gorm:"not null;index"`
	Position        int             `gorm:"not null"`
	ProductID       string          `gorm:"size:36;not null"`
	ProductCode     string          `gorm:"size:50"`
	ProductName     string          `gorm:"size:200"`
	Quantity        int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	PriceOverridden bool            `gorm:"not null;default:false"`
	IcmsRate        decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	IpiRate         decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	PisRate         decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	CofinsRate      decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	HasDifal        bool            `gorm:"not null;default:false"`
	DifalRate       decimal.Decimal `gorm:"type:decimal(9,4);not null"`
}

// TableName returns the table name for GORM
func (SimulationItemModel) TableName() string {
	return "simulation_items"
}

// FromDomain populates the model from a domain simulation
func (m *SimulationModel) FromDomain(s *simulation.Simulation) {
	m.ID = s.ID
	m.Date = s.Date
	m.OriginJurisdictionID = s.OriginJurisdictionID
	m.DestinationJurisdictionID = s.DestinationJurisdictionID
	m.OperationType = string(s.OperationType)
	m.PartyID = nil
	m.PartyName = ""
	m.PartyJurisdictionID = ""
	m.PartyIsTaxContributor = false
	if s.Party != nil {
		id := s.Party.ID.String()
		m.PartyID = &id
		m.PartyName = s.Party.Name
		m.PartyJurisdictionID = s.Party.JurisdictionID
		m.PartyIsTaxContributor = s.Party.IsTaxContributor
	}
	m.Status = string(s.Status)
	m.Version = s.Version
	m.Remark = s.Remark
	m.TotalRevenue = s.Summary.TotalRevenue
	m.TotalTax = s.Summary.TaxBurden()
	m.GrossProfit = s.Summary.GrossProfit
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
	m.SubmittedAt = s.SubmittedAt

	m.Items = make([]SimulationItemModel, len(s.Items))
	for i, item := range s.Items {
		m.Items[i].FromDomain(s.ID, i, item)
	}
}

// ToDomain converts the model to a domain simulation, recomputing every
// derived amount.
func (m *SimulationModel) ToDomain() *simulation.Simulation {
	s := &simulation.Simulation{
		ID:                        m.ID,
		Date:                      m.Date,
		OriginJurisdictionID:      m.OriginJurisdictionID,
		DestinationJurisdictionID: m.DestinationJurisdictionID,
		OperationType:             simulation.OperationType(m.OperationType),
		Status:                    simulation.Status(m.Status),
		Version:                   m.Version,
		Remark:                    m.Remark,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
		SubmittedAt:               m.SubmittedAt,
	}
	if m.PartyID != nil {
		party := &fiscal.Party{
			Name:             m.PartyName,
			JurisdictionID:   m.PartyJurisdictionID,
			IsTaxContributor: m.PartyIsTaxContributor,
		}
		if id, err := uuid.Parse(*m.PartyID); err == nil {
			party.ID = id
		}
		s.Party = party
	}

	items := make([]fiscal.LineItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	s.ReplaceItems(items)
	return s
}

// FromDomain populates the item model from a line item at position
func (m *SimulationItemModel) FromDomain(simulationID int64, position int, item fiscal.LineItem) {
	unitCost := decimal.Zero
	if item.Quantity > 0 {
		unitCost = item.CostTotal.Div(decimal.NewFromInt(item.Quantity))
	}
	m.SimulationID = simulationID
	m.Position = position
	m.ProductID = item.ProductID.String()
	m.ProductCode = item.ProductCode
	m.ProductName = item.ProductName
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.UnitCost = unitCost
	m.PriceOverridden = item.PriceOverridden
	m.IcmsRate = item.Taxes.ICMS.Rate.Decimal()
	m.IpiRate = item.Taxes.IPI.Rate.Decimal()
	m.PisRate = item.Taxes.PIS.Rate.Decimal()
	m.CofinsRate = item.Taxes.COFINS.Rate.Decimal()
	m.HasDifal = item.Taxes.Difal != nil
	m.DifalRate = decimal.Zero
	if item.Taxes.Difal != nil {
		m.DifalRate = item.Taxes.Difal.Rate.Decimal()
	}
}

// ToDomain rebuilds the line item through the calculator
func (m *SimulationItemModel) ToDomain() fiscal.LineItem {
	productID, _ := uuid.Parse(m.ProductID)
	product := fiscal.Product{
		ID:         productID,
		Code:       m.ProductCode,
		Name:       m.ProductName,
		CostPrice:  valueobject.NewMoneyBRL(m.UnitCost),
		SalePrice:  valueobject.NewMoneyBRL(m.UnitPrice),
		IcmsRate:   valueobject.NewPercent(m.IcmsRate),
		IpiRate:    valueobject.NewPercent(m.IpiRate),
		PisRate:    valueobject.NewPercent(m.PisRate),
		CofinsRate: valueobject.NewPercent(m.CofinsRate),
	}
	rates := fiscal.ResolvedRates{
		AppliedIcmsRate:  valueobject.NewPercent(m.IcmsRate),
		DifalRate:        valueobject.NewPercent(m.DifalRate),
		HasDifal:         m.HasDifal,
		OriginFound:      true,
		DestinationFound: true,
	}
	input := fiscal.ItemInput{ProductID: productID, Quantity: m.Quantity}
	if m.PriceOverridden {
		price := m.UnitPrice
		input.UnitPriceOverride = &price
	}
	return fiscal.NewItemTaxCalculator().Compute(input, product, rates)
}
