package models

import (
	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	ID         string          `gorm:"primaryKey;size:36"`
	Code       string          `gorm:"size:50;not null;uniqueIndex"`
	Name       string          `gorm:"size:200;not null"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	IcmsRate   decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	IpiRate    decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	PisRate    decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	CofinsRate decimal.Decimal `gorm:"type:decimal(9,4);not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// FromDomain populates the model from a domain product
func (m *ProductModel) FromDomain(p *fiscal.Product) {
	m.ID = p.ID.String()
	m.Code = p.Code
	m.Name = p.Name
	m.CostPrice = p.CostPrice.Amount()
	m.SalePrice = p.SalePrice.Amount()
	m.IcmsRate = p.IcmsRate.Decimal()
	m.IpiRate = p.IpiRate.Decimal()
	m.PisRate = p.PisRate.Decimal()
	m.CofinsRate = p.CofinsRate.Decimal()
}

// ToDomain converts the model to a domain product
func (m *ProductModel) ToDomain() *fiscal.Product {
	id, _ := uuid.Parse(m.ID)
	return &fiscal.Product{
		ID:         id,
		Code:       m.Code,
		Name:       m.Name,
		CostPrice:  valueobject.NewMoneyBRL(m.CostPrice),
		SalePrice:  valueobject.NewMoneyBRL(m.SalePrice),
		IcmsRate:   valueobject.NewPercent(m.IcmsRate),
		IpiRate:    valueobject.NewPercent(m.IpiRate),
		PisRate:    valueobject.NewPercent(m.PisRate),
		CofinsRate: valueobject.NewPercent(m.CofinsRate),
	}
}

// PartyModel is the persistence model for buyers
type PartyModel struct {
	ID               string `gorm:"primaryKey;size:36"`
	Name             string `gorm:"size:200;not null"`
	JurisdictionID   string `gorm:"size:2;not null"`
	IsTaxContributor bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// FromDomain populates the model from a domain party
func (m *PartyModel) FromDomain(p *fiscal.Party) {
	m.ID = p.ID.String()
	m.Name = p.Name
	m.JurisdictionID = p.JurisdictionID
	m.IsTaxContributor = p.IsTaxContributor
}

// ToDomain converts the model to a domain party
func (m *PartyModel) ToDomain() *fiscal.Party {
	id, _ := uuid.Parse(m.ID)
	return &fiscal.Party{
		ID:               id,
		Name:             m.Name,
		JurisdictionID:   m.JurisdictionID,
		IsTaxContributor: m.IsTaxContributor,
	}
}

// All returns every model managed by AutoMigrate
func All() []any {
	return []any{
		&IDSequenceModel{},
		&SimulationModel{},
		&SimulationItemModel{},
		&ProductModel{},
		&PartyModel{},
	}
}
