package fiscal

import (
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is what the user typed for one line
type ItemInput struct {
	ProductID         uuid.UUID
	Quantity          int64
	UnitPriceOverride *decimal.Decimal
}

// LineItem is a priced, taxed line of a simulation.
// Every field below Quantity/UnitPrice is derived by ItemTaxCalculator.Compute.
type LineItem struct {
	ProductID       uuid.UUID
	ProductCode     string
	ProductName     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	PriceOverridden bool

	LineTotal          decimal.Decimal
	CostTotal          decimal.Decimal
	Taxes              TaxBreakdown
	TotalTax           decimal.Decimal
	TaxPercentOfLine   decimal.Decimal
	ContributionMargin decimal.Decimal
}

// Input returns the user-entered part of the line, for recomputation
func (i LineItem) Input() ItemInput {
	input := ItemInput{ProductID: i.ProductID, Quantity: i.Quantity}
	if i.PriceOverridden {
		price := i.UnitPrice
		input.UnitPriceOverride = &price
	}
	return input
}

// Clone returns a copy that shares no pointers with i
func (i LineItem) Clone() LineItem {
	c := i
	if i.Taxes.Difal != nil {
		difal := *i.Taxes.Difal
		c.Taxes.Difal = &difal
	}
	return c
}

// PriceScale and RateScale are the decimal places kept for unit prices and
// rates. Inputs are quantized on entry so a stored line rebuilds exactly.
const (
	PriceScale int32 = 6
	RateScale  int32 = 4
)

// ItemTaxCalculator computes the tax breakdown and margin of one line.
// It never fails: nonsensical inputs degrade to safe values.
type ItemTaxCalculator struct{}

// NewItemTaxCalculator creates a calculator
func NewItemTaxCalculator() ItemTaxCalculator {
	return ItemTaxCalculator{}
}

// Compute builds a fully derived LineItem
func (ItemTaxCalculator) Compute(input ItemInput, product Product, rates ResolvedRates) LineItem {
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	unitPrice := product.SalePrice.Round(PriceScale)
	overridden := false
	if input.UnitPriceOverride != nil {
		override := valueobject.NewMoneyBRL(*input.UnitPriceOverride).Round(PriceScale)
		if !override.IsNegative() {
			unitPrice = override
			overridden = true
		}
	}

	line := unitPrice.MultiplyByInt(quantity)
	cost := product.CostPrice.Round(PriceScale).MultiplyByInt(quantity)
	lineTotal := line.Amount()
	costTotal := cost.Amount()

	taxes := TaxBreakdown{
		ICMS:   newTaxEntry(TaxICMS, rates.AppliedIcmsRate, line),
		IPI:    newTaxEntry(TaxIPI, product.IpiRate, line),
		PIS:    newTaxEntry(TaxPIS, product.PisRate, line),
		COFINS: newTaxEntry(TaxCOFINS, product.CofinsRate, line),
	}
	if rates.HasDifal {
		difal := newTaxEntry(TaxDIFAL, rates.DifalRate, line)
		taxes.Difal = &difal
	}
	totalTax := taxes.Total()

	return LineItem{
		ProductID:          product.ID,
		ProductCode:        product.Code,
		ProductName:        product.Name,
		Quantity:           quantity,
		UnitPrice:          unitPrice.Amount(),
		PriceOverridden:    overridden,
		LineTotal:          lineTotal,
		CostTotal:          costTotal,
		Taxes:              taxes,
		TotalTax:           totalTax,
		TaxPercentOfLine:   valueobject.RatioPercent(totalTax, lineTotal),
		ContributionMargin: valueobject.RatioPercent(lineTotal.Sub(costTotal).Sub(totalTax), lineTotal),
	}
}

// ProductSnapshot rebuilds the product attributes the line was computed
// from. The sale price is the unit price actually used on the line and the
// ICMS rate is the applied one.
func (i LineItem) ProductSnapshot() Product {
	unitCost := decimal.Zero
	if i.Quantity > 0 {
		unitCost = i.CostTotal.Div(decimal.NewFromInt(i.Quantity))
	}
	return Product{
		ID:         i.ProductID,
		Code:       i.ProductCode,
		Name:       i.ProductName,
		CostPrice:  valueobject.NewMoneyBRL(unitCost),
		SalePrice:  valueobject.NewMoneyBRL(i.UnitPrice),
		IcmsRate:   i.Taxes.ICMS.Rate,
		IpiRate:    i.Taxes.IPI.Rate,
		PisRate:    i.Taxes.PIS.Rate,
		CofinsRate: i.Taxes.COFINS.Rate,
	}
}

// Recompute applies new rates to an existing line, keeping its inputs and
// product attributes.
func (c ItemTaxCalculator) Recompute(item LineItem, rates ResolvedRates) LineItem {
	return c.Compute(item.Input(), item.ProductSnapshot(), rates)
}
