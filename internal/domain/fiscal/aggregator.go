package fiscal

import (
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Summary is the operation-level result of a simulation.
// It is always derived from the item list by Aggregate.
type Summary struct {
	TotalRevenue              decimal.Decimal `json:"total_revenue"`
	TotalCost                 decimal.Decimal `json:"total_cost"`
	SalesTaxTotal             decimal.Decimal `json:"sales_tax_total"`
	DifalTotal                decimal.Decimal `json:"difal_total"`
	PurchaseTaxTotal          decimal.Decimal `json:"purchase_tax_total"`
	GrossProfit               decimal.Decimal `json:"gross_profit"`
	ContributionMarginPercent decimal.Decimal `json:"contribution_margin_percent"`
}

// TaxBurden returns sales tax plus DIFAL
func (s Summary) TaxBurden() decimal.Decimal {
	return s.SalesTaxTotal.Add(s.DifalTotal)
}

// Equal compares every field by decimal value
func (s Summary) Equal(other Summary) bool {
	return s.TotalRevenue.Equal(other.TotalRevenue) &&
		s.TotalCost.Equal(other.TotalCost) &&
		s.SalesTaxTotal.Equal(other.SalesTaxTotal) &&
		s.DifalTotal.Equal(other.DifalTotal) &&
		s.PurchaseTaxTotal.Equal(other.PurchaseTaxTotal) &&
		s.GrossProfit.Equal(other.GrossProfit) &&
		s.ContributionMarginPercent.Equal(other.ContributionMarginPercent)
}

// Aggregate recomputes the summary from scratch. Purchase taxes are not
// simulated and stay at zero.
func Aggregate(items []LineItem) Summary {
	revenue := decimal.Zero
	cost := decimal.Zero
	salesTax := decimal.Zero
	difal := decimal.Zero

	for _, item := range items {
		revenue = revenue.Add(item.LineTotal)
		cost = cost.Add(item.CostTotal)
		salesTax = salesTax.Add(item.Taxes.SalesTax())
		difal = difal.Add(item.Taxes.DifalAmount())
	}

	grossProfit := revenue.Sub(cost).Sub(salesTax).Sub(difal)

	return Summary{
		TotalRevenue:              revenue,
		TotalCost:                 cost,
		SalesTaxTotal:             salesTax,
		DifalTotal:                difal,
		PurchaseTaxTotal:          decimal.Zero,
		GrossProfit:               grossProfit,
		ContributionMarginPercent: valueobject.RatioPercent(grossProfit, revenue),
	}
}
