package fiscal

import (
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxKind identifies one of the simulated taxes
type TaxKind string

const (
	TaxICMS   TaxKind = "ICMS"
	TaxIPI    TaxKind = "IPI"
	TaxPIS    TaxKind = "PIS"
	TaxCOFINS TaxKind = "COFINS"
	TaxDIFAL  TaxKind = "DIFAL"
)

// TaxEntry is the rate and resulting amount of one tax on a line
type TaxEntry struct {
	Kind   TaxKind             `json:"kind"`
	Rate   valueobject.Percent `json:"rate"`
	Amount decimal.Decimal     `json:"amount"`
}

// TaxBreakdown holds the per-kind taxes of a line. Difal is nil when the
// operation owes no DIFAL.
type TaxBreakdown struct {
	ICMS   TaxEntry  `json:"icms"`
	IPI    TaxEntry  `json:"ipi"`
	PIS    TaxEntry  `json:"pis"`
	COFINS TaxEntry  `json:"cofins"`
	Difal  *TaxEntry `json:"difal,omitempty"`
}

// SalesTax returns ICMS + IPI + PIS + COFINS
func (b TaxBreakdown) SalesTax() decimal.Decimal {
	return b.ICMS.Amount.Add(b.IPI.Amount).Add(b.PIS.Amount).Add(b.COFINS.Amount)
}

// DifalAmount returns the DIFAL amount or zero
func (b TaxBreakdown) DifalAmount() decimal.Decimal {
	if b.Difal == nil {
		return decimal.Zero
	}
	return b.Difal.Amount
}

// Total returns all five taxes summed
func (b TaxBreakdown) Total() decimal.Decimal {
	return b.SalesTax().Add(b.DifalAmount())
}

// Entries lists the entries in display order, DIFAL last when present
func (b TaxBreakdown) Entries() []TaxEntry {
	entries := []TaxEntry{b.ICMS, b.IPI, b.PIS, b.COFINS}
	if b.Difal != nil {
		entries = append(entries, *b.Difal)
	}
	return entries
}

func newTaxEntry(kind TaxKind, rate valueobject.Percent, base valueobject.Money) TaxEntry {
	rate = rate.Round(RateScale)
	return TaxEntry{Kind: kind, Rate: rate, Amount: base.CalculatePercentage(rate).Amount()}
}
