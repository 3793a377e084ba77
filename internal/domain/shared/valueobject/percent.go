package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent is a rate expressed in percentage points (18 means 18%).
// The zero value is 0%.
type Percent struct {
	value decimal.Decimal
}

// NewPercent wraps a decimal percentage
func NewPercent(value decimal.Decimal) Percent {
	return Percent{value: value}
}

// NewPercentFromString parses a percentage such as "1.65"
func NewPercentFromString(value string) (Percent, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent string: %w", err)
	}
	return Percent{value: d}, nil
}

// MustPercent parses a percentage, panicking on bad input.
// Intended for fixtures and reference data.
func MustPercent(value string) Percent {
	return Percent{value: decimal.RequireFromString(value)}
}

// Decimal returns the percentage points
func (p Percent) Decimal() decimal.Decimal {
	return p.value
}

// Of returns base × p / 100 without rounding.
func (p Percent) Of(base decimal.Decimal) decimal.Decimal {
	return base.Mul(p.value).Div(hundred)
}

// Sub returns p − other in percentage points
func (p Percent) Sub(other Percent) Percent {
	return Percent{value: p.value.Sub(other.value)}
}

// Add returns p + other in percentage points
func (p Percent) Add(other Percent) Percent {
	return Percent{value: p.value.Add(other.value)}
}

// Round returns the percentage rounded to places decimal places
func (p Percent) Round(places int32) Percent {
	return Percent{value: p.value.Round(places)}
}

// Equal compares two percentages by value
func (p Percent) Equal(other Percent) bool {
	return p.value.Equal(other.value)
}

// IsNegative reports whether the percentage is below zero
func (p Percent) IsNegative() bool {
	return p.value.IsNegative()
}

// String renders the percentage as e.g. "18%"
func (p Percent) String() string {
	return p.value.String() + "%"
}

// MarshalJSON encodes the percentage as a decimal string
func (p Percent) MarshalJSON() ([]byte, error) {
	return p.value.MarshalJSON()
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal
func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}

// RatioPercent returns numerator / denominator × 100, or zero when the
// denominator is zero.
func RatioPercent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred)
}
