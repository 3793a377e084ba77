package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent_Of(t *testing.T) {
	base := decimal.RequireFromString("1999.90")

	tests := []struct {
		rate string
		want string
	}{
		{"18", "359.982"},
		{"15", "299.985"},
		{"1.65", "32.99835"},
		{"7.6", "151.9924"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			got := MustPercent(tt.rate).Of(base)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestPercent_Arithmetic(t *testing.T) {
	difal := MustPercent("17").Sub(MustPercent("12"))
	assert.True(t, difal.Equal(MustPercent("5")))
	assert.True(t, MustPercent("12").Sub(MustPercent("17")).IsNegative())
	assert.True(t, MustPercent("12").Add(difal).Equal(MustPercent("17")))
	assert.Equal(t, "18%", MustPercent("18").String())
	assert.Equal(t, "1.6667%", MustPercent("1.666666").Round(4).String())
}

func TestNewPercentFromString(t *testing.T) {
	p, err := NewPercentFromString("7.6")
	require.NoError(t, err)
	assert.True(t, p.Decimal().Equal(decimal.RequireFromString("7.6")))

	_, err = NewPercentFromString("seven")
	assert.Error(t, err)
}

func TestPercent_JSON(t *testing.T) {
	data, err := json.Marshal(MustPercent("1.65"))
	require.NoError(t, err)
	assert.Equal(t, `"1.65"`, string(data))

	var p Percent
	require.NoError(t, json.Unmarshal([]byte(`12`), &p))
	assert.True(t, p.Equal(MustPercent("12")))
}

func TestRatioPercent(t *testing.T) {
	assert.True(t, RatioPercent(decimal.NewFromInt(1), decimal.NewFromInt(4)).Equal(decimal.NewFromInt(25)))
	assert.True(t, RatioPercent(decimal.NewFromInt(5), decimal.Zero).IsZero())
}
