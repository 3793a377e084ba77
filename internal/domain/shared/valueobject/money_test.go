package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("1999.90"), BRL)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("1999.9")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.Equal(t, "123.45 USD", m.String())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", BRL)
		assert.Error(t, err)
	})
}

func TestMoney_MultiplyByInt(t *testing.T) {
	m := MustMoneyBRL("1999.90").MultiplyByInt(3)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("5999.7")))
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := MustMoneyBRL("1999.90")
	icms := m.CalculatePercentage(MustPercent("18"))
	assert.True(t, icms.Amount().Equal(decimal.RequireFromString("359.982")), icms.Amount().String())
	assert.Equal(t, BRL, icms.Currency())
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, MustMoneyBRL("-1").IsNegative())
	assert.False(t, MustMoneyBRL("1").IsNegative())
	assert.Equal(t, "1.24 BRL", MustMoneyBRL("1.2351").Round(2).String())
}
