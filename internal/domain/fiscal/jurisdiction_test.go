package fiscal

import (
	"errors"
	"testing"

	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJurisdiction(t *testing.T) {
	t.Run("normalizes id and fills standard interstate rates", func(t *testing.T) {
		j, err := NewJurisdiction(" sp ", "São Paulo", RegionSoutheast, valueobject.MustPercent("18"), valueobject.Percent{}, valueobject.Percent{})
		require.NoError(t, err)
		assert.Equal(t, "SP", j.ID)
		assert.True(t, j.InterstateRateSouthSoutheast.Equal(valueobject.MustPercent("12")))
		assert.True(t, j.InterstateRateOther.Equal(valueobject.MustPercent("7")))
	})

	t.Run("keeps explicit interstate rates", func(t *testing.T) {
		j, err := NewJurisdiction("SP", "São Paulo", RegionSoutheast, valueobject.MustPercent("18"), valueobject.MustPercent("4"), valueobject.MustPercent("4"))
		require.NoError(t, err)
		assert.True(t, j.InterstateRateInto(RegionSouth).Equal(valueobject.MustPercent("4")))
	})

	tests := []struct {
		name   string
		id     string
		region Region
		rate   string
	}{
		{"rejects long id", "SPX", RegionSoutheast, "18"},
		{"rejects unknown region", "SP", Region("east"), "18"},
		{"rejects negative rate", "SP", RegionSoutheast, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJurisdiction(tt.id, tt.id, tt.region, valueobject.MustPercent(tt.rate), valueobject.Percent{}, valueobject.Percent{})
			assert.Error(t, err)
		})
	}
}

func TestJurisdiction_InterstateRateInto(t *testing.T) {
	j := Jurisdiction{
		InterstateRateSouthSoutheast: valueobject.MustPercent("12"),
		InterstateRateOther:          valueobject.MustPercent("7"),
	}
	assert.Equal(t, "12%", j.InterstateRateInto(RegionSouth).String())
	assert.Equal(t, "12%", j.InterstateRateInto(RegionSoutheast).String())
	assert.Equal(t, "7%", j.InterstateRateInto(RegionNortheast).String())
	assert.Equal(t, "7%", j.InterstateRateInto(Region("")).String())
}

func TestJurisdictionTable(t *testing.T) {
	table := testTable(t)

	t.Run("lookup is case insensitive", func(t *testing.T) {
		j, err := table.Lookup("rs")
		require.NoError(t, err)
		assert.Equal(t, RegionSouth, j.Region)
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, err := table.Lookup("XX")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrJurisdictionNotFound))
		assert.False(t, table.Contains("XX"))
	})

	t.Run("all is sorted by id", func(t *testing.T) {
		all := table.All()
		require.Len(t, all, table.Len())
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID)
		}
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		sp := mustJurisdiction(t, "SP", RegionSoutheast, "18")
		_, err := NewJurisdictionTable([]Jurisdiction{sp, sp})
		assert.Error(t, err)
	})

	t.Run("nil table finds nothing", func(t *testing.T) {
		var empty *JurisdictionTable
		_, err := empty.Lookup("SP")
		assert.ErrorIs(t, err, ErrJurisdictionNotFound)
		assert.Equal(t, 0, empty.Len())
		assert.Nil(t, empty.All())
	})
}
