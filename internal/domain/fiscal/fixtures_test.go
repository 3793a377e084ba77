package fiscal

import (
	"testing"

	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mustJurisdiction(t *testing.T, id string, region Region, internal string) Jurisdiction {
	t.Helper()
	j, err := NewJurisdiction(id, id, region, valueobject.MustPercent(internal), valueobject.Percent{}, valueobject.Percent{})
	require.NoError(t, err)
	return j
}

func testTable(t *testing.T) *JurisdictionTable {
	t.Helper()
	table, err := NewJurisdictionTable([]Jurisdiction{
		mustJurisdiction(t, "SP", RegionSoutheast, "18"),
		mustJurisdiction(t, "RS", RegionSouth, "18"),
		mustJurisdiction(t, "BA", RegionNortheast, "20.5"),
		mustJurisdiction(t, "MG", RegionSoutheast, "18"),
		mustJurisdiction(t, "AM", RegionNorth, "20"),
		mustJurisdiction(t, "GO", RegionMidwest, "19"),
		mustJurisdiction(t, "ZZ", RegionNorth, "4"),
	})
	require.NoError(t, err)
	return table
}

func testProduct() Product {
	return Product{
		ID:         uuid.MustParse("2f1c9a0e-0b7a-4d8e-9a51-0d6c5b1e7a10"),
		Code:       "NB-001",
		Name:       "Notebook",
		CostPrice:  valueobject.MustMoneyBRL("1200"),
		SalePrice:  valueobject.MustMoneyBRL("1999.90"),
		IcmsRate:   valueobject.MustPercent("18"),
		IpiRate:    valueobject.MustPercent("15"),
		PisRate:    valueobject.MustPercent("1.65"),
		CofinsRate: valueobject.MustPercent("7.6"),
	}
}
