package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	products   []fiscal.Product
	parties    []fiscal.Party
	productErr error
}

func (w *recordingWriter) UpsertProducts(ctx context.Context, products []fiscal.Product) error {
	if w.productErr != nil {
		return w.productErr
	}
	w.products = append(w.products, products...)
	return nil
}

func (w *recordingWriter) UpsertParties(ctx context.Context, parties []fiscal.Party) error {
	w.parties = append(w.parties, parties...)
	return nil
}

func TestLoadCatalogSeed_Embedded(t *testing.T) {
	seed, err := LoadCatalogSeed("")
	require.NoError(t, err)
	require.Len(t, seed.Products, 3)
	require.Len(t, seed.Parties, 3)

	notebook := seed.Products[0]
	assert.Equal(t, "NB-001", notebook.Code)
	assert.Equal(t, "1999.9", notebook.SalePrice.Amount().String())
	assert.Equal(t, "1.65", notebook.PisRate.Decimal().String())

	contributors := 0
	for _, p := range seed.Parties {
		if p.IsTaxContributor {
			contributors++
		}
	}
	assert.Equal(t, 2, contributors)
}

func TestParseCatalogSeed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad product id", "products:\n  - {id: nope, code: A, name: A, cost_price: \"1\", sale_price: \"2\"}\n"},
		{"bad price", "products:\n  - {id: 7a1f3c52-6a51-4d4e-9f1a-1b2c3d4e5f60, code: A, name: A, cost_price: x, sale_price: \"2\"}\n"},
		{"bad rate", "products:\n  - {id: 7a1f3c52-6a51-4d4e-9f1a-1b2c3d4e5f60, code: A, name: A, cost_price: \"1\", sale_price: \"2\", ipi_rate: x}\n"},
		{"bad party id", "parties:\n  - {id: nope, name: B, jurisdiction_id: SP}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogSeed([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestCatalogSeed_Apply(t *testing.T) {
	seed, err := LoadCatalogSeed("")
	require.NoError(t, err)

	w := &recordingWriter{}
	require.NoError(t, seed.Apply(context.Background(), w))
	assert.Len(t, w.products, 3)
	assert.Len(t, w.parties, 3)

	failing := &recordingWriter{productErr: errors.New("db down")}
	err = seed.Apply(context.Background(), failing)
	assert.Error(t, err)
	assert.Empty(t, failing.parties)
}
