package cache

import (
	"context"
	"sync"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

func testProduct() *fiscal.Product {
	return &fiscal.Product{
		ID:         uuid.MustParse("7a1f3c52-6a51-4d4e-9f1a-1b2c3d4e5f60"),
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

// countingCatalog records how often the backing catalog is hit
type countingCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]fiscal.Product
	calls    int
}

func newCountingCatalog(products ...*fiscal.Product) *countingCatalog {
	c := &countingCatalog{products: make(map[uuid.UUID]fiscal.Product)}
	for _, p := range products {
		c.products[p.ID] = *p
	}
	return c
}

func (c *countingCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*fiscal.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return nil, fiscal.NewProductNotFoundError(id)
	}
	return &p, nil
}

func (c *countingCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
