package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultProductTTL is used when no TTL is configured
const DefaultProductTTL = 10 * time.Minute

// ProductCache stores catalog products close to the simulator.
// Get reports a miss with found=false and a nil error.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (product *fiscal.Product, found bool, err error)
	Set(ctx context.Context, product *fiscal.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// cachedProduct is the serialized form of a product
type cachedProduct struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	Currency   string          `json:"currency"`
	IcmsRate   decimal.Decimal `json:"icms_rate"`
	IpiRate    decimal.Decimal `json:"ipi_rate"`
	PisRate    decimal.Decimal `json:"pis_rate"`
	CofinsRate decimal.Decimal `json:"cofins_rate"`
}

func encodeProduct(p *fiscal.Product) ([]byte, error) {
	return json.Marshal(cachedProduct{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		CostPrice:  p.CostPrice.Amount(),
		SalePrice:  p.SalePrice.Amount(),
		Currency:   string(p.SalePrice.Currency()),
		IcmsRate:   p.IcmsRate.Decimal(),
		IpiRate:    p.IpiRate.Decimal(),
		PisRate:    p.PisRate.Decimal(),
		CofinsRate: p.CofinsRate.Decimal(),
	})
}

func decodeProduct(data []byte) (*fiscal.Product, error) {
	var c cachedProduct
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	currency := valueobject.Currency(c.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	cost, err := valueobject.NewMoney(c.CostPrice, currency)
	if err != nil {
		return nil, err
	}
	sale, err := valueobject.NewMoney(c.SalePrice, currency)
	if err != nil {
		return nil, err
	}
	return &fiscal.Product{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		CostPrice:  cost,
		SalePrice:  sale,
		IcmsRate:   valueobject.NewPercent(c.IcmsRate),
		IpiRate:    valueobject.NewPercent(c.IpiRate),
		PisRate:    valueobject.NewPercent(c.PisRate),
		CofinsRate: valueobject.NewPercent(c.CofinsRate),
	}, nil
}
