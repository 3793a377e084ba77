package fiscal

import (
	"context"
	"fmt"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Product carries the product-intrinsic tax attributes the engine reads.
// The catalog owns products; the engine never mutates them.
type Product struct {
	ID         uuid.UUID
	Code       string
	Name       string
	CostPrice  valueobject.Money
	SalePrice  valueobject.Money
	IcmsRate   valueobject.Percent
	IpiRate    valueobject.Percent
	PisRate    valueobject.Percent
	CofinsRate valueobject.Percent
}

// Party is the buyer of an operation
type Party struct {
	ID               uuid.UUID
	Name             string
	JurisdictionID   string
	IsTaxContributor bool
}

// ProductCatalog is the external product lookup
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

// PartyDirectory is the external client lookup
type PartyDirectory interface {
	GetParty(ctx context.Context, id uuid.UUID) (*Party, error)
}

// Catalog errors
var (
	ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrPartyNotFound   = shared.NewDomainError("PARTY_NOT_FOUND", "Party not found")
)

// NewProductNotFoundError builds a PRODUCT_NOT_FOUND error naming the id
func NewProductNotFoundError(id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(ErrProductNotFound.Code, fmt.Sprintf("Product %s not found", id))
}

// NewPartyNotFoundError builds a PARTY_NOT_FOUND error naming the id
func NewPartyNotFoundError(id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(ErrPartyNotFound.Code, fmt.Sprintf("Party %s not found", id))
}
