package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalog serves products and parties from the database
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a new GormCatalog
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// GetProduct implements fiscal.ProductCatalog
func (c *GormCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*fiscal.Product, error) {
	var model models.ProductModel
	if err := c.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiscal.NewProductNotFoundError(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetParty implements fiscal.PartyDirectory
func (c *GormCatalog) GetParty(ctx context.Context, id uuid.UUID) (*fiscal.Party, error) {
	var model models.PartyModel
	if err := c.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiscal.NewPartyNotFoundError(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListProducts returns every product ordered by code
func (c *GormCatalog) ListProducts(ctx context.Context) ([]fiscal.Product, error) {
	var rows []models.ProductModel
	if err := c.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]fiscal.Product, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// ListParties returns every party ordered by name
func (c *GormCatalog) ListParties(ctx context.Context) ([]fiscal.Party, error) {
	var rows []models.PartyModel
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]fiscal.Party, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// UpsertProducts inserts or replaces products by id
func (c *GormCatalog) UpsertProducts(ctx context.Context, products []fiscal.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.ProductModel, len(products))
	for i := range products {
		rows[i].FromDomain(&products[i])
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertParties inserts or replaces parties by id
func (c *GormCatalog) UpsertParties(ctx context.Context, parties []fiscal.Party) error {
	if len(parties) == 0 {
		return nil
	}
	rows := make([]models.PartyModel, len(parties))
	for i := range parties {
		rows[i].FromDomain(&parties[i])
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert parties: %w", err)
	}
	return nil
}

// MemoryCatalog is a process-local catalog, used with the memory driver
// and in tests.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]fiscal.Product
	parties  map[uuid.UUID]fiscal.Party
}

// NewMemoryCatalog creates an empty catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products: make(map[uuid.UUID]fiscal.Product),
		parties:  make(map[uuid.UUID]fiscal.Party),
	}
}

// GetProduct implements fiscal.ProductCatalog
func (c *MemoryCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*fiscal.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, fiscal.NewProductNotFoundError(id)
	}
	return &p, nil
}

// GetParty implements fiscal.PartyDirectory
func (c *MemoryCatalog) GetParty(ctx context.Context, id uuid.UUID) (*fiscal.Party, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.parties[id]
	if !ok {
		return nil, fiscal.NewPartyNotFoundError(id)
	}
	return &p, nil
}

// ListProducts returns every product ordered by code
func (c *MemoryCatalog) ListProducts(ctx context.Context) ([]fiscal.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]fiscal.Product, 0, len(c.products))
	for _, p := range c.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ListParties returns every party ordered by name
func (c *MemoryCatalog) ListParties(ctx context.Context) ([]fiscal.Party, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]fiscal.Party, 0, len(c.parties))
	for _, p := range c.parties {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// UpsertProducts inserts or replaces products by id
func (c *MemoryCatalog) UpsertProducts(ctx context.Context, products []fiscal.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.products[p.ID] = p
	}
	return nil
}

// UpsertParties inserts or replaces parties by id
func (c *MemoryCatalog) UpsertParties(ctx context.Context, parties []fiscal.Party) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range parties {
		c.parties[p.ID] = p
	}
	return nil
}

// Catalog is the full read/write surface shared by both implementations
type Catalog interface {
	fiscal.ProductCatalog
	fiscal.PartyDirectory
	ListProducts(ctx context.Context) ([]fiscal.Product, error)
	ListParties(ctx context.Context) ([]fiscal.Party, error)
	UpsertProducts(ctx context.Context, products []fiscal.Product) error
	UpsertParties(ctx context.Context, parties []fiscal.Party) error
}

var (
	_ Catalog = (*GormCatalog)(nil)
	_ Catalog = (*MemoryCatalog)(nil)
)
