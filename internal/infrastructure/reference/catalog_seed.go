package reference

import (
	"context"
	"fmt"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CatalogSeed is the demo catalog content
type CatalogSeed struct {
	Products []fiscal.Product
	Parties  []fiscal.Party
}

// CatalogWriter receives seeded data
type CatalogWriter interface {
	UpsertProducts(ctx context.Context, products []fiscal.Product) error
	UpsertParties(ctx context.Context, parties []fiscal.Party) error
}

type seedFile struct {
	Products []productEntry `yaml:"products"`
	Parties  []partyEntry   `yaml:"parties"`
}

type productEntry struct {
	ID         string `yaml:"id"`
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	CostPrice  string `yaml:"cost_price"`
	SalePrice  string `yaml:"sale_price"`
	IcmsRate   string `yaml:"icms_rate"`
	IpiRate    string `yaml:"ipi_rate"`
	PisRate    string `yaml:"pis_rate"`
	CofinsRate string `yaml:"cofins_rate"`
}

type partyEntry struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	JurisdictionID   string `yaml:"jurisdiction_id"`
	IsTaxContributor bool   `yaml:"is_tax_contributor"`
}

// LoadCatalogSeed reads the seed from path, or the embedded demo catalog
// when path is empty.
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data, err := readSource(path, embeddedCatalogSeed)
	if err != nil {
		return nil, err
	}
	return ParseCatalogSeed(data)
}

// ParseCatalogSeed decodes a YAML catalog seed
func ParseCatalogSeed(data []byte) (*CatalogSeed, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}

	seed := &CatalogSeed{
		Products: make([]fiscal.Product, 0, len(file.Products)),
		Parties:  make([]fiscal.Party, 0, len(file.Parties)),
	}
	for _, e := range file.Products {
		p, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", e.Code, err)
		}
		seed.Products = append(seed.Products, p)
	}
	for _, e := range file.Parties {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, fmt.Errorf("party %q: invalid id: %w", e.Name, err)
		}
		seed.Parties = append(seed.Parties, fiscal.Party{
			ID:               id,
			Name:             e.Name,
			JurisdictionID:   fiscal.NormalizeJurisdictionID(e.JurisdictionID),
			IsTaxContributor: e.IsTaxContributor,
		})
	}
	return seed, nil
}

func (e productEntry) toDomain() (fiscal.Product, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return fiscal.Product{}, fmt.Errorf("invalid id: %w", err)
	}
	cost, err := valueobject.NewMoneyFromString(e.CostPrice, valueobject.DefaultCurrency)
	if err != nil {
		return fiscal.Product{}, fmt.Errorf("cost_price: %w", err)
	}
	sale, err := valueobject.NewMoneyFromString(e.SalePrice, valueobject.DefaultCurrency)
	if err != nil {
		return fiscal.Product{}, fmt.Errorf("sale_price: %w", err)
	}

	rates := make([]valueobject.Percent, 4)
	for i, raw := range []string{e.IcmsRate, e.IpiRate, e.PisRate, e.CofinsRate} {
		rate, err := optionalPercent(raw)
		if err != nil {
			return fiscal.Product{}, err
		}
		rates[i] = rate
	}

	return fiscal.Product{
		ID:         id,
		Code:       e.Code,
		Name:       e.Name,
		CostPrice:  cost,
		SalePrice:  sale,
		IcmsRate:   rates[0],
		IpiRate:    rates[1],
		PisRate:    rates[2],
		CofinsRate: rates[3],
	}, nil
}

// Apply writes the seed into the catalog
func (s *CatalogSeed) Apply(ctx context.Context, w CatalogWriter) error {
	if err := w.UpsertProducts(ctx, s.Products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := w.UpsertParties(ctx, s.Parties); err != nil {
		return fmt.Errorf("failed to seed parties: %w", err)
	}
	return nil
}
