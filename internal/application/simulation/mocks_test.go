package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSimulationRepository is a mock implementation of simulation.Repository
type MockSimulationRepository struct {
	mock.Mock
}

func (m *MockSimulationRepository) Create(ctx context.Context, s *simulation.Simulation) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSimulationRepository) Update(ctx context.Context, s *simulation.Simulation) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSimulationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSimulationRepository) Get(ctx context.Context, id int64) (*simulation.Simulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*simulation.Simulation), args.Error(1)
}

func (m *MockSimulationRepository) List(ctx context.Context, filter simulation.Filter) ([]simulation.Simulation, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]simulation.Simulation), args.Get(1).(int64), args.Error(2)
}

// MockProductCatalog is a mock implementation of fiscal.ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*fiscal.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.Product), args.Error(1)
}

// MockPartyDirectory is a mock implementation of fiscal.PartyDirectory
type MockPartyDirectory struct {
	mock.Mock
}

func (m *MockPartyDirectory) GetParty(ctx context.Context, id uuid.UUID) (*fiscal.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.Party), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var (
	notebookID    = uuid.MustParse("7a1f3c52-6a51-4d4e-9f1a-1b2c3d4e5f60")
	contributorID = uuid.MustParse("0b7e4c1a-3d2f-4a5b-8c6d-7e8f9a0b1c2d")
	consumerID    = uuid.MustParse("2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f6a")
	testNow       = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
)

func notebook() *fiscal.Product {
	return &fiscal.Product{
		ID:         notebookID,
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

func contributor() *fiscal.Party {
	return &fiscal.Party{ID: contributorID, Name: "Comercial Baiana", JurisdictionID: "BA", IsTaxContributor: true}
}

func consumer() *fiscal.Party {
	return &fiscal.Party{ID: consumerID, Name: "Maria Souza", JurisdictionID: "BA"}
}

func testResolver(t *testing.T) *fiscal.RateResolver {
	t.Helper()
	build := func(id string, region fiscal.Region, internal string) fiscal.Jurisdiction {
		j, err := fiscal.NewJurisdiction(id, id, region, valueobject.MustPercent(internal), valueobject.Percent{}, valueobject.Percent{})
		require.NoError(t, err)
		return j
	}
	table, err := fiscal.NewJurisdictionTable([]fiscal.Jurisdiction{
		build("SP", fiscal.RegionSoutheast, "18"),
		build("BA", fiscal.RegionNortheast, "20.5"),
		build("RS", fiscal.RegionSouth, "18"),
	})
	require.NoError(t, err)
	return fiscal.NewRateResolver(table, fiscal.DefaultInternalRate)
}

type serviceFixture struct {
	service   *SimulationService
	repo      *MockSimulationRepository
	products  *MockProductCatalog
	parties   *MockPartyDirectory
	publisher *MockEventPublisher
}

func newServiceFixture(t *testing.T, logger *zap.Logger) *serviceFixture {
	f := &serviceFixture{
		repo:      new(MockSimulationRepository),
		products:  new(MockProductCatalog),
		parties:   new(MockPartyDirectory),
		publisher: new(MockEventPublisher),
	}
	f.service = NewSimulationService(f.repo, f.products, f.parties, testResolver(t), logger)
	f.service.SetEventPublisher(f.publisher)
	f.service.now = func() time.Time { return testNow }
	return f
}

// eventOfType matches a Publish call carrying a single event of the type
func eventOfType(eventType string) any {
	return mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == eventType
	})
}
