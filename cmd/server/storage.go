package main

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/erp/taxsim/internal/infrastructure/cache"
	"github.com/erp/taxsim/internal/infrastructure/config"
	"github.com/erp/taxsim/internal/infrastructure/logger"
	"github.com/erp/taxsim/internal/infrastructure/persistence"
	"github.com/erp/taxsim/internal/infrastructure/reference"
	"github.com/erp/taxsim/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const slowQueryThreshold = 200 * time.Millisecond

// storage is the simulation repository and catalog selected by
// database.driver
type storage struct {
	repo    simulation.Repository
	catalog persistence.Catalog
	ping    func(ctx context.Context) error
	close   func() error
}

func (s *storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStorage(cfg *config.Config, tp *telemetry.TracerProvider, log *zap.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage, simulations are lost on restart")
		return &storage{
			repo:    persistence.NewMemorySimulationStore(),
			catalog: persistence.NewMemoryCatalog(),
		}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if cfg.Telemetry.TraceDB && tp.IsEnabled() {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.Driver, tp.Provider()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	return &storage{
		repo:    persistence.NewGormSimulationRepository(db.DB),
		catalog: persistence.NewGormCatalog(db.DB),
		ping: func(context.Context) error {
			return db.Ping()
		},
		close: db.Close,
	}, nil
}

// seedCatalog loads the demo catalog. The in-memory catalog starts empty, so
// it is always seeded. Seeded products are dropped from the product cache so
// a shared redis never serves the previous version.
func seedCatalog(ctx context.Context, cfg *config.Config, catalog reference.CatalogWriter, products *cache.CachedProductCatalog, log *zap.Logger) error {
	if !cfg.Fiscal.SeedCatalog && cfg.Database.Driver != config.DriverMemory {
		return nil
	}
	seed, err := reference.LoadCatalogSeed(cfg.Fiscal.CatalogFile)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, catalog); err != nil {
		return err
	}
	for _, p := range seed.Products {
		if err := products.Invalidate(ctx, p.ID); err != nil {
			log.Warn("Failed to invalidate cached product", zap.String("product_id", p.ID.String()), zap.Error(err))
		}
	}
	log.Info("Catalog seeded",
		zap.Int("products", len(seed.Products)),
		zap.Int("parties", len(seed.Parties)),
	)
	return nil
}
