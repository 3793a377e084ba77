package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	simulationapp "github.com/erp/taxsim/internal/application/simulation"
	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"github.com/erp/taxsim/internal/infrastructure/cache"
	"github.com/erp/taxsim/internal/infrastructure/config"
	"github.com/erp/taxsim/internal/infrastructure/event"
	"github.com/erp/taxsim/internal/infrastructure/logger"
	"github.com/erp/taxsim/internal/infrastructure/reference"
	"github.com/erp/taxsim/internal/infrastructure/telemetry"
	"github.com/erp/taxsim/internal/interfaces/http/handler"
	"github.com/erp/taxsim/internal/interfaces/http/middleware"
	"github.com/erp/taxsim/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting tax simulator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	// Reference data
	table, err := reference.LoadJurisdictions(cfg.Fiscal.JurisdictionFile)
	if err != nil {
		log.Fatal("Failed to load jurisdiction table", zap.Error(err))
	}
	resolver := fiscal.NewRateResolver(table, valueobject.NewPercent(cfg.Fiscal.DefaultInternalRate))
	log.Info("Jurisdiction table loaded",
		zap.Int("jurisdictions", table.Len()),
		zap.String("default_internal_rate", cfg.Fiscal.DefaultInternalRate.String()),
	)

	// Storage
	store, err := openStorage(cfg, tp, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	// Product cache in front of the catalog
	productCache, redisClient, err := cache.NewProductCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create product cache", zap.Error(err))
	}
	defer func() {
		if stopper, ok := productCache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}
	}()
	products := cache.NewCachedProductCatalog(store.catalog, productCache, cfg.Redis.CatalogTTL, log)
	if err := seedCatalog(ctx, cfg, store.catalog, products, log); err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	// Events
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewSubmissionLogHandler(log))
	if redisClient != nil && cfg.Redis.SubmissionChannel != "" {
		bus.Subscribe(event.NewChannelForwarder(redisClient, cfg.Redis.SubmissionChannel))
		log.Info("Forwarding submitted simulations", zap.String("channel", cfg.Redis.SubmissionChannel))
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	service := simulationapp.NewSimulationService(store.repo, products, store.catalog, resolver, log)
	service.SetEventPublisher(bus)
	workspace := simulationapp.NewDraftWorkspace(service,
		simulationapp.NewDraftRegistry(cfg.Draft.TTL, cfg.Draft.MaxDrafts))

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.App.Name,
			Enabled:     tp.IsEnabled(),
			Provider:    tp.Provider(),
		}),
		middleware.SpanAttributes(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        middleware.DefaultCORSConfig().MaxAge,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	health := handler.NewHealthHandler()
	if store.ping != nil {
		health.AddCheck("database", store.ping)
	}
	if redisClient != nil {
		health.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router.Setup(engine, router.Handlers{
		Health:     health,
		Fiscal:     handler.NewFiscalHandler(service),
		Simulation: handler.NewSimulationHandler(service, workspace),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
