package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evdock/evdock-backend/api/routes"
	"github.com/evdock/evdock-backend/internal/allocations"
	"github.com/evdock/evdock-backend/internal/catalog"
	"github.com/evdock/evdock-backend/internal/dealers"
	"github.com/evdock/evdock-backend/internal/inventory"
	"github.com/evdock/evdock-backend/internal/orders"
	"github.com/evdock/evdock-backend/internal/promotions"
	"github.com/evdock/evdock-backend/internal/quotes"
	"github.com/evdock/evdock-backend/pkg/config"
	"github.com/evdock/evdock-backend/pkg/db"
	"github.com/evdock/evdock-backend/pkg/logger"
	"github.com/evdock/evdock-backend/pkg/metrics"
	"github.com/evdock/evdock-backend/pkg/migrate"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(gormDB), logg)

	catalogRepo := catalog.NewRepository(gormDB)
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	dealersService, err := dealers.NewService(dealers.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create dealers service", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(gormDB)
	inventoryService, err := inventory.NewService(inventoryRepo, inventory.NewWarehouseRepository(gormDB), dbClient, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	promotionsService, err := promotions.NewService(promotions.NewRepository(gormDB), dbClient, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotions service", err)
		os.Exit(1)
	}

	quotesService, err := quotes.NewService(quotes.NewRepository(gormDB), dealersService, catalogRepo, promotionsService, dbClient, emitter, cfg.Quote.ValidityDays)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(gormDB)
	allocationMetrics := metrics.NewAllocationMetrics(prometheus.DefaultRegisterer)
	allocationsService, err := allocations.NewService(
		allocations.NewRepository(gormDB),
		allocations.NewIntentRepository(gormDB),
		ordersRepo,
		inventoryService,
		inventoryRepo,
		dbClient,
		emitter,
		logg,
		allocationMetrics,
		cfg.Allocation.DefaultLeadTimeDays,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocations service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dealersService, catalogService, allocationsService, dbClient, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Catalog:     catalogService,
			Dealers:     dealersService,
			Inventory:   inventoryService,
			Orders:      ordersService,
			Allocations: allocationsService,
			Promotions:  promotionsService,
			Quotes:      quotesService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
