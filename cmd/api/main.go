package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hoshigrove/chasen-backend/api/routes"
	"github.com/hoshigrove/chasen-backend/internal/cart"
	"github.com/hoshigrove/chasen-backend/internal/catalog"
	"github.com/hoshigrove/chasen-backend/internal/compliance"
	"github.com/hoshigrove/chasen-backend/internal/identity"
	"github.com/hoshigrove/chasen-backend/internal/messaging"
	"github.com/hoshigrove/chasen-backend/internal/orders"
	"github.com/hoshigrove/chasen-backend/internal/quotes"
	"github.com/hoshigrove/chasen-backend/internal/rfq"
	"github.com/hoshigrove/chasen-backend/pkg/config"
	"github.com/hoshigrove/chasen-backend/pkg/db"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
	"github.com/hoshigrove/chasen-backend/pkg/migrate"
	"github.com/hoshigrove/chasen-backend/pkg/redis"
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

	identityRepo := identity.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	threadsRepo := messaging.NewRepository(dbClient.DB())
	rfqRepo := rfq.NewRepository(dbClient.DB())
	quoteRepo := quotes.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	identityService, err := identity.NewService(identityRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	rfqService, err := rfq.NewService(rfqRepo, catalogService, threadsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq service", err)
		os.Exit(1)
	}
	quoteService, err := quotes.NewService(quoteRepo, rfqRepo, orderRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orderRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(
		cart.NewRepository(dbClient.DB()),
		catalogService,
		rfqRepo,
		quoteRepo,
		orderRepo,
		threadsRepo,
		dbClient,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	complianceEval := compliance.NewEvaluator()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			identityService,
			cartService,
			rfqService,
			quoteService,
			orderRepo,
			ordersService,
			complianceEval,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
