package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/notpazar/notpazar-backend/api/routes"
	"github.com/notpazar/notpazar-backend/internal/cart"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	checkoutsvc "github.com/notpazar/notpazar-backend/internal/checkout"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/internal/media"
	"github.com/notpazar/notpazar-backend/internal/support"
	"github.com/notpazar/notpazar-backend/internal/users"
	"github.com/notpazar/notpazar-backend/pkg/config"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/logger"
	"github.com/notpazar/notpazar-backend/pkg/metrics"
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

	storeMetrics := metrics.NewStoreMetrics(prometheus.DefaultRegisterer)

	store, err := jsonstore.New(cfg.Storage.DatabaseDir, jsonstore.WithLogger(logg), jsonstore.WithMetrics(storeMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to open collection store", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(cfg.Storage, cfg.Media, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(store, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(store, mediaService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(store, catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(store)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, ledgerService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	supportService, err := support.NewService(store)
	if err != nil {
		logg.Error(context.Background(), "failed to create support service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			userService,
			catalogService,
			mediaService,
			cartService,
			ledgerService,
			checkoutService,
			supportService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
