package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atelierhq/atelier-backend/api/routes"
	"github.com/atelierhq/atelier-backend/internal/artists"
	"github.com/atelierhq/atelier-backend/internal/artworks"
	checkoutsvc "github.com/atelierhq/atelier-backend/internal/checkout"
	"github.com/atelierhq/atelier-backend/internal/connect"
	"github.com/atelierhq/atelier-backend/internal/fees"
	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/payouts"
	"github.com/atelierhq/atelier-backend/internal/settlement"
	"github.com/atelierhq/atelier-backend/internal/venues"
	stripewebhook "github.com/atelierhq/atelier-backend/internal/webhooks/stripe"
	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/db"
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
	"github.com/atelierhq/atelier-backend/pkg/migrate"
	"github.com/atelierhq/atelier-backend/pkg/redis"
	pkgstripe "github.com/atelierhq/atelier-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	catalog, err := fees.LoadCatalog(cfg.Plans)
	if err != nil {
		logg.Error(context.Background(), "failed to load plan catalog", err)
		os.Exit(1)
	}
	resolver, err := fees.NewResolver(catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to build fee resolver", err)
		os.Exit(1)
	}
	calculator, err := settlement.NewCalculator(resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to build settlement calculator", err)
		os.Exit(1)
	}

	artistsRepo := artists.NewRepository(dbClient.DB())
	venuesRepo := venues.NewRepository(dbClient.DB())
	artworksRepo := artworks.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	artistsService, err := artists.NewService(artistsRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create artist service", err)
		os.Exit(1)
	}
	venuesService, err := venues.NewService(venuesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create venue service", err)
		os.Exit(1)
	}
	artworksService, err := artworks.NewService(artworksRepo, artistsRepo, venuesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create artwork service", err)
		os.Exit(1)
	}

	connectService, err := connect.NewService(connect.ServiceParams{
		ArtistsRepo:  artistsRepo,
		VenuesRepo:   venuesRepo,
		StripeClient: connect.NewStripeClient(stripeClient),
		ReturnURL:    stripeClient.ConnectReturnURL(),
		RefreshURL:   stripeClient.ConnectRefreshURL(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create connect service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		ArtistsRepo:       artistsRepo,
		ArtworksRepo:      artworksRepo,
		OrdersRepo:        ordersRepo,
		Calculator:        calculator,
		StripeClient:      checkoutsvc.NewStripeClient(stripeClient),
		TransactionRunner: dbClient,
		SuccessURL:        stripeClient.CheckoutSuccessURL(),
		CancelURL:         stripeClient.CheckoutCancelURL(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	payoutsService, err := payouts.NewService(payouts.ServiceParams{
		OrdersRepo:   ordersRepo,
		ArtistsRepo:  artistsRepo,
		VenuesRepo:   venuesRepo,
		StripeClient: payouts.NewStripeClient(stripeClient),
		Logger:       logg,
		Metrics:      settlementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Checkout: checkoutService,
		Payouts:  payoutsService,
		Connect:  connectService,
		Logger:   logg,
		Metrics:  settlementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Registry:        registry,
			StripeClient:    stripeClient,
			FeeResolver:     resolver,
			ArtistsService:  artistsService,
			VenuesService:   venuesService,
			ArtworksService: artworksService,
			ConnectService:  connectService,
			CheckoutService: checkoutService,
			PayoutsService:  payoutsService,
			OrdersRepo:      ordersRepo,
			WebhookService:  webhookService,
			WebhookGuard:    webhookGuard,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
