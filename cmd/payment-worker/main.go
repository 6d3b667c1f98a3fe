package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skybooklabs/skybook-backend/internal/inbox"
	"github.com/skybooklabs/skybook-backend/internal/payments"
	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/config"
	"github.com/skybooklabs/skybook-backend/pkg/db"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	"github.com/skybooklabs/skybook-backend/pkg/metrics"
	"github.com/skybooklabs/skybook-backend/pkg/migrate"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
	"github.com/skybooklabs/skybook-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "payment-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "payment-worker"

	logg = logger.New(logger.Options{
		ServiceName: "payment-worker",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	handler, err := payments.NewHandler(
		payments.NewRepository(dbClient.DB()),
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment handler", err)
		os.Exit(1)
	}

	consumer, err := saga.NewConsumer(saga.ConsumerParams{
		Handler:      handler,
		Tx:           dbClient,
		Inbox:        inbox.NewRepository(dbClient.DB()),
		Subscription: pubsubClient.PaymentSubscription(),
		Logger:       logg,
		Metrics:      metrics.NewSagaMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "payment-worker",
	})
	logg.Info(ctx, "starting payment worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "payment worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "payment worker shutting down gracefully")
}
