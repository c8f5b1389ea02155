package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"rentabook/internal/reservations/payments"
	"rentabook/internal/reservations/setup"
	"rentabook/pkg/config"
	"rentabook/pkg/kafka"
	kafka_config "rentabook/pkg/kafka/config"
	"rentabook/pkg/kafka/middleware"
)

const (
	ServiceName     = "payments-consumer"
	metricsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	setup.Connect(cfg)
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Payments consumer")
	locker, err := setup.NewLocker(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create property lock", "error", err)
	}
	publisher, closePublisher, err := setup.NewPublisher(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	defer closePublisher(context.Background())

	reservationService := setup.NewService(cfg, locker, publisher)

	kcfg := kafka_config.Load()
	kcfg.LogConfiguration(cfg.Log)
	consumer, err := kafka.NewConsumer(
		kcfg,
		cfg.PaymentEventsTopic,
		cfg.PaymentEventsGroup,
		cfg.PaymentEventsDLQTopic,
		payments.NewHandler(reservationService, cfg.Log).Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create payments consumer", "error", err)
	}
	if kcfg.EnableMiddleware {
		consumer.Use(middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(middleware.MetricsConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, cfg)

	cfg.Log.Info("Consuming payment results",
		"topic", cfg.PaymentEventsTopic,
		"group", cfg.PaymentEventsGroup,
		"dlq_topic", cfg.PaymentEventsDLQTopic,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Payments consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Shutting down payments consumer")
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close payments consumer", "error", err)
	}
}

func reportMetrics(ctx context.Context, cfg *config.Config) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			middleware.GetMetrics().LogMetrics(cfg.Log)
		}
	}
}
