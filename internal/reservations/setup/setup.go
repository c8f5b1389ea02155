// Package setup builds the reservation service from configuration. Both the
// HTTP service and the payments consumer share it.
package setup

import (
	"context"
	"fmt"

	"rentabook/internal/reservations/events"
	"rentabook/internal/reservations/repository"
	"rentabook/internal/reservations/service"
	"rentabook/internal/reservations/validator"
	"rentabook/pkg/config"
	"rentabook/pkg/kafka"
	kafka_config "rentabook/pkg/kafka/config"
	"rentabook/pkg/kafka/middleware"
	"rentabook/pkg/lock"
)

// Connect opens the clients the configured backends need.
func Connect(cfg *config.Config) {
	cfg.SetMongo()
	if cfg.UseRedis() {
		cfg.SetRedis()
	}
}

// NewLocker returns the per-property lock for cfg.LockBackend.
func NewLocker(cfg *config.Config) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.LockBackendMemory:
		cfg.Log.Warn("Using in-process property locks, run a single replica only")
		return lock.NewMemory(), nil
	case config.LockBackendMongo:
		return lock.NewPolling(repository.NewPropertyLockRepository(cfg), cfg.LockTTL, lock.DefaultPollInterval), nil
	case config.LockBackendRedis:
		if cfg.Client.Redis == nil {
			return nil, fmt.Errorf("lock backend %q requires a redis client", cfg.LockBackend)
		}
		return lock.NewRedis(cfg.Client.Redis, cfg.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

// NewPublisher returns the change feed publisher and a function releasing it.
// With Kafka disabled events are dropped.
func NewPublisher(cfg *config.Config) (events.Publisher, func(ctx context.Context), error) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return events.NoopPublisher{}, func(context.Context) {}, nil
	}

	kcfg := kafka_config.Load()
	kcfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kcfg, cfg.ReservationEventsTopic, "", cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reservation events producer: %w", err)
	}
	if kcfg.EnableMiddleware {
		producer.Use(middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(middleware.MetricsProducerMiddleware())
	}

	closeFn := func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close reservation events producer", "error", err)
		}
	}
	cfg.Log.Info("Publishing reservation events", "topic", cfg.ReservationEventsTopic)
	return events.NewKafkaPublisher(producer), closeFn, nil
}

// NewService wires repositories, the lock and the publisher into the
// reservation service.
func NewService(cfg *config.Config, locker lock.Locker, publisher events.Publisher) service.ReservationService {
	svc := service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewMongoPropertyRepository(cfg),
		repository.NewMongoClientRepository(cfg),
		locker,
		validator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)
	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
	)
	return svc
}
