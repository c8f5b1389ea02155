package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentabook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisURL = "redis://localhost:6379/0"

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimezone        = "UTC"
	DefaultLockBackend     = LockBackendMongo
	DefaultLockTimeout     = 5 * time.Second
	DefaultLockTTL         = 30 * time.Second
	DefaultMaxCalendarDays = 366

	DefaultKafkaEnabled           = false
	DefaultReservationEventsTopic = "reservations.events"
	DefaultPaymentEventsTopic     = "payments.results"
	DefaultPaymentEventsGroup     = "rentabook-payments"
	DefaultPaymentEventsDLQTopic  = "payments.results.dlq"
	DefaultPublishTimeout         = 5 * time.Second

	DefaultPaginationLimit = 100
)

const (
	LockBackendMemory = "memory"
	LockBackendMongo  = "mongo"
	LockBackendRedis  = "redis"
)
