package config

const (
	EnvEnvFile = "ENV_FILE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimezone        = "TIMEZONE"
	EnvLockBackend     = "LOCK_BACKEND"
	EnvLockTimeout     = "LOCK_TIMEOUT"
	EnvLockTTL         = "LOCK_TTL"
	EnvMaxCalendarDays = "MAX_CALENDAR_DAYS"

	EnvKafkaEnabled           = "KAFKA_ENABLED"
	EnvReservationEventsTopic = "RESERVATION_EVENTS_TOPIC"
	EnvPaymentEventsTopic     = "PAYMENT_EVENTS_TOPIC"
	EnvPaymentEventsGroup     = "PAYMENT_EVENTS_GROUP"
	EnvPaymentEventsDLQTopic  = "PAYMENT_EVENTS_DLQ_TOPIC"
	EnvPublishTimeout         = "PUBLISH_TIMEOUT"
)
