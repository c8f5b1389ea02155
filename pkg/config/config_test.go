package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		RedisURL:          DefaultRedisURL,
		Port:              DefaultPort,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		Timezone:          DefaultTimezone,
		Location:          time.UTC,
		LockBackend:       DefaultLockBackend,
		LockTimeout:       DefaultLockTimeout,
		LockTTL:           DefaultLockTTL,
		MaxCalendarDays:   DefaultMaxCalendarDays,
		PublishTimeout:    DefaultPublishTimeout,
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{"bad port", func(cfg *Config) { cfg.Port = "0" }, "Port must be between"},
		{"bad mongo uri", func(cfg *Config) { cfg.MongoURI = "postgres://x" }, "MongoURI must start with"},
		{"unknown timezone", func(cfg *Config) { cfg.Timezone = "Mars/Olympus"; cfg.Location = nil }, "Timezone must be a valid"},
		{"unknown lock backend", func(cfg *Config) { cfg.LockBackend = "zookeeper" }, "LockBackend must be one of"},
		{"redis without url", func(cfg *Config) { cfg.LockBackend = LockBackendRedis; cfg.RedisURL = "" }, "RedisURL is required"},
		{"ttl shorter than timeout", func(cfg *Config) { cfg.LockTTL = time.Second; cfg.LockTimeout = 2 * time.Second }, "LockTTL"},
		{"kafka without topic", func(cfg *Config) { cfg.KafkaEnabled = true }, "ReservationEventsTopic cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error to contain %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestRedactCredentials(t *testing.T) {
	if got := redactMongoURI("mongodb://admin:secret@db:27017"); strings.Contains(got, "secret") {
		t.Errorf("mongo password leaked: %s", got)
	}
	if got := redactRedisURL("redis://:secret@cache:6379/0"); strings.Contains(got, "secret") {
		t.Errorf("redis password leaked: %s", got)
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{25, 25},
		{DefaultPaginationLimit + 1, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := NormalizeOffset(-3); got != 0 {
		t.Errorf("NormalizeOffset(-3) = %d, want 0", got)
	}
}
