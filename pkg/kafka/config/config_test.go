package kafka_config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092, ,broker-2:9092 ")

	cfg := Load()

	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "broker-1:9092" || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("brokers = %v", cfg.Brokers)
	}
	if cfg.ConsumerStartOffset != -2 {
		t.Errorf("payment results must be read from the oldest offset, got %d", cfg.ConsumerStartOffset)
	}
	if cfg.ConsumerRetryBackoff != DefaultConsumerRetryBackoff {
		t.Errorf("retry backoff = %s", cfg.ConsumerRetryBackoff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no brokers", mutate: func(c *Config) { c.Brokers = nil }, wantErr: "broker"},
		{name: "bad compression", mutate: func(c *Config) { c.ProducerCompression = "brotli" }, wantErr: "ProducerCompression"},
		{name: "bad acks", mutate: func(c *Config) { c.ProducerRequireAcks = 2 }, wantErr: "ProducerRequireAcks"},
		{name: "explicit offset", mutate: func(c *Config) { c.ConsumerStartOffset = 42 }, wantErr: "ConsumerStartOffset"},
		{name: "min above max", mutate: func(c *Config) { c.ConsumerMinBytes = 10; c.ConsumerMaxBytes = 1 }, wantErr: "MaxBytes"},
		{name: "negative retries", mutate: func(c *Config) { c.ConsumerMaxRetries = -1 }, wantErr: "ConsumerMaxRetries"},
		{name: "zero session timeout", mutate: func(c *Config) { c.ConsumerSessionTimeout = 0 }, wantErr: "ConsumerSessionTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
