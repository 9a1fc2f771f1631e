package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
database:
  host: db.internal
  port: 5433
  user: ridepool
  password: "s3cret"
  database: ridepool

rabbitmq:
  host: mq.internal
  user: guest
  password: guest

services:
  pool_service: 3100

pricing:
  base_fare: 100
  surge_multiplier: 1.25
`

func TestParseYAML(t *testing.T) {
	var cfg Config
	if err := parseYAML(strings.NewReader(sampleYAML), &cfg); err != nil {
		t.Fatalf("parseYAML: %v", err)
	}
	applyDefaults(&cfg)

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Fatalf("database section = %+v", cfg.Database)
	}
	if cfg.Database.Password != "s3cret" {
		t.Fatalf("quoted scalar not resolved: %q", cfg.Database.Password)
	}
	// rabbitmq port falls back to the default
	if cfg.RabbitMQ.Port != 5672 {
		t.Fatalf("rabbitmq.port default = %d, want 5672", cfg.RabbitMQ.Port)
	}
	if cfg.Services.PoolServicePort != 3100 {
		t.Fatalf("services.pool_service = %d, want 3100", cfg.Services.PoolServicePort)
	}
	if cfg.Pricing.SurgeMultiplier != 1.25 {
		t.Fatalf("pricing.surge_multiplier = %v, want 1.25", cfg.Pricing.SurgeMultiplier)
	}
	// unset pricing knobs stay zero and fall back at calculator construction
	if cfg.Pricing.RatePerKm != 0 {
		t.Fatalf("pricing.rate_per_km = %v, want 0 (defaulted later)", cfg.Pricing.RatePerKm)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	bad := "database:\n  hostname: nope\n"
	var cfg Config
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseYAMLRejectsDuplicateSections(t *testing.T) {
	bad := "database:\n  host: a\ndatabase:\n  host: b\n"
	var cfg Config
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatal("expected error for duplicate section")
	}
}
