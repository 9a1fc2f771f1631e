package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Services struct {
		PoolServicePort int
	}
	JWT struct {
		SecretKey string
	}
	// Pricing mirrors pricing.Options. A zero (or omitted) knob falls back
	// to the tariff default, so 0 cannot be configured as an effective
	// value for pool_discount or detour_penalty_weight.
	Pricing struct {
		BaseFare            float64
		RatePerKm           float64
		PoolDiscount        float64
		DetourPenaltyWeight float64
		SurgeMultiplier     float64
	}
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// Services
	if cfg.Services.PoolServicePort == 0 {
		cfg.Services.PoolServicePort = 3000
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// Services
	if c.Services.PoolServicePort <= 0 || c.Services.PoolServicePort > 65535 {
		problems = append(problems, "services.pool_service must be in 1..65535")
	}

	// Pricing (zero means "use default", negatives are always wrong)
	if c.Pricing.BaseFare < 0 || c.Pricing.RatePerKm < 0 {
		problems = append(problems, "pricing fares must be non-negative")
	}
	if c.Pricing.PoolDiscount < 0 || c.Pricing.PoolDiscount >= 1 {
		problems = append(problems, "pricing.pool_discount must be in [0, 1)")
	}
	if c.Pricing.DetourPenaltyWeight < 0 {
		problems = append(problems, "pricing.detour_penalty_weight must be non-negative")
	}
	if c.Pricing.SurgeMultiplier < 0 {
		problems = append(problems, "pricing.surge_multiplier must be non-negative")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
