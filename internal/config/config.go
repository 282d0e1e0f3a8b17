// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Primary usage store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Durable backup store (PostgreSQL). Empty disables the backup tier.
	DatabaseURL string `env:"DATABASE_URL"`

	// Catalog file (JSON). Empty uses the built-in default catalog.
	CatalogPath string `env:"CATALOG_PATH"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Usage aggregator tuning
	DefaultFrameRate   string        `env:"DEFAULT_FRAME_RATE" envDefault:"30"`
	RetentionDays      int           `env:"ANALYTICS_RETENTION_DAYS" envDefault:"90"`
	MaxConfigurations  int           `env:"ANALYTICS_MAX_CONFIGURATIONS" envDefault:"1000"`
	DedupWindow        time.Duration `env:"ANALYTICS_DEDUP_WINDOW" envDefault:"5s"`
	StoreOpTimeout     time.Duration `env:"ANALYTICS_OP_TIMEOUT" envDefault:"3s"`
	WriteAttempts      int           `env:"ANALYTICS_WRITE_ATTEMPTS" envDefault:"3"`
	IncrementQueueSize int           `env:"ANALYTICS_QUEUE_SIZE" envDefault:"1024"`

	// Argon2id hash of the admin capability key. Empty disables the
	// administrative clear endpoint entirely.
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
