package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Auth   AuthConfig
	Purge  PurgeConfig
	Image  ImageConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host             string        `envconfig:"DB_HOST" default:"localhost"`
	Port             int           `envconfig:"DB_PORT" default:"5432"`
	User             string        `envconfig:"DB_USER" default:"postgres"`
	Password         string        `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name             string        `envconfig:"DB_NAME" default:"coupon_marketplace"`
	SSLMode          string        `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns         int           `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns         int           `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxRetries       int           `envconfig:"DB_MAX_RETRIES" default:"5"`
	StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"5s"`
	AutoMigrate      bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds token and operator credential configuration.
// WARNING: Defaults are for local development only.
type AuthConfig struct {
	TokenSecret   string `envconfig:"TOKEN_SECRET" default:"this+is+my+key+and+it+must+be+at+least+256+bits+long"` // CHANGE IN PRODUCTION
	TokenHeader   string `envconfig:"TOKEN_HEADER" default:"token"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@admin.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"` // CHANGE IN PRODUCTION
}

// PurgeConfig controls the expired-coupon cleanup job.
type PurgeConfig struct {
	Enabled  bool          `envconfig:"PURGE_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"PURGE_INTERVAL" default:"24h"`
}

// ImageConfig holds the image hosting client configuration.
type ImageConfig struct {
	UploadURL     string        `envconfig:"IMAGE_UPLOAD_URL" default:"https://api.imgbb.com/1/upload"`
	APIKey        string        `envconfig:"IMAGE_API_KEY"`
	FallbackURL   string        `envconfig:"IMAGE_FALLBACK_URL" default:"https://i.ibb.co/9bNWnXc/design-2461957-640.png"`
	Timeout       time.Duration `envconfig:"IMAGE_TIMEOUT" default:"10s"`
	RatePerSecond float64       `envconfig:"IMAGE_RATE_PER_SECOND" default:"5"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Auth.TokenSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least 32 bytes, got %d", len(cfg.Auth.TokenSecret))
	}
	if cfg.Purge.Enabled && cfg.Purge.Interval <= 0 {
		return nil, fmt.Errorf("PURGE_INTERVAL must be positive, got %s", cfg.Purge.Interval)
	}
	return &cfg, nil
}
