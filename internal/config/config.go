package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const devJWTSecret = "dev-secret-change-in-production"

var ErrDefaultSecretInProduction = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	Env         string        `envconfig:"ENV" default:"development" validate:"oneof=development staging production"`
	DatabaseDSN string        `envconfig:"DATABASE_DSN" default:"root:password@tcp(127.0.0.1:3306)/keysmith?parseTime=true"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production" validate:"required,min=16"`
	JWTExpiry   time.Duration `envconfig:"JWT_EXPIRY" default:"24h" validate:"gt=0"`

	EntropyURL     string        `envconfig:"ENTROPY_URL" default:"https://api.random.org/json-rpc/4/invoke" validate:"required,url"`
	EntropyAPIKey  string        `envconfig:"ENTROPY_API_KEY"`
	EntropyTimeout time.Duration `envconfig:"ENTROPY_TIMEOUT" default:"10s" validate:"gt=0"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5" validate:"gt=0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gte=1"`
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file if present, then the environment, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load()
}

func load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrDefaultSecretInProduction
	}

	return cfg, nil
}
