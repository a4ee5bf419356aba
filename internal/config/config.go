// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tokocart/internal/database"

	"github.com/spf13/viper"
)

// Cart store backends.
const (
	CartStoreSQL    = "sql"
	CartStoreMongo  = "mongo"
	CartStoreMemory = "memory"
)

const insecureDefaultSecret = "change_me_in_production"

// Config holds every setting main needs to wire the service.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	CartStore string
	MongoURI  string
	MongoDB   string

	RedisAddr     string
	RedisPassword string

	RabbitMQURL string

	JWTSecret string
	TokenTTL  time.Duration

	LogMode      string
	SeedDemoData bool

	StoreRetryMaxTries        uint
	StoreRetryInitialInterval time.Duration
	StoreRetryMaxInterval     time.Duration
}

// Load reads the configuration from environment variables over built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:toko.db?_busy_timeout=5000")
	v.SetDefault("CART_STORE", CartStoreSQL)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "toko")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", insecureDefaultSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("STORE_RETRY_MAX_TRIES", 4)
	v.SetDefault("STORE_RETRY_INITIAL_INTERVAL", "50ms")
	v.SetDefault("STORE_RETRY_MAX_INTERVAL", "1s")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:                   v.GetString("APP_PORT"),
		DatabaseDriver:            strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:               v.GetString("DATABASE_DSN"),
		CartStore:                 strings.ToLower(v.GetString("CART_STORE")),
		MongoURI:                  v.GetString("MONGO_URI"),
		MongoDB:                   v.GetString("MONGO_DB"),
		RedisAddr:                 v.GetString("REDIS_ADDR"),
		RedisPassword:             v.GetString("REDIS_PASSWORD"),
		RabbitMQURL:               v.GetString("RABBITMQ_URL"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		TokenTTL:                  v.GetDuration("TOKEN_TTL"),
		LogMode:                   v.GetString("LOG_MODE"),
		SeedDemoData:              v.GetBool("SEED_DEMO_DATA"),
		StoreRetryMaxTries:        v.GetUint("STORE_RETRY_MAX_TRIES"),
		StoreRetryInitialInterval: v.GetDuration("STORE_RETRY_INITIAL_INTERVAL"),
		StoreRetryMaxInterval:     v.GetDuration("STORE_RETRY_MAX_INTERVAL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings main cannot wire.
func (c *Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	switch c.CartStore {
	case CartStoreSQL, CartStoreMemory:
	case CartStoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when CART_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("CART_STORE must be one of sql, mongo, memory, got %q", c.CartStore))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be a positive duration"))
	}
	if c.StoreRetryMaxTries == 0 {
		errs = append(errs, errors.New("STORE_RETRY_MAX_TRIES must be at least 1"))
	}
	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its built-in value.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == insecureDefaultSecret
}
