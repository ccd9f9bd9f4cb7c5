// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables and command-line flags, applied
// in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime settings for the todokeeper server.
//
// Fields:
//   - HTTPAddress: bind address for the JSON API.
//   - StorageDriver: "postgres" (pgx) or "sqlite" (embedded file store).
//   - DatabaseDSN: connection string for the selected driver.
//   - SecretKey: HMAC secret for signing JWTs (HS256). There is no default.
//   - TokenValidityDuration: lifetime of issued session tokens.
//   - ShutdownTimeout: how long in-flight requests may run after a stop signal.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddress           string        `env:"HTTP_ADDRESS"`
	StorageDriver         string        `env:"STORAGE_DRIVER"`
	DatabaseDSN           string        `env:"DATABASE_DSN"`
	SecretKey             string        `env:"JWT_SECRET"`
	TokenValidityDuration time.Duration `env:"JWT_EXPIRY"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel              string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults. SecretKey is left
// empty on purpose and must come from the environment, a file or a flag.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":3000"
	c.StorageDriver = DriverSQLite
	c.DatabaseDSN = "file:todokeeper.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	c.TokenValidityDuration = time.Hour
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Validate reports the first setting that makes the server unable to start.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key is required (JWT_SECRET)")
	}
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is required (DATABASE_DSN)")
	}
	if c.TokenValidityDuration <= 0 {
		return errors.New("token validity must be positive (JWT_EXPIRY)")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
