package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the todokeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the todokeeper API.
//   - TokenFile: where the session token is kept between invocations.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL      string        `env:"TODOKEEPER_SERVER"`
	TokenFile      string        `env:"TODOKEEPER_TOKEN_FILE"`
	RequestTimeout time.Duration `env:"TODOKEEPER_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.TokenFile = DefaultTokenFile()
	c.RequestTimeout = 10 * time.Second
}

// DefaultTokenFile is <user config dir>/todokeeper/token, falling back to the
// working directory when the platform reports no config dir.
func DefaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".todokeeper", "token")
	}
	return filepath.Join(dir, "todokeeper", "token")
}

// Load constructs a Config: defaults, then the JSON file at jsonPath if
// non-empty, then environment variables. Command-line flags are applied by
// the caller afterwards.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return cfg, nil
}
