// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Database
	DBPath string `envconfig:"FINANCAS_DB_PATH" default:"./data/financas.db"`

	// Sessions
	SessionSecret string        `envconfig:"FINANCAS_SESSION_SECRET"`
	TokenTTL      time.Duration `envconfig:"FINANCAS_TOKEN_TTL" default:"24h"`

	// Credentials
	PBKDF2Iterations     int  `envconfig:"FINANCAS_PBKDF2_ITERATIONS" default:"120000"`
	AllowLegacyPlaintext bool `envconfig:"FINANCAS_ALLOW_LEGACY_PLAINTEXT" default:"false"`

	// Report cache
	ReportCacheSize int           `envconfig:"FINANCAS_REPORT_CACHE_SIZE" default:"64"`
	ReportCacheTTL  time.Duration `envconfig:"FINANCAS_REPORT_CACHE_TTL" default:"30s"`

	// Logging
	LogLevel string `envconfig:"FINANCAS_LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and returns a combined error
// listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.SessionSecret == "" {
		errs = append(errs, "FINANCAS_SESSION_SECRET must be provided")
	} else if len(c.SessionSecret) < 16 {
		errs = append(errs, "FINANCAS_SESSION_SECRET must be at least 16 characters")
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}

	if c.PBKDF2Iterations < 100_000 {
		errs = append(errs, fmt.Sprintf("invalid PBKDF2 iteration count %d: must be at least 100000", c.PBKDF2Iterations))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
