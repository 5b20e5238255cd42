// Package config loads daemon settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/danielpatrickdp/rivenwatch/internal/logging"
)

// Config holds the daemon configuration.
type Config struct {
	DBPath         string
	Addr           string
	MetricsAddr    string // empty disables /metrics
	LogLevel       string
	CatalogFile    string // YAML catalog to seed from
	CatalogURL     string // export URL for scheduled refresh
	CatalogRefresh string // cron spec
	RefreshTimeout time.Duration
	RefreshRetries int
	ReferenceFile  string // optional YAML cost table
}

// LoadConfig reads RIVEN_* environment variables over defaults and validates them.
// A numeric variable that does not parse is an error.
func LoadConfig() (*Config, error) {
	timeoutSec, err := getEnvAsInt("RIVEN_REFRESH_TIMEOUT_SEC", 120)
	if err != nil {
		return nil, err
	}
	retries, err := getEnvAsInt("RIVEN_REFRESH_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:         getEnv("RIVEN_DB", "rivenwatch.db"),
		Addr:           getEnv("RIVEN_ADDR", "localhost:50061"),
		MetricsAddr:    getEnv("RIVEN_METRICS_ADDR", ":9161"),
		LogLevel:       getEnv("RIVEN_LOG_LEVEL", "info"),
		CatalogFile:    getEnv("RIVEN_CATALOG_FILE", ""),
		CatalogURL:     getEnv("RIVEN_CATALOG_URL", ""),
		CatalogRefresh: getEnv("RIVEN_CATALOG_REFRESH", "@every 6h"),
		RefreshTimeout: time.Duration(timeoutSec) * time.Second,
		RefreshRetries: retries,
		ReferenceFile:  getEnv("RIVEN_REFERENCE_FILE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the log level and refresh schedule.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("RIVEN_LOG_LEVEL: %w", err)
	}
	if c.CatalogURL != "" {
		if _, err := cron.ParseStandard(c.CatalogRefresh); err != nil {
			return fmt.Errorf("RIVEN_CATALOG_REFRESH %q: %w", c.CatalogRefresh, err)
		}
	}
	if c.RefreshTimeout <= 0 {
		return errors.New("RIVEN_REFRESH_TIMEOUT_SEC must be positive")
	}
	if c.RefreshRetries < 0 {
		return errors.New("RIVEN_REFRESH_RETRIES must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not an integer", key, valueStr)
	}
	return value, nil
}
