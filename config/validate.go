package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	switch c.Mapping.Store {
	case StoreCSV:
		if c.Mapping.Path == "" {
			return errors.New("mapping.path is required for the csv store")
		}
	case StorePostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("database.postgres_dsn is required for the postgres mapping store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("mapping.store must be csv, postgres or memory, got %q", c.Mapping.Store)
	}

	if c.Lookup.Enabled {
		if c.Lookup.APIKey == "" {
			return errors.New("lookup.api_key is required when lookup is enabled")
		}
		if _, err := c.Lookup.ThresholdDecimal(); err != nil {
			return err
		}
		if c.Lookup.MaxAttempts < 1 {
			return errors.New("lookup.max_attempts must be >= 1")
		}
		if c.Lookup.Cooldown < 0 {
			return errors.New("lookup.cooldown must be >= 0")
		}
	}

	switch c.Scrape.Store {
	case StoreCSV:
		if c.Scrape.OutputPath == "" {
			return errors.New("scrape.output_path is required for the csv store")
		}
	case StorePostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("database.postgres_dsn is required for the postgres company store")
		}
	default:
		return fmt.Errorf("scrape.store must be csv or postgres, got %q", c.Scrape.Store)
	}
	if c.Scrape.Concurrency < 1 {
		return errors.New("scrape.concurrency must be >= 1")
	}
	if c.Scrape.MinPause < 0 || c.Scrape.MaxPause < c.Scrape.MinPause {
		return fmt.Errorf("scrape.min_pause (%s) and scrape.max_pause (%s) must satisfy 0 <= min <= max",
			c.Scrape.MinPause, c.Scrape.MaxPause)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// ThresholdDecimal parses the acceptance threshold.
func (l LookupConfig) ThresholdDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(l.Threshold)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("lookup.threshold %q is not a decimal: %w", l.Threshold, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("lookup.threshold must be between 0 and 1, got %s", d)
	}
	return d, nil
}

// SlogLevel parses the log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
