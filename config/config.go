// Package config loads the YAML configuration shared by the map and scrape
// commands.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Mapping  MappingConfig  `yaml:"mapping"`
	Universe UniverseConfig `yaml:"universe"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// Store backends.
const (
	StoreCSV      = "csv"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// MappingConfig selects where the ticker mapping is kept.
type MappingConfig struct {
	Store string `yaml:"store"` // csv, postgres or memory
	Path  string `yaml:"path"`  // csv file, when Store is csv
}

// UniverseConfig holds the reference ticker sources.
type UniverseConfig struct {
	FeedURL      string `yaml:"feed_url"`
	PublicMapURL string `yaml:"public_map_url"`
}

// LookupConfig holds the symbol search provider settings.
type LookupConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Threshold   string        `yaml:"threshold"` // decimal, e.g. "0.9"
	MaxAttempts int           `yaml:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CacheConfig holds the optional redis response cache. Empty Addr disables it.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// DatabaseConfig holds optional database connections.
type DatabaseConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // audit log; empty disables it
}

// ScrapeConfig holds the company profile scraper settings.
type ScrapeConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Store           string        `yaml:"store"` // csv or postgres
	OutputPath      string        `yaml:"output_path"`
	Concurrency     int           `yaml:"concurrency"`
	Headless        *bool         `yaml:"headless"`
	ChromePath      string        `yaml:"chrome_path"`
	Settle          time.Duration `yaml:"settle"`
	RetryWait       time.Duration `yaml:"retry_wait"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
	MinPause        time.Duration `yaml:"min_pause"`
	MaxPause        time.Duration `yaml:"max_pause"`
}

// HeadlessEnabled reports whether the browser runs without a window.
func (s ScrapeConfig) HeadlessEnabled() bool {
	return s.Headless == nil || *s.Headless
}

// MetricsConfig holds the ops endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
