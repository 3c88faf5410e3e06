package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultMappingPath     = "ticker_map.csv"
	DefaultThreshold       = "0.9"
	DefaultMaxAttempts     = 4
	DefaultCooldown        = 60 * time.Second
	DefaultLookupTimeout   = 30 * time.Second
	DefaultCachePrefix     = "tickermap"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultCompanyPath     = "company_data.csv"
	DefaultConcurrency     = 1
	DefaultSettle          = 5 * time.Second
	DefaultRetryWait       = 20 * time.Second
	DefaultNavigateTimeout = 60 * time.Second
	DefaultMinPause        = 5 * time.Second
	DefaultMaxPause        = 15 * time.Second
	DefaultMetricsAddr     = ":9090"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *Config) applyDefaults() {
	// Mapping defaults
	if c.Mapping.Store == "" {
		c.Mapping.Store = StoreCSV
	}
	if c.Mapping.Path == "" {
		c.Mapping.Path = DefaultMappingPath
	}

	// Lookup defaults
	if c.Lookup.Threshold == "" {
		c.Lookup.Threshold = DefaultThreshold
	}
	if c.Lookup.MaxAttempts == 0 {
		c.Lookup.MaxAttempts = DefaultMaxAttempts
	}
	if c.Lookup.Cooldown == 0 {
		c.Lookup.Cooldown = DefaultCooldown
	}
	if c.Lookup.Timeout == 0 {
		c.Lookup.Timeout = DefaultLookupTimeout
	}

	// Cache defaults
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = DefaultCachePrefix
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// Scrape defaults
	if c.Scrape.Store == "" {
		c.Scrape.Store = StoreCSV
	}
	if c.Scrape.OutputPath == "" {
		c.Scrape.OutputPath = DefaultCompanyPath
	}
	if c.Scrape.Concurrency == 0 {
		c.Scrape.Concurrency = DefaultConcurrency
	}
	if c.Scrape.Settle == 0 {
		c.Scrape.Settle = DefaultSettle
	}
	if c.Scrape.RetryWait == 0 {
		c.Scrape.RetryWait = DefaultRetryWait
	}
	if c.Scrape.NavigateTimeout == 0 {
		c.Scrape.NavigateTimeout = DefaultNavigateTimeout
	}
	if c.Scrape.MinPause == 0 && c.Scrape.MaxPause == 0 {
		c.Scrape.MinPause = DefaultMinPause
		c.Scrape.MaxPause = DefaultMaxPause
	}

	// Metrics defaults
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
