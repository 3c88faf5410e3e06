// Package stock is a client for the destination provider's symbol search
// endpoint (Alpha Vantage SYMBOL_SEARCH).
package stock

import (
	"log/slog"
	"net/http"
	"time"

	"tickermap/cache"
)

// DefaultBaseURL is the provider's query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Client searches the provider's symbol directory.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	cache    *cache.Cache
	cacheTTL time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a symbol search client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   slog.Default(),
		cacheTTL: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCache memoizes successful search responses for ttl.
func WithCache(cc *cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cc
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}
