// Package storage defines persistence for the ticker mapping, scraped
// company data and the lookup audit log.
package storage

import (
	"context"
	"time"

	"tickermap/mapping"
	"tickermap/scraper"
)

// MappingStore persists the ticker mapping between runs.
type MappingStore interface {
	// Load returns the stored mapping. Returns ErrNotFound if nothing was saved yet.
	Load(ctx context.Context) (*mapping.Mapping, error)

	// Save replaces the stored mapping. Either every record is written or none is.
	Save(ctx context.Context, m *mapping.Mapping) error
}

// CompanyStore persists scraped company metadata. It is append-only.
type CompanyStore interface {
	// References returns the reference tickers already stored.
	References(ctx context.Context) (map[string]struct{}, error)

	// Append adds companies. References already stored are skipped.
	Append(ctx context.Context, companies []scraper.Company) error

	// All returns every stored company in insertion order.
	All(ctx context.Context) ([]scraper.Company, error)
}

// LookupAttempt is one call to the symbol search provider.
type LookupAttempt struct {
	RunID     string
	Reference string
	Query     string
	Attempt   int
	Outcome   string
	Symbol    string
	Score     string
	Error     string
	At        time.Time
}

// RunSummary describes one mapping run.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Total       int
	Seeded      int
	Resolved    int
	Unsupported int
	NotFound    int
	TimedOut    int
	Unresolved  int
	LookupCalls int
	Exhausted   bool
}

// AuditLog records lookup attempts and run summaries for later analysis.
type AuditLog interface {
	// RecordAttempts appends attempts in one batch.
	RecordAttempts(ctx context.Context, attempts []LookupAttempt) error

	// RecordRun appends a run summary.
	RecordRun(ctx context.Context, run RunSummary) error
}
