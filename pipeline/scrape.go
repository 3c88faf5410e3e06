package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tickermap/metrics"
	"tickermap/ops"
	"tickermap/scraper"
	"tickermap/storage"
)

// ErrNoMapping is returned by a scrape run when no mapping has been saved.
var ErrNoMapping = errors.New("no ticker mapping saved, run the map command first")

// ScraperDeps are the collaborators of a scrape run.
type ScraperDeps struct {
	Mappings  storage.MappingStore
	Companies storage.CompanyStore
	Scraper   scraper.TickerScraper
	Batch     scraper.BatchOptions
	Metrics   *metrics.Metrics
	Tracker   *ops.Tracker
	Logger    *slog.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// ScrapeReport summarizes a scrape run.
type ScrapeReport struct {
	RunID   string
	Pending int
	Scraped int
	Failed  []string
	Blocked bool
	Summary scraper.Summary
}

// CompanyScraper collects company profiles for every mapped reference that
// has none stored yet.
type CompanyScraper struct {
	deps ScraperDeps
}

// NewCompanyScraper creates a CompanyScraper.
func NewCompanyScraper(deps ScraperDeps) *CompanyScraper {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	return &CompanyScraper{deps: deps}
}

// Run scrapes the pending references. Whatever was collected is appended to
// the company store before Run returns, including when the batch was blocked.
func (s *CompanyScraper) Run(ctx context.Context) (ScrapeReport, error) {
	d := s.deps
	started := d.Now()
	report := ScrapeReport{RunID: d.NewRunID()}
	logger := d.Logger.With("run_id", report.RunID)

	d.Tracker.Start("scrape", report.RunID)
	d.Tracker.SetPhase("load", 0)

	m, err := d.Mappings.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return s.fail(report, started, ErrNoMapping)
	}
	if err != nil {
		return s.fail(report, started, fmt.Errorf("load mapping: %w", err))
	}

	done, err := d.Companies.References(ctx)
	if err != nil {
		return s.fail(report, started, fmt.Errorf("load companies: %w", err))
	}

	var pending []string
	for _, ref := range m.Keys() {
		if _, ok := done[ref]; !ok {
			pending = append(pending, ref)
		}
	}
	report.Pending = len(pending)
	logger.Info("companies to scrape", "pending", len(pending), "stored", len(done))

	opts := d.Batch
	if opts.Logger == nil {
		opts.Logger = logger
	}
	opts.OnResult = func(c scraper.Company) {
		d.Tracker.Advance(1)
		if d.Metrics == nil {
			return
		}
		if c.Complete() {
			d.Metrics.RecordScrape("found")
		} else {
			d.Metrics.RecordScrape("missing")
		}
	}

	d.Tracker.SetPhase("scrape", len(pending))
	result, runErr := scraper.NewBatch(d.Scraper, opts).Run(ctx, pending)
	report.Scraped = len(result.Companies)
	report.Failed = result.Failed
	report.Blocked = result.Blocked
	if d.Metrics != nil {
		for range result.Failed {
			d.Metrics.RecordScrape("failed")
		}
		if result.Blocked {
			d.Metrics.RecordScrape("blocked")
		}
	}

	saveCtx := context.WithoutCancel(ctx)
	if err := d.Companies.Append(saveCtx, result.Companies); err != nil {
		return s.fail(report, started, fmt.Errorf("append companies: %w", err))
	}

	all, err := d.Companies.All(saveCtx)
	if err != nil {
		return s.fail(report, started, fmt.Errorf("load companies: %w", err))
	}
	report.Summary = scraper.Summarize(all)
	logger.Info(fmt.Sprintf("failed to get %d companies out of total %d (%.2f%%)",
		report.Summary.Missing, report.Summary.Total, report.Summary.Percent()))
	for code, n := range report.Summary.ByExchange {
		logger.Info("companies without name", "exchange", code, "count", n)
	}

	if runErr != nil {
		return s.fail(report, started, fmt.Errorf("scrape batch: %w", runErr))
	}

	d.Tracker.Finish(nil)
	if d.Metrics != nil {
		finished := d.Now()
		d.Metrics.RecordRun("scrape", "success", finished.Sub(started).Seconds(), finished.Unix())
	}
	logger.Info("scrape finished",
		"scraped", report.Scraped,
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *CompanyScraper) fail(report ScrapeReport, started time.Time, err error) (ScrapeReport, error) {
	d := s.deps
	d.Tracker.Finish(err)
	if d.Metrics != nil {
		finished := d.Now()
		d.Metrics.RecordRun("scrape", "error", finished.Sub(started).Seconds(), finished.Unix())
	}
	return report, err
}
