package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tickermap/browser"
)

// DefaultBaseURL is the company profile site.
const DefaultBaseURL = "https://www.bloomberg.com/profile/company/"

// Fetcher loads a page and returns its rendered HTML. *browser.Pool implements it.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string, settle time.Duration) (string, error)
}

// Service scrapes one reference ticker at a time.
type Service struct {
	fetcher   Fetcher
	scraper   Scraper
	baseURL   string
	settle    time.Duration
	retryWait time.Duration
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBaseURL sets the profile site prefix.
func WithBaseURL(u string) ServiceOption {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithSettle sets how long a loaded page is given to render.
func WithSettle(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.settle = d
	}
}

// WithRetryWait sets the wait before retrying a timed out page load.
func WithRetryWait(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.retryWait = d
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new scraper service
func NewService(fetcher Fetcher, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:   fetcher,
		scraper:   &ProfileScraper{},
		baseURL:   DefaultBaseURL,
		settle:    5 * time.Second,
		retryWait: 20 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileURL returns the profile page of a reference ticker: "BT/A LN"
// becomes base + "BT/A:LN".
func (s *Service) ProfileURL(reference string) string {
	return s.baseURL + strings.ReplaceAll(reference, " ", ":")
}

// ScrapeTicker fetches and extracts the profile of reference. A page load
// that times out is retried once after the retry wait.
func (s *Service) ScrapeTicker(ctx context.Context, reference string) (Company, error) {
	url := s.ProfileURL(reference)

	htmlContent, err := s.fetcher.FetchHTML(ctx, url, s.settle)
	if errors.Is(err, browser.ErrTimeout) {
		s.logger.Warn("page load timed out, retrying", "reference", reference, "url", url, "wait", s.retryWait)
		if err := sleep(ctx, s.retryWait); err != nil {
			return Company{}, err
		}
		htmlContent, err = s.fetcher.FetchHTML(ctx, url, s.settle)
	}
	if err != nil {
		return Company{}, fmt.Errorf("fetch profile %s: %w", reference, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return Company{}, fmt.Errorf("parse profile %s: %w", reference, err)
	}

	company, err := s.scraper.Scrape(doc, reference)
	if err != nil {
		return Company{}, fmt.Errorf("scrape %s: %w", reference, err)
	}
	if company.Found && !company.Complete() {
		s.logger.Warn("profile page without company name", "reference", reference, "url", url)
	}
	return company, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
