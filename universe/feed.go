package universe

import (
	"context"
)

// Feed is the live universe of reference tickers.
type Feed struct {
	source
}

// NewFeed returns a feed reading the bloomberg_ticker column of the CSV at url.
func NewFeed(url string, opts ...Option) *Feed {
	return &Feed{source: newSource(url, opts)}
}

// Tickers returns the reference tickers in feed order, without blanks or
// duplicates.
func (f *Feed) Tickers(ctx context.Context) ([]string, error) {
	rows, err := f.table(ctx, referenceColumn)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		t := row[0]
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}

	f.logger.Info("universe feed loaded", "url", f.url, "rows", len(rows), "tickers", len(tickers))
	return tickers, nil
}
