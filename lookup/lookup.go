// Package lookup accepts a symbol search result only when the provider is
// confident about its best candidate.
package lookup

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"tickermap/stock"
)

// DefaultThreshold is the minimum match score of an accepted candidate.
var DefaultThreshold = decimal.RequireFromString("0.9")

// Searcher runs a symbol search. *stock.Client implements it.
type Searcher interface {
	Search(ctx context.Context, keywords string) ([]stock.Match, error)
}

// Kind tags the outcome of a lookup.
type Kind int

const (
	Found Kind = iota
	NotFound
	RateLimited
	// Failed covers transport and provider errors other than throttling.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one lookup.
type Outcome struct {
	Kind   Kind
	Symbol string          // provider symbol, Found only
	Score  decimal.Decimal // score of the top candidate, when there was one
	Err    error           // Failed only
}

// Matcher performs confidence-matched lookups.
type Matcher struct {
	searcher  Searcher
	threshold decimal.Decimal
}

// NewMatcher returns a Matcher accepting candidates scoring at least
// threshold. A zero threshold means DefaultThreshold.
func NewMatcher(searcher Searcher, threshold decimal.Decimal) *Matcher {
	if threshold.IsZero() {
		threshold = DefaultThreshold
	}
	return &Matcher{searcher: searcher, threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() decimal.Decimal {
	return m.threshold
}

// Lookup searches for query and accepts the first-ranked candidate if its
// score reaches the threshold. Throttling is returned as RateLimited, never
// as an error.
func (m *Matcher) Lookup(ctx context.Context, query string) Outcome {
	matches, err := m.searcher.Search(ctx, query)
	if err != nil {
		if errors.Is(err, stock.ErrRateLimited) {
			return Outcome{Kind: RateLimited}
		}
		return Outcome{Kind: Failed, Err: err}
	}

	if len(matches) == 0 {
		return Outcome{Kind: NotFound}
	}

	top := matches[0]
	if top.Symbol == "" || top.MatchScore.LessThan(m.threshold) {
		return Outcome{Kind: NotFound, Score: top.MatchScore}
	}
	return Outcome{Kind: Found, Symbol: top.Symbol, Score: top.MatchScore}
}
