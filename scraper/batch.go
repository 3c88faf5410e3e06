package scraper

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tickermap/ticker"
)

// TickerScraper scrapes one reference ticker. *Service implements it.
type TickerScraper interface {
	ScrapeTicker(ctx context.Context, reference string) (Company, error)
}

// BatchOptions configures a Batch.
type BatchOptions struct {
	Concurrency int           // concurrent sessions; default 1
	MinPause    time.Duration // pause after each ticker is drawn from [MinPause, MaxPause]
	MaxPause    time.Duration
	Logger      *slog.Logger

	// OnResult, if set, is called for every scraped company as it arrives.
	OnResult func(Company)
}

// BatchResult is what a batch collected before it finished or was stopped.
type BatchResult struct {
	Companies []Company // in input order
	Failed    []string  // references whose fetch failed; retried next run
	Blocked   bool
}

// Batch scrapes many tickers with bounded concurrency.
type Batch struct {
	scraper TickerScraper
	opts    BatchOptions
	pause   func() time.Duration
}

// NewBatch creates a batch runner over s.
func NewBatch(s TickerScraper, opts BatchOptions) *Batch {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxPause < opts.MinPause {
		opts.MaxPause = opts.MinPause
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	b := &Batch{scraper: s, opts: opts}
	b.pause = b.randomPause
	return b
}

func (b *Batch) randomPause() time.Duration {
	span := b.opts.MaxPause - b.opts.MinPause
	if span <= 0 {
		return b.opts.MinPause
	}
	return b.opts.MinPause + rand.N(span+1)
}

// Run scrapes references. A bot challenge stops the batch: no new ticker is
// started and Run returns an error matching ErrBlocked together with
// everything collected so far.
func (b *Batch) Run(ctx context.Context, references []string) (BatchResult, error) {
	position := make(map[string]int, len(references))
	for i, ref := range references {
		position[ref] = i
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)

	for _, ref := range references {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			company, err := b.scraper.ScrapeTicker(gctx, ref)
			switch {
			case errors.Is(err, ErrBlocked):
				b.opts.Logger.Error("scrape blocked, stopping batch", "reference", ref)
				mu.Lock()
				result.Blocked = true
				mu.Unlock()
				return err
			case err != nil:
				if gctx.Err() != nil {
					return nil
				}
				b.opts.Logger.Warn("scrape failed", "reference", ref, "error", err)
				mu.Lock()
				result.Failed = append(result.Failed, ref)
				mu.Unlock()
			default:
				mu.Lock()
				result.Companies = append(result.Companies, company)
				mu.Unlock()
				if b.opts.OnResult != nil {
					b.opts.OnResult(company)
				}
			}

			_ = sleep(gctx, b.pause())
			return nil
		})
	}

	err := g.Wait()

	sort.Slice(result.Companies, func(i, j int) bool {
		return position[result.Companies[i].Reference] < position[result.Companies[j].Reference]
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return position[result.Failed[i]] < position[result.Failed[j]]
	})

	if err == nil {
		err = ctx.Err()
	}
	return result, err
}

// Summary counts companies without a name, grouped by exchange code.
type Summary struct {
	Total      int
	Missing    int
	ByExchange map[string]int
}

// Percent returns the share of missing companies in percent.
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Missing) / float64(s.Total)
}

// Summarize reports which companies lack a name.
func Summarize(companies []Company) Summary {
	s := Summary{Total: len(companies), ByExchange: make(map[string]int)}
	for _, c := range companies {
		if c.Complete() {
			continue
		}
		s.Missing++
		_, code := ticker.Split(c.Reference)
		s.ByExchange[code]++
	}
	return s
}
