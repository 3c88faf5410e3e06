// Package throttle paces symbol lookups against a rate-limited provider.
//
// The controller runs lookups one at a time. When the provider keeps
// throttling a row through every retry, the controller becomes Exhausted and
// every later row of the run is marked TIMED_OUT without contacting the
// provider, so the next run can resume from there.
package throttle

import (
	"context"
	"log/slog"
	"time"

	"tickermap/lookup"
	"tickermap/market"
	"tickermap/ticker"
)

// State of a controller within one run.
type State int

const (
	Active State = iota
	Exhausted
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Exhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Policy bounds the retries spent on one row.
type Policy struct {
	MaxAttempts int           // total attempts per row, first call included
	Cooldown    time.Duration // wait after a throttled attempt
}

// DefaultPolicy returns four attempts with a one minute cooldown.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 4, Cooldown: time.Minute}
}

// Looker performs one confidence-matched lookup. *lookup.Matcher implements it.
type Looker interface {
	Lookup(ctx context.Context, query string) lookup.Outcome
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Attempt describes one call to the provider.
type Attempt struct {
	Reference string
	Query     string
	Number    int // 1-based
	Outcome   lookup.Outcome
}

// Controller is the retry and rate-limit state machine for a single run.
// It is not safe for concurrent use; rows must be fed sequentially.
type Controller struct {
	looker  Looker
	policy  Policy
	sleep   SleepFunc
	observe func(Attempt)
	logger  *slog.Logger

	state State
	calls int
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleep replaces the cooldown wait, typically with a no-op in tests.
func WithSleep(fn SleepFunc) Option {
	return func(c *Controller) {
		c.sleep = fn
	}
}

// WithObserver registers a callback invoked after every provider call.
func WithObserver(fn func(Attempt)) Option {
	return func(c *Controller) {
		c.observe = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New returns an Active controller. A non-positive MaxAttempts means one attempt.
func New(looker Looker, policy Policy, opts ...Option) *Controller {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	c := &Controller{
		looker:  looker,
		policy:  policy,
		sleep:   sleepContext,
		observe: func(Attempt) {},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Calls returns the number of provider calls made so far.
func (c *Controller) Calls() int {
	return c.calls
}

// Resolve looks up one reference ticker by its root symbol.
func (c *Controller) Resolve(ctx context.Context, reference string) ticker.Record {
	if c.state == Exhausted || ctx.Err() != nil {
		return ticker.TimedOut(reference)
	}

	query, _ := ticker.Split(reference)

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		out := c.looker.Lookup(ctx, query)
		c.calls++
		c.observe(Attempt{Reference: reference, Query: query, Number: attempt, Outcome: out})

		switch out.Kind {
		case lookup.Found:
			return ticker.Resolved(reference, market.Normalize(out.Symbol))
		case lookup.NotFound:
			return ticker.NotFound(reference)
		case lookup.Failed:
			c.logger.Warn("symbol lookup failed", "reference", reference, "error", out.Err)
			return ticker.TimedOut(reference)
		}

		if attempt == c.policy.MaxAttempts {
			break
		}

		c.logger.Debug("symbol lookup throttled, cooling down",
			"reference", reference,
			"attempt", attempt,
			"cooldown", c.policy.Cooldown,
		)
		if err := c.sleep(ctx, c.policy.Cooldown); err != nil {
			return ticker.TimedOut(reference)
		}
	}

	c.state = Exhausted
	c.logger.Warn("symbol lookup quota exhausted, remaining rows time out",
		"reference", reference,
		"attempts", c.policy.MaxAttempts,
	)
	return ticker.TimedOut(reference)
}

// Run resolves records in order, keeping each record's secondary ticker.
func (c *Controller) Run(ctx context.Context, records []ticker.Record) []ticker.Record {
	out := make([]ticker.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, c.Resolve(ctx, rec.Reference).WithSecondary(rec.Secondary))
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
