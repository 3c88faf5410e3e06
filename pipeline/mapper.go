// Package pipeline wires the resolution components into the map and scrape
// commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tickermap/lookup"
	"tickermap/mapping"
	"tickermap/metrics"
	"tickermap/ops"
	"tickermap/resolve"
	"tickermap/storage"
	"tickermap/throttle"
	"tickermap/ticker"
	"tickermap/universe"
)

// UniverseSource lists the live reference tickers. *universe.Feed implements it.
type UniverseSource interface {
	Tickers(ctx context.Context) ([]string, error)
}

// SecondarySource loads the public reference-to-secondary table.
// *universe.PublicMap implements it.
type SecondarySource interface {
	Load(ctx context.Context) (universe.Table, error)
}

// MapperDeps are the collaborators of a map run. Store and Feed are
// required; a nil Looker disables the symbol search.
type MapperDeps struct {
	Store     storage.MappingStore
	Feed      UniverseSource
	PublicMap SecondarySource
	Looker    throttle.Looker
	Policy    throttle.Policy
	Sleep     throttle.SleepFunc
	Audit     storage.AuditLog
	Metrics   *metrics.Metrics
	Tracker   *ops.Tracker
	Logger    *slog.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// MapReport summarizes a map run.
type MapReport struct {
	RunID       string
	Seeded      int
	Resolved    int
	Unsupported int
	Deferred    int
	LookupCalls int
	Exhausted   bool
	Coverage    mapping.Coverage
}

// Mapper runs the resolution pipeline once.
type Mapper struct {
	deps MapperDeps
}

// NewMapper creates a Mapper, filling in defaults for optional deps.
func NewMapper(deps MapperDeps) *Mapper {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	if deps.Policy.MaxAttempts == 0 {
		deps.Policy = throttle.DefaultPolicy()
	}
	return &Mapper{deps: deps}
}

// Run loads the previous mapping, resolves every pending row and saves the
// merged mapping. Rows the provider could not be asked about are saved as
// TIMED_OUT, so an interrupted run resumes where it stopped.
func (p *Mapper) Run(ctx context.Context) (MapReport, error) {
	d := p.deps
	started := d.Now()
	report := MapReport{RunID: d.NewRunID()}
	logger := d.Logger.With("run_id", report.RunID)

	d.Tracker.Start("map", report.RunID)
	d.Tracker.SetPhase("load", 0)

	previous, err := d.Store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Info("no previous mapping, starting empty")
		previous = mapping.New()
	case err != nil:
		return p.fail(report, started, fmt.Errorf("load mapping: %w", err))
	default:
		logger.Info("previous mapping loaded", "records", previous.Len())
	}

	tickers, err := d.Feed.Tickers(ctx)
	if err != nil {
		return p.fail(report, started, fmt.Errorf("load universe: %w", err))
	}

	var table universe.Table
	if d.PublicMap != nil {
		table, err = d.PublicMap.Load(ctx)
		if err != nil {
			logger.Warn("public ticker map unavailable, secondary tickers not refreshed", "error", err)
			table = universe.Table{}
		}
	}

	work := previous.Clone()
	report.Seeded = mapping.Seed(work, tickers) + mapping.Seed(work, table.References)
	if d.Metrics != nil {
		d.Metrics.SeededRecords.Add(float64(report.Seeded))
	}
	logger.Info("universe merged",
		"universe_tickers", len(tickers),
		"public_map_tickers", len(table.References),
		"previous_records", previous.Len(),
		"seeded", report.Seeded,
		"total", work.Len(),
	)

	d.Tracker.SetPhase("resolve", work.Len())
	engine := resolve.Engine{DeferUnknown: d.Looker != nil}
	res := engine.Run(work)
	report.Resolved, report.Unsupported, report.Deferred = res.Resolved, res.Unsupported, len(res.Deferred)
	logger.Info("market rules applied",
		"pending", res.Fresh.Len(),
		"resolved", res.Resolved,
		"unsupported", res.Unsupported,
		"deferred", len(res.Deferred),
	)

	var attempts []storage.LookupAttempt
	if len(res.Deferred) > 0 {
		attempts = p.lookup(ctx, logger, report.RunID, res, &report)
	}

	merged := mapping.Merge(work, res.Fresh)
	attached := mapping.AttachSecondary(merged, table.Secondary)

	// Persist what was gathered even if the run was interrupted.
	saveCtx := context.WithoutCancel(ctx)
	d.Tracker.SetPhase("save", merged.Len())
	if err := d.Store.Save(saveCtx, merged); err != nil {
		return p.fail(report, started, fmt.Errorf("save mapping: %w", err))
	}

	report.Coverage = mapping.Stats(merged)
	logger.Info(report.Coverage.Describe("target_ticker", report.Coverage.Target))
	logger.Info(report.Coverage.Describe("secondary_ticker", report.Coverage.Secondary),
		"attached", attached,
	)
	if d.Metrics != nil {
		d.Metrics.SetMappingCounts(report.Coverage.ByStatus)
	}

	p.audit(saveCtx, logger, attempts, report, started)

	d.Tracker.Finish(nil)
	if d.Metrics != nil {
		finished := d.Now()
		d.Metrics.RecordRun("map", "success", finished.Sub(started).Seconds(), finished.Unix())
	}
	logger.Info("mapping saved",
		"records", merged.Len(),
		"lookup_calls", report.LookupCalls,
		"exhausted", report.Exhausted,
	)
	return report, nil
}

// lookup sends the deferred rows through the rate-limit controller, one at a
// time, writing the outcomes into res.Fresh.
func (p *Mapper) lookup(ctx context.Context, logger *slog.Logger, runID string, res resolve.Result, report *MapReport) []storage.LookupAttempt {
	d := p.deps
	d.Tracker.SetPhase("lookup", len(res.Deferred))

	var attempts []storage.LookupAttempt
	opts := []throttle.Option{
		throttle.WithLogger(logger),
		throttle.WithObserver(func(a throttle.Attempt) {
			attempts = append(attempts, attemptRow(runID, a, d.Now()))
			if d.Metrics != nil {
				d.Metrics.RecordAttempt(a.Outcome.Kind.String())
			}
		}),
	}
	if d.Sleep != nil {
		opts = append(opts, throttle.WithSleep(d.Sleep))
	}
	ctrl := throttle.New(d.Looker, d.Policy, opts...)

	for _, ref := range res.Deferred {
		pending, _ := res.Fresh.Get(ref)
		res.Fresh.Put(ctrl.Resolve(ctx, ref).WithSecondary(pending.Secondary))

		d.Tracker.Advance(1)
		d.Tracker.SetControllerState(ctrl.State().String())
	}

	report.LookupCalls = ctrl.Calls()
	report.Exhausted = ctrl.State() == throttle.Exhausted
	if d.Metrics != nil {
		d.Metrics.SetExhausted(report.Exhausted)
	}
	if report.Exhausted {
		logger.Warn("provider quota exhausted, rerun later to resolve the TIMED_OUT rows")
	}
	return attempts
}

func (p *Mapper) audit(ctx context.Context, logger *slog.Logger, attempts []storage.LookupAttempt, report MapReport, started time.Time) {
	d := p.deps
	if d.Audit == nil {
		return
	}

	if err := d.Audit.RecordAttempts(ctx, attempts); err != nil {
		logger.Warn("failed to record lookup attempts", "error", err)
	}

	by := report.Coverage.ByStatus
	run := storage.RunSummary{
		RunID:       report.RunID,
		StartedAt:   started,
		FinishedAt:  d.Now(),
		Total:       report.Coverage.Total,
		Seeded:      report.Seeded,
		Resolved:    by[ticker.StatusResolved],
		Unsupported: by[ticker.StatusUnsupported],
		NotFound:    by[ticker.StatusNotFound],
		TimedOut:    by[ticker.StatusTimedOut],
		Unresolved:  by[ticker.StatusUnresolved],
		LookupCalls: report.LookupCalls,
		Exhausted:   report.Exhausted,
	}
	if err := d.Audit.RecordRun(ctx, run); err != nil {
		logger.Warn("failed to record run summary", "error", err)
	}
}

func (p *Mapper) fail(report MapReport, started time.Time, err error) (MapReport, error) {
	d := p.deps
	d.Tracker.Finish(err)
	if d.Metrics != nil {
		finished := d.Now()
		d.Metrics.RecordRun("map", "error", finished.Sub(started).Seconds(), finished.Unix())
	}
	return report, err
}

func attemptRow(runID string, a throttle.Attempt, at time.Time) storage.LookupAttempt {
	row := storage.LookupAttempt{
		RunID:     runID,
		Reference: a.Reference,
		Query:     a.Query,
		Attempt:   a.Number,
		Outcome:   a.Outcome.Kind.String(),
		Symbol:    a.Outcome.Symbol,
		At:        at,
	}
	if a.Outcome.Kind == lookup.Found || a.Outcome.Kind == lookup.NotFound {
		row.Score = a.Outcome.Score.String()
	}
	if a.Outcome.Err != nil {
		row.Error = a.Outcome.Err.Error()
	}
	return row
}
