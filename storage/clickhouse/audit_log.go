package clickhouse

import (
	"context"
	"fmt"

	"tickermap/storage"
)

// AuditLog implements storage.AuditLog using ClickHouse.
type AuditLog struct {
	conn *Conn
}

// NewAuditLog creates a new AuditLog.
func NewAuditLog(conn *Conn) *AuditLog {
	return &AuditLog{conn: conn}
}

var _ storage.AuditLog = (*AuditLog)(nil)

// RecordAttempts inserts attempts in one batch.
func (l *AuditLog) RecordAttempts(ctx context.Context, attempts []storage.LookupAttempt) error {
	if len(attempts) == 0 {
		return nil
	}

	batch, err := l.conn.PrepareBatch(ctx, `
		INSERT INTO lookup_attempts (
			run_id, reference_ticker, query, attempt, outcome, symbol, score, error, at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, a := range attempts {
		err = batch.Append(
			a.RunID, a.Reference, a.Query, uint8(a.Attempt), a.Outcome,
			a.Symbol, a.Score, a.Error, a.At.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append attempt %s#%d: %w", a.Reference, a.Attempt, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// RecordRun inserts a run summary.
func (l *AuditLog) RecordRun(ctx context.Context, run storage.RunSummary) error {
	if run.RunID == "" {
		return storage.ErrInvalidInput
	}

	err := l.conn.Exec(ctx, `
		INSERT INTO mapping_runs (
			run_id, started_at, finished_at,
			total, seeded, resolved, unsupported, not_found, timed_out, unresolved,
			lookup_calls, exhausted
		) VALUES (
			?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?
		)
	`,
		run.RunID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		uint32(run.Total), uint32(run.Seeded), uint32(run.Resolved), uint32(run.Unsupported),
		uint32(run.NotFound), uint32(run.TimedOut), uint32(run.Unresolved),
		uint32(run.LookupCalls), run.Exhausted,
	)
	if err != nil {
		return fmt.Errorf("insert mapping run: %w", err)
	}
	return nil
}
