package memory

import (
	"context"
	"sync"

	"tickermap/storage"
)

// AuditLog is an in-memory implementation of storage.AuditLog.
type AuditLog struct {
	mu       sync.RWMutex
	attempts []storage.LookupAttempt
	runs     []storage.RunSummary
}

// NewAuditLog creates an empty log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

var _ storage.AuditLog = (*AuditLog)(nil)

// RecordAttempts appends attempts.
func (l *AuditLog) RecordAttempts(_ context.Context, attempts []storage.LookupAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, attempts...)
	return nil
}

// RecordRun appends a run summary.
func (l *AuditLog) RecordRun(_ context.Context, run storage.RunSummary) error {
	if run.RunID == "" {
		return storage.ErrInvalidInput
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
	return nil
}

// Attempts returns the recorded attempts.
func (l *AuditLog) Attempts() []storage.LookupAttempt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]storage.LookupAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}

// Runs returns the recorded run summaries.
func (l *AuditLog) Runs() []storage.RunSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]storage.RunSummary, len(l.runs))
	copy(out, l.runs)
	return out
}
