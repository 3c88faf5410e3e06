// Package ops serves health, metrics and run status over HTTP while a
// command runs.
package ops

import (
	"sync"
	"time"
)

// Status is a snapshot of the current run.
type Status struct {
	Command         string    `json:"command"`
	RunID           string    `json:"run_id"`
	Phase           string    `json:"phase"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
	Total           int       `json:"total"`
	Processed       int       `json:"processed"`
	ControllerState string    `json:"controller_state,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
}

// Tracker holds the run status shared between the pipeline and the
// /status endpoint. A nil *Tracker ignores updates.
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{status: Status{Phase: "idle"}}
}

// Start resets the tracker for a new run.
func (t *Tracker) Start(command, runID string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{Command: command, RunID: runID, Phase: "starting", StartedAt: time.Now().UTC()}
}

// SetPhase records the current phase and the amount of work it holds.
func (t *Tracker) SetPhase(phase string, total int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Phase = phase
	t.status.Total = total
	t.status.Processed = 0
}

// Advance marks n more items of the current phase as done.
func (t *Tracker) Advance(n int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Processed += n
}

// SetControllerState records the lookup controller state.
func (t *Tracker) SetControllerState(state string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ControllerState = state
}

// Finish marks the run done.
func (t *Tracker) Finish(err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Phase = "done"
	t.status.FinishedAt = time.Now().UTC()
	if err != nil {
		t.status.Phase = "failed"
		t.status.LastError = err.Error()
	}
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	if t == nil {
		return Status{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
