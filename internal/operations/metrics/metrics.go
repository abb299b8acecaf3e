// Package metrics tracks per-operation execution counters for display.
package metrics

import (
	"fmt"
	"sync"
	"time"
)

// OperationMetrics holds execution counters for a single operation.
// A retry of a finished operation keeps accumulating into the same value,
// mirroring how the log buffer is preserved across retries.
type OperationMetrics struct {
	mu sync.RWMutex

	// Attempts counts task-body invocations, including auto-retries.
	attempts int
	// Runs counts completed trips through the run entrypoint.
	runs int

	queueWait   time.Duration
	runDuration time.Duration

	lastOutcome   string
	lastUpdatedAt time.Time
}

// New creates zeroed metrics.
func New() *OperationMetrics {
	return &OperationMetrics{}
}

// RecordAttempt counts one task-body invocation.
func (m *OperationMetrics) RecordAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	m.lastUpdatedAt = time.Now()
}

// RecordQueueWait accumulates time spent waiting in the scheduling queue.
func (m *OperationMetrics) RecordQueueWait(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueWait += d
	m.lastUpdatedAt = time.Now()
}

// RecordRun accumulates task execution time and counts one finished run
// with its terminal outcome.
func (m *OperationMetrics) RecordRun(d time.Duration, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.runDuration += d
	m.lastOutcome = outcome
	m.lastUpdatedAt = time.Now()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Attempts      int           `json:"attempts"`
	Runs          int           `json:"runs"`
	QueueWait     time.Duration `json:"queue_wait"`
	RunDuration   time.Duration `json:"run_duration"`
	LastOutcome   string        `json:"last_outcome"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
}

// Snapshot returns a copy of the current counters.
func (m *OperationMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Attempts:      m.attempts,
		Runs:          m.runs,
		QueueWait:     m.queueWait,
		RunDuration:   m.runDuration,
		LastOutcome:   m.lastOutcome,
		LastUpdatedAt: m.lastUpdatedAt,
	}
}

// FormatDisplay returns a human-readable one-line summary
// (e.g., "2 runs, 5 attempts, waited 1.2s, ran 3.4s").
func (s Snapshot) FormatDisplay() string {
	if s.Runs == 0 && s.Attempts == 0 {
		return "-"
	}
	return fmt.Sprintf("%d runs, %d attempts, waited %s, ran %s",
		s.Runs, s.Attempts,
		s.QueueWait.Round(time.Millisecond),
		s.RunDuration.Round(time.Millisecond))
}
