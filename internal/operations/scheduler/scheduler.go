// Package scheduler provides the process-wide FIFO queue that serializes
// competing operations. All membership queries and mutations go through one
// owning Scheduler; the backing slice is never exposed to callers.
package scheduler

import (
	"errors"
	"sync"
)

// ErrAlreadyQueued is returned when an operation that is already a queue
// member is enqueued again. This indicates a caller bug, not a runtime
// condition.
var ErrAlreadyQueued = errors.New("operation is already in the scheduling queue")

// Scheduler is a thread-safe FIFO queue of operation IDs.
// Waiters block on Changed() instead of polling: every mutation closes the
// current change channel, waking anyone watching queue order.
type Scheduler struct {
	ids     []string
	changed chan struct{}
	mu      sync.Mutex
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		ids:     make([]string, 0),
		changed: make(chan struct{}),
	}
}

// Enqueue appends the operation to the tail of the queue.
// Returns ErrAlreadyQueued if the operation is already a member.
func (s *Scheduler) Enqueue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, member := range s.ids {
		if member == id {
			return ErrAlreadyQueued
		}
	}

	s.ids = append(s.ids, id)
	s.signalLocked()
	return nil
}

// Remove takes the operation out of the queue, preserving the order of the
// remaining members. It is idempotent: removing an absent operation returns
// false and changes nothing.
func (s *Scheduler) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, member := range s.ids {
		if member == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			s.signalLocked()
			return true
		}
	}
	return false
}

// Position returns the operation's current 0-based index in the queue.
// The second return value is false if the operation is not a member.
func (s *Scheduler) Position(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, member := range s.ids {
		if member == id {
			return i, true
		}
	}
	return 0, false
}

// IsHead returns true if the operation is at the front of the queue.
func (s *Scheduler) IsHead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids) > 0 && s.ids[0] == id
}

// Len returns the current number of queue members.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// IDs returns a snapshot of the queue in FIFO order.
func (s *Scheduler) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]string, len(s.ids))
	copy(snapshot, s.ids)
	return snapshot
}

// Changed returns a channel that is closed on the next queue mutation.
// Callers re-check their position after each wake-up and call Changed again
// for a fresh channel.
func (s *Scheduler) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.changed
}

// signalLocked wakes all waiters by closing the current change channel.
// Callers must hold s.mu.
func (s *Scheduler) signalLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
