package operation

import (
	"strings"
	"sync"

	"github.com/pkgops/pkgops/internal/operations/events"
)

// Entry is one retained log line with its category.
type Entry struct {
	Line     string
	Category events.LogCategory
}

// Buffer is a thread-safe, append-only record of an operation's log lines
// in emission order. Progress-category lines are ephemeral status ticks and
// are never retained; callers broadcast them instead.
type Buffer struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewBuffer creates an empty log buffer.
func NewBuffer() *Buffer {
	return &Buffer{entries: make([]Entry, 0)}
}

// Append records a line under the given category.
// Progress lines are silently discarded.
func (b *Buffer) Append(line string, category events.LogCategory) {
	if category == events.CategoryProgress {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Entry{Line: line, Category: category})
}

// Entries returns all retained lines in emission order.
// Returns a copy to prevent races.
func (b *Buffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Entry, len(b.entries))
	copy(result, b.entries)
	return result
}

// Last returns the most recently retained entry.
func (b *Buffer) Last() (Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.entries) == 0 {
		return Entry{}, false
	}
	return b.entries[len(b.entries)-1], true
}

// Len returns the number of retained lines.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// String returns all retained lines joined with newlines.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lines := make([]string, len(b.entries))
	for i, entry := range b.entries {
		lines[i] = entry.Line
	}
	return strings.Join(lines, "\n")
}
