package logcat

import (
	"sync"

	"github.com/vburojevic/lcf/internal/domain"
)

// DefaultRingSize is the capacity used for non-positive sizes
const DefaultRingSize = 5000

// Ring is a thread-safe circular buffer holding the most recent entries
type Ring struct {
	mu     sync.RWMutex
	buffer []domain.LogEntry
	size   int
	head   int
	count  int
}

// NewRing creates a ring with the given capacity
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{
		buffer: make([]domain.LogEntry, size),
		size:   size,
	}
}

// Push adds an entry, evicting the oldest when full
func (r *Ring) Push(entry domain.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer[r.head] = entry
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// All returns all entries oldest first
func (r *Ring) All() []domain.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.all()
}

func (r *Ring) all() []domain.LogEntry {
	result := make([]domain.LogEntry, r.count)
	if r.count < r.size {
		copy(result, r.buffer[:r.count])
	} else {
		copy(result, r.buffer[r.head:])
		copy(result[r.size-r.head:], r.buffer[:r.head])
	}
	return result
}

// Last returns the n most recent entries, oldest first
func (r *Ring) Last(n int) []domain.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n < 0 {
		n = 0
	}
	result := make([]domain.LogEntry, n)
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.buffer[(start+i)%r.size]
	}
	return result
}

// Len returns the number of buffered entries
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns the capacity
func (r *Ring) Cap() int {
	return r.size
}

// Clear empties the ring
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}

// CountByLevel returns buffered entry counts grouped by level
func (r *Ring) CountByLevel() map[domain.LogLevel]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.LogLevel]int)
	for _, e := range r.all() {
		counts[e.Level]++
	}
	return counts
}
