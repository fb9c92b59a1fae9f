package otel

import (
	"strings"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 512

// RingBuffer is a fixed-size circular buffer of Events for the debug overlay.
// Goroutine-safe for concurrent Push and read operations.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	size  int
	head  int // next write position
	count int // number of valid entries (0..size)
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{
		buf:  make([]Event, size),
		size: size,
	}
}

// Push adds an event, overwriting the oldest if full.
// The Extra map is copied so later writes by the emitter are not visible here.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		cp := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			cp[k] = v
		}
		e.Extra = cp
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()
}

// Last returns the n most recent events, oldest first.
// If n > count, returns all events. If n <= 0, returns nil.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}

	result := make([]Event, n)
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.buf[(start+i)%r.size]
	}
	return result
}

// Snapshot returns every buffered event, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	return r.Last(r.Len())
}

// Len returns the number of events currently in the buffer.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return r.size
}

// Stats returns counts by EventKind over all buffered events.
func (r *RingBuffer) Stats() map[EventKind]int {
	counts := make(map[EventKind]int)
	for _, e := range r.Snapshot() {
		counts[e.Kind]++
	}
	return counts
}

// CountPrefix counts buffered events whose kind starts with prefix,
// e.g. "backend." for every backend call outcome.
func (r *RingBuffer) CountPrefix(prefix string) int {
	n := 0
	for _, e := range r.Snapshot() {
		if strings.HasPrefix(string(e.Kind), prefix) {
			n++
		}
	}
	return n
}

// Errors returns the buffered error-level events, oldest first.
func (r *RingBuffer) Errors() []Event {
	var out []Event
	for _, e := range r.Snapshot() {
		if e.Level == LevelError {
			out = append(out, e)
		}
	}
	return out
}
