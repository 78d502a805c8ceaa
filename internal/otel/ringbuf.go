package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the capacity used when NewRingBuffer gets a size <= 0.
const DefaultRingSize = 1024

// RingBuffer holds the most recent events in memory for the debug overlay.
// Safe for concurrent use.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e, evicting the oldest event once the buffer is full.
func (b *RingBuffer) Push(e Event) {
	e.Extra = maps.Clone(e.Extra)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[b.next] = e
	b.next++
	if b.next == len(b.events) {
		b.next = 0
		b.full = true
	}
}

// inOrder returns a copy of the buffered events, oldest first. b.mu must
// be held.
func (b *RingBuffer) inOrder() []Event {
	if !b.full {
		if b.next == 0 {
			return nil
		}
		return append([]Event(nil), b.events[:b.next]...)
	}
	out := make([]Event, 0, len(b.events))
	out = append(out, b.events[b.next:]...)
	return append(out, b.events[:b.next]...)
}

// Snapshot returns every buffered event, oldest first.
func (b *RingBuffer) Snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inOrder()
}

// Last returns up to n of the newest events, oldest first.
func (b *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.inOrder()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.events)
	}
	return b.next
}

func (b *RingBuffer) Cap() int {
	return len(b.events)
}

// Stats counts the buffered events per kind.
func (b *RingBuffer) Stats() map[EventKind]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.next
	if b.full {
		n = len(b.events)
	}
	counts := make(map[EventKind]int)
	for _, e := range b.events[:n] {
		counts[e.Kind]++
	}
	return counts
}
