package otel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize is how many encoded lines may wait for the writer goroutine.
const queueSize = 4096

// Logger appends events to a JSONL journal from a background goroutine and
// mirrors them into an optional RingBuffer. Emit never blocks. All methods
// are no-ops on a nil *Logger.
type Logger struct {
	session string
	ring    atomic.Pointer[RingBuffer]
	dropped atomic.Uint64

	mu     sync.RWMutex // write-locked only by Close
	closed bool
	queue  chan []byte
	done   chan struct{}
}

// NewLogger starts a logger writing to w. Close flushes it.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		session: uuid.NewString(),
		queue:   make(chan []byte, queueSize),
		done:    make(chan struct{}),
	}
	go l.writeLoop(w)
	return l
}

// NewNullLogger returns a logger whose events only reach the ring buffer.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) writeLoop(w io.Writer) {
	defer close(l.done)
	for line := range l.queue {
		if _, err := w.Write(line); err != nil {
			l.dropped.Add(1)
		}
	}
}

// SessionID is the uuid stamped on every event of this logger.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.session
}

// SetRingBuffer mirrors subsequent events into rb. Nil detaches.
func (l *Logger) SetRingBuffer(rb *RingBuffer) {
	if l == nil {
		return
	}
	l.ring.Store(rb)
}

// Emit records e. The ring buffer sees it immediately; the journal line is
// dropped and counted when the queue is full or the logger is closed.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	if rb := l.ring.Load(); rb != nil {
		rb.Push(e)
	}

	line, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	select {
	case l.queue <- append(line, '\n'):
	default:
		l.dropped.Add(1)
	}
}

// Dropped reports how many journal lines were lost.
func (l *Logger) Dropped() uint64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Close stops accepting events and waits for queued lines to be written.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	if n := l.dropped.Load(); n > 0 {
		fmt.Fprintf(os.Stderr, "minifeed: %d events dropped during session %s\n", n, l.session)
	}
}
