// Package otel provides structured observability for minifeed.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Remote source
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Startup reference data
	KindCatalogLoaded EventKind = "catalog.loaded"
	KindCatalogError  EventKind = "catalog.error"

	// Sync engine
	KindPollTick      EventKind = "poll.tick"
	KindPageRequest   EventKind = "page.request"
	KindPageExhausted EventKind = "page.exhausted"
	KindScopeChange   EventKind = "scope.change"
	KindMergeApply    EventKind = "merge.apply"
	KindStaleDiscard  EventKind = "stale.discard"
	KindUnreadReset   EventKind = "unread.reset"

	// Reference server
	KindServeRequest EventKind = "server.request"
	KindDrip         EventKind = "server.drip"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Message tracing, only with MINIFEED_TRACE set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "session", "coord", "ui", "fetch", "server", "main"
	SessionID string         `json:"session_id,omitempty"`
	ReqID     string         `json:"req,omitempty"`   // fetch request correlation ID
	Scope     string         `json:"scope,omitempty"` // model.Scope.String()
	Mode      string         `json:"mode,omitempty"`  // merge mode: initial, poll, page
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
