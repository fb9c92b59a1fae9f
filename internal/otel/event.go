// Package otel provides structured observability for ragaweb.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
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
	// Durable storage
	KindHydrate    EventKind = "store.hydrate"
	KindPersist    EventKind = "store.persist"
	KindStoreError EventKind = "store.error"

	// Store mutations
	KindCollectionAdd    EventKind = "state.collection_add"
	KindCollectionRemove EventKind = "state.collection_remove"
	KindChatClear        EventKind = "state.chat_clear"

	// Backend calls
	KindIngestStart    EventKind = "backend.ingest_start"
	KindIngestComplete EventKind = "backend.ingest_complete"
	KindIngestError    EventKind = "backend.ingest_error"
	KindUploadStart    EventKind = "backend.upload_start"
	KindUploadComplete EventKind = "backend.upload_complete"
	KindUploadError    EventKind = "backend.upload_error"
	KindQueryStart     EventKind = "backend.query_start"
	KindQueryComplete  EventKind = "backend.query_complete"
	KindQueryError     EventKind = "backend.query_error"
	KindHealth         EventKind = "backend.health"

	// Controller decisions
	KindRejected     EventKind = "controller.rejected"
	KindShortCircuit EventKind = "controller.short_circuit"

	// UI events
	KindNavigate EventKind = "ui.navigate"
	KindNotify   EventKind = "ui.notify"
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events (RAGAWEB_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time       time.Time      `json:"t"`
	Level      Level          `json:"level,omitempty"`
	Kind       EventKind      `json:"kind"`
	Comp       string         `json:"comp,omitempty"`       // component: "state", "backend", "ui", "main"
	SessionID  string         `json:"session_id,omitempty"` // random hex, same for entire app run
	RequestID  string         `json:"rid,omitempty"`        // pairs a backend start with its outcome
	Dur        time.Duration  `json:"-"`                    // not serialized directly
	DurMs      float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count      int            `json:"count,omitempty"`
	Collection string         `json:"collection,omitempty"` // website name or document id
	Route      string         `json:"route,omitempty"`
	Err        string         `json:"err,omitempty"`
	Msg        string         `json:"msg,omitempty"`   // free text
	Extra      map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
