// Package state holds the two client-side stores: indexed websites and
// uploaded documents. Each store owns its collections list and transient
// flags, and hands a full snapshot of the list to durable storage after
// every mutation.
//
// Stores are constructed explicitly and must be hydrated before use. All
// methods are safe for concurrent use; reads return copies.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
)

// Durable storage keys, one record per store.
const (
	WebsiteKey  = "website-ai-store"
	DocumentKey = "pdf-ai-store"
)

// Storage is the durable backing of a store. Persist may be asynchronous
// and best-effort; Load must observe any earlier Persist.
// *store.Writer satisfies it.
type Storage interface {
	Load(name string) ([]byte, error)
	Persist(name string, data []byte)
}

// persisted is the on-disk record. Only the collections list survives a
// restart.
type persisted[T any] struct {
	Collections []T `json:"collections"`
}

func loadList[T any](st Storage, key string) ([]T, error) {
	if st == nil {
		return nil, nil
	}
	data, err := st.Load(key)
	if err != nil {
		return nil, fmt.Errorf("state: load %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var rec persisted[T]
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return rec.Collections, nil
}

// persistList serializes list and queues it. Callers hold the store's
// write lock so snapshots reach storage in mutation order.
func persistList[T any](st Storage, log *otel.Logger, key string, list []T) {
	if st == nil {
		return
	}
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(persisted[T]{Collections: list})
	if err != nil {
		log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "state", Msg: key, Err: err.Error()})
		return
	}
	st.Persist(key, data)
}

// nextTimestamp returns the timestamp for a message appended to history.
// Never earlier than the last message, even if the wall clock stepped back.
func nextTimestamp(history []model.Message, now time.Time) int64 {
	ts := now.UnixMilli()
	if n := len(history); n > 0 && history[n-1].Timestamp > ts {
		ts = history[n-1].Timestamp
	}
	return ts
}
