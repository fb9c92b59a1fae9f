package store

import (
	"sync"
	"time"

	"github.com/abelbrown/ragaweb/internal/otel"
)

// Writer persists snapshots in the background.
//
// Persist never blocks on disk: it records the latest data per name and
// wakes the drain goroutine. Bursts of mutations coalesce into one write per
// name. Batches are written in the order they were taken, so an older
// snapshot can never overwrite a newer one.
//
// Goroutine safety: mu guards pending and closed; writeMu serializes batch
// grabs together with their disk writes.
type Writer struct {
	st  *Store
	log *otel.Logger

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	writeMu sync.Mutex
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWriter starts a Writer over st. Call Close to flush and stop.
func NewWriter(st *Store, log *otel.Logger) *Writer {
	w := &Writer{
		st:      st,
		log:     log,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.drain()
	return w
}

// Load returns the most recent data for name: a pending snapshot if one
// is queued, otherwise the durable row. Returns nil, nil if neither exists.
func (w *Writer) Load(name string) ([]byte, error) {
	w.mu.Lock()
	if data, ok := w.pending[name]; ok {
		w.mu.Unlock()
		return append([]byte(nil), data...), nil
	}
	w.mu.Unlock()

	snap, ok, err := w.st.LoadSnapshot(name)
	if err != nil || !ok {
		return nil, err
	}
	return snap.Data, nil
}

// Persist queues data as the new snapshot for name. Fire-and-forget:
// after Close the call is ignored.
func (w *Writer) Persist(name string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[name] = data
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush writes every queued snapshot before returning.
func (w *Writer) Flush() {
	w.writePending()
}

// Close flushes queued snapshots and stops the drain goroutine.
func (w *Writer) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.wake)
		w.mu.Unlock()
		<-w.done
		w.writePending()
	})
}

func (w *Writer) drain() {
	defer close(w.done)
	for range w.wake {
		w.writePending()
	}
}

func (w *Writer) writePending() {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.mu.Unlock()

	for name, data := range batch {
		start := time.Now()
		if err := w.st.SaveSnapshot(name, data); err != nil {
			w.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "store", Msg: name, Err: err.Error()})
			continue
		}
		w.log.Since(start, otel.Event{Level: otel.LevelDebug, Kind: otel.KindPersist, Comp: "store", Msg: name, Count: len(data)})
	}
}
