// Package app assembles a ragaweb runtime from configuration: the event log,
// the SQLite snapshot store and its writer, the hydrated website and
// document stores, and the backend client. The TUI and the CLI both start
// here.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/ragaweb/internal/backend"
	"github.com/abelbrown/ragaweb/internal/config"
	"github.com/abelbrown/ragaweb/internal/ident"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/state"
	"github.com/abelbrown/ragaweb/internal/store"
)

// Runtime owns every long-lived resource. Close releases them in reverse
// order of acquisition.
type Runtime struct {
	Config  *config.Config
	Log     *otel.Logger
	Store   *store.Store
	Writer  *store.Writer
	Sites   *state.WebsiteStore
	Docs    *state.DocumentStore
	Backend *backend.Client

	started time.Time
}

// Options tune Open.
type Options struct {
	// Ring, if set, receives a copy of every event for live inspection.
	Ring *otel.RingBuffer
	// Comp names the process in the startup event: "tui" or "cli".
	Comp string
}

// Open builds a Runtime. Hydration failures are logged and leave the
// affected store empty; everything else is fatal.
func Open(cfg *config.Config, opts Options) (*Runtime, error) {
	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("app: create data dir: %w", err)
	}

	log, err := otel.OpenFile(cfg.EventLogPath())
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	log.SetRingBuffer(opts.Ring)

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	w := store.NewWriter(st, log)

	ids := ident.New()
	rt := &Runtime{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Writer:  w,
		Sites:   state.NewWebsiteStore(w, ids, log),
		Docs:    state.NewDocumentStore(w, ids, log),
		Backend: backend.NewClient(cfg.Backend.URL, log),
		started: time.Now(),
	}
	if d := cfg.Timeout(); d > 0 {
		rt.Backend.SetTimeout(d)
	}

	if err := rt.Sites.Hydrate(); err != nil {
		log.Error(otel.KindStoreError, "app", err)
	}
	if err := rt.Docs.Hydrate(); err != nil {
		log.Error(otel.KindStoreError, "app", err)
	}

	log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  opts.Comp,
		Msg:   cfg.Backend.URL,
		Extra: map[string]any{
			"websites":  rt.Sites.Len(),
			"documents": rt.Docs.Len(),
			"data_dir":  cfg.DataDir(),
		},
	})
	return rt, nil
}

// Close flushes pending snapshots, then closes the database and event log.
func (rt *Runtime) Close() error {
	rt.Log.Since(rt.started, otel.Event{Kind: otel.KindShutdown, Comp: "app"})
	rt.Writer.Close()
	err := rt.Store.Close()
	rt.Log.Close()
	if err != nil {
		return fmt.Errorf("app: close store: %w", err)
	}
	return nil
}
