package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindQueryStart, Level: LevelInfo, Comp: "backend", Collection: "example_com_vectors"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "backend.query_start" {
		t.Errorf("expected kind=backend.query_start, got %v", decoded["kind"])
	}
	if decoded["comp"] != "backend" {
		t.Errorf("expected comp=backend, got %v", decoded["comp"])
	}
	if decoded["collection"] != "example_com_vectors" {
		t.Errorf("expected collection, got %v", decoded["collection"])
	}
}

func TestEmitSetsTimeAndSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if len(ev.SessionID) != 16 || ev.SessionID != l.SessionID() {
		t.Errorf("session_id = %q, want 16 hex chars matching %q", ev.SessionID, l.SessionID())
	}
}

func TestSinceSetsDurationAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	start := time.Now().Add(-1500 * time.Millisecond)
	l.Since(start, Event{Kind: KindIngestComplete, Comp: "backend"})
	l.Since(start, Event{Kind: KindIngestError, Comp: "backend", Err: "boom"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ok, failed map[string]any
	json.Unmarshal([]byte(lines[0]), &ok)
	json.Unmarshal([]byte(lines[1]), &failed)

	if d, _ := ok["dur_ms"].(float64); d < 1500 {
		t.Errorf("dur_ms = %v, want >= 1500", ok["dur_ms"])
	}
	if ok["level"] != "info" {
		t.Errorf("success level = %v, want info", ok["level"])
	}
	if failed["level"] != "error" {
		t.Errorf("failure level = %v, want error", failed["level"])
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "collection", "route", "err", "msg", "extra", "rid"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindPersist, Comp: "test"})
		}()
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "hi")
	l.Error(KindError, "main", errors.New("x"))
	l.Since(time.Now(), Event{Kind: KindPersist})
	l.SetRingBuffer(NewRingBuffer(4))
	l.Close()
	if l.Dropped() != 0 || l.SessionID() != "" {
		t.Error("nil logger should report zero state")
	}
}

func TestCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup, Msg: "start"})
	l.Emit(Event{Kind: KindShutdown, Msg: "stop"})
	l.Close()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after Close, got %d", len(lines))
	}

	l.Emit(Event{Kind: KindStartup})
	if l.Dropped() != 1 {
		t.Errorf("emit after close should count as dropped, got %d", l.Dropped())
	}
}

func TestDropCounter(t *testing.T) {
	bw := &blockingWriter{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	l := NewLogger(bw)

	// First emit gets picked up by drain, which blocks on write.
	l.Emit(Event{Kind: KindQueryStart})
	<-bw.started

	for i := 0; i < writerChanSize+10; i++ {
		l.Emit(Event{Kind: KindQueryStart})
	}
	if l.Dropped() == 0 {
		t.Error("expected some drops when channel is full, got 0")
	}

	close(bw.block)
	l.Close()
}

type blockingWriter struct {
	started chan struct{} // closed when first Write begins
	block   chan struct{} // closed to unblock writer
	once    sync.Once
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.block
	})
	return len(p), nil
}

func TestConvenienceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Info(KindStartup, "main", "starting")
	l.Warn(KindRejected, "controller", "file too large")
	l.Error(KindError, "main", errors.New("disk full"))
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	tests := []struct {
		level, kind, comp string
	}{
		{"info", "sys.startup", "main"},
		{"warn", "controller.rejected", "controller"},
		{"error", "sys.error", "main"},
	}
	for i, tt := range tests {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &decoded); err != nil {
			t.Errorf("line %d: %v", i, err)
			continue
		}
		if decoded["level"] != tt.level || decoded["kind"] != tt.kind || decoded["comp"] != tt.comp {
			t.Errorf("line %d: got %v/%v/%v, want %s/%s/%s", i,
				decoded["level"], decoded["kind"], decoded["comp"], tt.level, tt.kind, tt.comp)
		}
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")

	for i := 0; i < 2; i++ {
		l, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		l.Info(KindStartup, "main", "run")
		l.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected 2 appended lines, got %d", n)
	}
}
