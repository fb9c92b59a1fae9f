package coord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/ui"
)

// mockChecker implements the checker interface for testing.
type mockChecker struct {
	status string
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (m *mockChecker) Health(ctx context.Context) (string, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.delay):
		}
	}
	return m.status, m.err
}

// recorder collects messages sent to the program.
type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) statuses() []ui.BackendStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ui.BackendStatus
	for _, m := range r.msgs {
		if s, ok := m.(ui.BackendStatus); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) refreshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if _, ok := m.(ui.RefreshTick); ok {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestCheckHealthReportsStatus(t *testing.T) {
	mock := &mockChecker{status: "OK"}
	rec := &recorder{}
	c := NewCoordinator(mock, nil)

	c.checkHealth(context.Background(), rec)

	got := rec.statuses()
	if len(got) != 1 {
		t.Fatalf("expected 1 status, got %d", len(got))
	}
	if got[0].Status != "OK" || got[0].Err != nil {
		t.Errorf("status = %+v", got[0])
	}
	if got[0].At.IsZero() {
		t.Error("At not set")
	}
}

func TestCheckHealthReportsError(t *testing.T) {
	mock := &mockChecker{err: errors.New("connection refused")}
	rec := &recorder{}
	ring := otel.NewRingBuffer(16)
	log := otel.NewNullLogger()
	log.SetRingBuffer(ring)
	defer log.Close()

	c := NewCoordinator(mock, log)
	c.checkHealth(context.Background(), rec)

	got := rec.statuses()
	if len(got) != 1 || got[0].Err == nil {
		t.Fatalf("expected error status, got %+v", got)
	}
	waitFor(t, time.Second, func() bool { return ring.Stats()[otel.KindError] == 1 })
}

func TestCheckHealthSkipsCancelledContext(t *testing.T) {
	mock := &mockChecker{status: "OK"}
	rec := &recorder{}
	c := NewCoordinator(mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.checkHealth(ctx, rec)

	if mock.calls.Load() != 0 {
		t.Errorf("expected no health call, got %d", mock.calls.Load())
	}
	if len(rec.statuses()) != 0 {
		t.Error("expected no status after cancellation")
	}
}

func TestCheckHealthTimesOut(t *testing.T) {
	mock := &mockChecker{status: "OK", delay: healthTimeout + time.Second}
	rec := &recorder{}
	c := NewCoordinator(mock, nil)

	start := time.Now()
	c.checkHealth(context.Background(), rec)
	if elapsed := time.Since(start); elapsed > healthTimeout+500*time.Millisecond {
		t.Errorf("check took %v, expected about %v", elapsed, healthTimeout)
	}
	got := rec.statuses()
	if len(got) != 1 || !errors.Is(got[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %+v", got)
	}
}

func TestCheckHealthNilProgram(t *testing.T) {
	mock := &mockChecker{status: "OK"}
	c := NewCoordinator(mock, nil)
	c.checkHealth(context.Background(), nil)
	if mock.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", mock.calls.Load())
	}
}

func TestStartChecksImmediatelyAndPeriodically(t *testing.T) {
	mock := &mockChecker{status: "OK"}
	rec := &recorder{}
	c := NewCoordinator(mock, nil)
	c.healthEvery = 20 * time.Millisecond
	c.refreshEvery = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, rec)

	waitFor(t, 2*time.Second, func() bool { return len(rec.statuses()) >= 3 })
	waitFor(t, 2*time.Second, func() bool { return rec.refreshes() >= 2 })

	cancel()
	if err := c.Wait(); err != nil {
		t.Errorf("Wait: %v", err)
	}
}

func TestWaitReturnsAfterCancel(t *testing.T) {
	mock := &mockChecker{status: "OK", delay: 50 * time.Millisecond}
	c := NewCoordinator(mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, &recorder{})
	cancel()

	done := make(chan struct{})
	go func() {
		_ = c.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestCancelledCheckIsNotReported(t *testing.T) {
	mock := &mockChecker{status: "OK", delay: time.Second}
	rec := &recorder{}
	c := NewCoordinator(mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, rec)
	waitFor(t, time.Second, func() bool { return mock.calls.Load() == 1 })
	cancel()
	_ = c.Wait()

	if n := len(rec.statuses()); n != 0 {
		t.Errorf("expected no status from an interrupted check, got %d", n)
	}
}
