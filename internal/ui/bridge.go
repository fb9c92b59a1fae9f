package ui

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/otel"
	tea "github.com/charmbracelet/bubbletea"
)

const bridgeBuffer = 64

// bridgeMsg wraps a message that arrived through a Bridge so the App knows
// to listen again.
type bridgeMsg struct {
	msg tea.Msg
}

// Bridge is the controllers' Navigator and Notifier inside the TUI.
// Controllers call it from tea.Cmd goroutines and from Update itself, so
// delivery never blocks: messages queue on a buffered channel that the App
// drains with Listen.
type Bridge struct {
	ch  chan tea.Msg
	log *otel.Logger

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

// NewBridge creates an empty bridge.
func NewBridge(log *otel.Logger) *Bridge {
	return &Bridge{ch: make(chan tea.Msg, bridgeBuffer), log: log}
}

// Navigate queues a page change.
func (b *Bridge) Navigate(r controller.Route) {
	b.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindNavigate, Comp: "ui", Route: r.Path()})
	b.push(NavigateMsg{Route: r})
}

// NavigateAfter queues a page change once d has elapsed.
func (b *Bridge) NavigateAfter(r controller.Route, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.timers = append(b.timers, time.AfterFunc(d, func() { b.Navigate(r) }))
}

// Notify queues a toast.
func (b *Bridge) Notify(n controller.Notification) {
	level := otel.LevelInfo
	if n.Level == controller.LevelError {
		level = otel.LevelWarn
	}
	b.log.Emit(otel.Event{Level: level, Kind: otel.KindNotify, Comp: "ui", Msg: n.Title})
	b.push(NotifyMsg{Notification: n})
}

// Listen returns a Cmd that waits for the next queued message.
func (b *Bridge) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return bridgeMsg{msg: msg}
		case <-ctx.Done():
			return nil
		}
	}
}

// Close cancels delayed navigations that have not fired.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = nil
}

func (b *Bridge) push(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
		b.log.Warn(otel.KindError, "ui", "bridge full, message dropped")
	}
}
