package ui

import (
	"context"
	"testing"
	"time"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/otel"
)

func listenWithin(b *Bridge, d time.Duration) any {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	msg := b.Listen(ctx)()
	if bm, ok := msg.(bridgeMsg); ok {
		return bm.msg
	}
	return nil
}

func TestBridgeQueuesInOrder(t *testing.T) {
	b := NewBridge(nil)
	defer b.Close()

	b.Notify(controller.Notification{Level: controller.LevelSuccess, Title: "done"})
	b.Navigate(controller.DocumentsRoute())

	if n, ok := listenWithin(b, time.Second).(NotifyMsg); !ok || n.Notification.Title != "done" {
		t.Errorf("first message = %#v, want NotifyMsg", n)
	}
	if nav, ok := listenWithin(b, time.Second).(NavigateMsg); !ok || nav.Route != controller.DocumentsRoute() {
		t.Errorf("second message = %#v, want NavigateMsg", nav)
	}
}

func TestBridgeNavigateAfter(t *testing.T) {
	b := NewBridge(nil)
	defer b.Close()

	start := time.Now()
	b.NavigateAfter(controller.DashboardRoute(), 20*time.Millisecond)
	if _, ok := listenWithin(b, time.Second).(NavigateMsg); !ok {
		t.Fatal("delayed navigation never arrived")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("navigation arrived after %v, want >= 20ms", elapsed)
	}
}

func TestBridgeCloseCancelsDelayed(t *testing.T) {
	b := NewBridge(nil)
	b.NavigateAfter(controller.DashboardRoute(), 20*time.Millisecond)
	b.Close()

	if msg := listenWithin(b, 100*time.Millisecond); msg != nil {
		t.Errorf("closed bridge delivered %#v", msg)
	}
	b.NavigateAfter(controller.DashboardRoute(), time.Millisecond)
	if msg := listenWithin(b, 50*time.Millisecond); msg != nil {
		t.Errorf("NavigateAfter after Close delivered %#v", msg)
	}
}

func TestBridgeFullDropsWithoutBlocking(t *testing.T) {
	ring := otel.NewRingBuffer(16)
	log := otel.NewNullLogger()
	log.SetRingBuffer(ring)
	defer log.Close()

	b := NewBridge(log)
	defer b.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < bridgeBuffer+5; i++ {
			b.Notify(controller.Notification{Title: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full bridge")
	}
	if len(b.ch) != bridgeBuffer {
		t.Errorf("queued = %d, want %d", len(b.ch), bridgeBuffer)
	}
}

func TestBridgeListenCancelled(t *testing.T) {
	b := NewBridge(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := b.Listen(ctx)(); msg != nil {
		t.Errorf("cancelled Listen = %#v, want nil", msg)
	}
}
