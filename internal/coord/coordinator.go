// Package coord runs ragaweb's background work for the TUI.
package coord

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/ui"
)

// healthInterval is the time between backend health checks.
const healthInterval = 30 * time.Second

// healthTimeout bounds each health check.
const healthTimeout = 5 * time.Second

// refreshInterval is how often pages re-read the stores so relative ages
// stay current.
const refreshInterval = time.Minute

// checker reports backend health.
type checker interface {
	Health(ctx context.Context) (string, error)
}

// sender delivers messages to the running program. *tea.Program satisfies it.
type sender interface {
	Send(msg tea.Msg)
}

// Coordinator polls the backend and ticks the UI.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	api checker
	log *otel.Logger

	healthEvery  time.Duration
	refreshEvery time.Duration

	g errgroup.Group
}

// NewCoordinator creates a Coordinator for api. log may be nil.
func NewCoordinator(api checker, log *otel.Logger) *Coordinator {
	return &Coordinator{
		api:          api,
		log:          log,
		healthEvery:  healthInterval,
		refreshEvery: refreshInterval,
	}
}

// Start begins background work. Call with a cancellable context.
// Checks health immediately, then every healthInterval.
func (c *Coordinator) Start(ctx context.Context, program sender) {
	c.g.Go(func() error {
		c.checkHealth(ctx, program)

		ticker := time.NewTicker(c.healthEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				c.checkHealth(ctx, program)
			}
		}
	})

	c.g.Go(func() error {
		ticker := time.NewTicker(c.refreshEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				send(program, ui.RefreshTick{})
			}
		}
	})
}

// Wait blocks until the background goroutines exit.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() error {
	return c.g.Wait()
}

// checkHealth runs one check with timeout and reports it to the program.
func (c *Coordinator) checkHealth(ctx context.Context, program sender) {
	if ctx.Err() != nil {
		return
	}
	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	start := time.Now()
	status, err := c.api.Health(checkCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Error(otel.KindError, "coord", err)
	}
	send(program, ui.BackendStatus{
		Status:  status,
		Err:     err,
		Latency: time.Since(start),
		At:      time.Now(),
	})
}

// send handles a nil program gracefully for testing.
func send(program sender, msg tea.Msg) {
	if program != nil {
		program.Send(msg)
	}
}
