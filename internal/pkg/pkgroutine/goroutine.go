package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// ErrPanic wraps the value of a recovered panic.
var ErrPanic = errors.New("goroutine panicked")

// Manager runs functions in goroutines with a concurrency limit.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a Manager running at most maxGoroutine tasks at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go runs f in a goroutine once a slot is free. It blocks while the manager is
// full; if ctx is done first, f never runs.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	select {
	case g.sema <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "goroutine canceled before start", "because", ctx.Err())
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()

		if err := g.run(ctx, f); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}()
}

// After runs f once delay has elapsed. f gets ctx.Err() instead if ctx is
// done before that; it always runs exactly once and holds a slot while it
// waits.
func (g *Manager) After(ctx context.Context, delay time.Duration, f func(ctx context.Context, err error) error) {
	g.Go(context.WithoutCancel(ctx), func(context.Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		var waitErr error
		select {
		case <-ctx.Done():
			waitErr = ctx.Err()
		case <-timer.C:
		}

		return f(ctx, waitErr)
	})
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "because", rvr, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	return f(ctx)
}

// Wait blocks until every scheduled task has finished and returns the errors
// they produced, joined. Errors are cleared so the manager can be reused.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	err := errors.Join(g.errs...)
	g.errs = nil

	return err
}
