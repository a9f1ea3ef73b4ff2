package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Start serves HTTP until ctx is canceled, returning nil, or the listener
// fails, returning its error.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("termination signal received")
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop releases resources newest first, so the HTTP server drains before
// the telemetry sink flushes the transactions it produced.
func (a *App) Stop(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
