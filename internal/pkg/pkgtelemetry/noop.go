package pkgtelemetry

import (
	"context"
	"net/http"
)

// Noop is a Sink that records nothing.
type Noop struct{}

type noopSpan struct{}

func (noopSpan) SetLabel(string, string) {}
func (noopSpan) RecordError(error)       {}
func (noopSpan) SetResult(string)        {}
func (noopSpan) End()                    {}

func (Noop) CaptureError(context.Context, error) {}

func (Noop) StartTransaction(ctx context.Context, _, _ string) (context.Context, Transaction) {
	return ctx, noopSpan{}
}

func (Noop) StartSpan(ctx context.Context, _, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (Noop) SetUserContext(User) {}
func (Noop) AddLabels(Labels)    {}

func (Noop) Inject(context.Context, http.Header) {}

func (Noop) Extract(ctx context.Context, _ http.Header) context.Context {
	return ctx
}

func (Noop) Flush(context.Context) error { return nil }
func (Noop) Close(context.Context) error { return nil }
