package pkgtelemetry

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Sentry is a Sink backed by the Sentry Go SDK. It owns its hub instead of
// using the SDK's global one, so several sinks can live in one process.
type Sentry struct {
	hub          *sentry.Hub
	flushTimeout time.Duration
}

type sentrySpanKey struct{}

type sentryHeadersKey struct{}

type sentryHeaders struct {
	trace   string
	baggage string
}

func newSentry(_ context.Context, cfg Config) (Sink, error) {
	release := cfg.ServiceName
	if cfg.ServiceVersion != "" {
		release += "@" + cfg.ServiceVersion
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Release:          release,
		Environment:      cfg.Environment,
		ServerName:       cfg.ServiceName,
		EnableTracing:    true,
		TracesSampleRate: cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}

	return &Sentry{
		hub:          sentry.NewHub(client, sentry.NewScope()),
		flushTimeout: cfg.FlushTimeout,
	}, nil
}

func (s *Sentry) CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = s.hub
	}
	hub.CaptureException(err)
}

func (s *Sentry) StartTransaction(ctx context.Context, name, typ string) (context.Context, Transaction) {
	hub := s.hub.Clone()
	ctx = sentry.SetHubOnContext(ctx, hub)

	opts := []sentry.SpanOption{
		sentry.WithOpName(typ),
		sentry.WithTransactionSource(sentry.SourceCustom),
	}
	if h, ok := ctx.Value(sentryHeadersKey{}).(sentryHeaders); ok {
		opts = append(opts, sentry.ContinueFromHeaders(h.trace, h.baggage))
	}

	tx := sentry.StartTransaction(ctx, name, opts...)

	return context.WithValue(tx.Context(), sentrySpanKey{}, tx), &sentrySpan{span: tx, hub: hub}
}

func (s *Sentry) StartSpan(ctx context.Context, name, typ string) (context.Context, Span) {
	if sentry.GetHubFromContext(ctx) == nil {
		ctx = sentry.SetHubOnContext(ctx, s.hub.Clone())
	}

	span := sentry.StartSpan(ctx, typ)
	span.Description = name

	return context.WithValue(span.Context(), sentrySpanKey{}, span), &sentrySpan{span: span, hub: sentry.GetHubFromContext(ctx)}
}

func (s *Sentry) SetUserContext(user User) {
	s.hub.Scope().SetUser(sentry.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

func (s *Sentry) AddLabels(labels Labels) {
	s.hub.Scope().SetTags(labels)
}

func (s *Sentry) Inject(ctx context.Context, h http.Header) {
	span, ok := ctx.Value(sentrySpanKey{}).(*sentry.Span)
	if !ok || span == nil {
		return
	}

	h.Set(sentry.SentryTraceHeader, span.ToSentryTrace())
	if baggage := span.ToBaggage(); baggage != "" {
		h.Set(sentry.SentryBaggageHeader, baggage)
	}
}

func (s *Sentry) Extract(ctx context.Context, h http.Header) context.Context {
	trace := h.Get(sentry.SentryTraceHeader)
	if trace == "" {
		return ctx
	}

	return context.WithValue(ctx, sentryHeadersKey{}, sentryHeaders{
		trace:   trace,
		baggage: h.Get(sentry.SentryBaggageHeader),
	})
}

func (s *Sentry) Flush(ctx context.Context) error {
	timeout := s.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	if !s.hub.Flush(timeout) {
		return errors.New("sentry: flush timed out")
	}
	return nil
}

func (s *Sentry) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

type sentrySpan struct {
	span *sentry.Span
	hub  *sentry.Hub
}

func (s *sentrySpan) SetLabel(key, value string) {
	s.span.SetTag(key, value)
}

func (s *sentrySpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.Status = sentry.SpanStatusInternalError
	if s.hub != nil {
		s.hub.CaptureException(err)
	}
}

func (s *sentrySpan) SetResult(result string) {
	s.span.SetTag("result", result)
	switch {
	case strings.HasPrefix(result, "HTTP 5"):
		s.span.Status = sentry.SpanStatusInternalError
	case strings.HasPrefix(result, "HTTP 4"):
		s.span.Status = sentry.SpanStatusInvalidArgument
	default:
		s.span.Status = sentry.SpanStatusOK
	}
}

func (s *sentrySpan) End() {
	s.span.Finish()
}
