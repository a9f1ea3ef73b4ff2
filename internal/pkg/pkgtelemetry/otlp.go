package pkgtelemetry

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"

// OTLP is a Sink backed by the OpenTelemetry SDK. The APM server ingests the
// exported spans directly on its OTLP/HTTP intake.
type OTLP struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
	prop   propagation.TextMapPropagator

	mu     sync.RWMutex
	user   User
	labels Labels
}

func newOTLP(ctx context.Context, cfg Config) (Sink, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(strings.TrimRight(cfg.ServerURL, "/") + "/v1/traces"),
	}
	if auth := cfg.AuthorizationHeader(); auth != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{"Authorization": auth}))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return NewOTLP(cfg, sdktrace.WithBatcher(exporter)), nil
}

// NewOTLP builds the sink around a span processor option such as
// sdktrace.WithBatcher or sdktrace.WithSyncer.
func NewOTLP(cfg Config, processor sdktrace.TracerProviderOption) *OTLP {
	cfg = cfg.withDefaults()

	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)

	return &OTLP{
		tp:     tp,
		tracer: tp.Tracer(instrumentationName),
		prop:   propagation.TraceContext{},
		labels: Labels{},
	}
}

func (s *OTLP) CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		_, span = s.tracer.Start(ctx, "error", trace.WithAttributes(s.commonAttrs()...))
		defer span.End()
	}

	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, err.Error())
}

func (s *OTLP) StartTransaction(ctx context.Context, name, typ string) (context.Context, Transaction) {
	kind := trace.SpanKindInternal
	if typ == TypeRequest {
		kind = trace.SpanKindServer
	}

	attrs := append(s.commonAttrs(), attribute.String("transaction.type", typ))
	ctx, span := s.tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))

	return ctx, &otlpSpan{span: span}
}

func (s *OTLP) StartSpan(ctx context.Context, name, typ string) (context.Context, Span) {
	kind := trace.SpanKindInternal
	if typ == TypeExternal {
		kind = trace.SpanKindClient
	}

	attrs := append(s.commonAttrs(), attribute.String("span.type", typ))
	ctx, span := s.tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))

	return ctx, &otlpSpan{span: span}
}

func (s *OTLP) SetUserContext(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *OTLP) AddLabels(labels Labels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range labels {
		s.labels[k] = v
	}
}

func (s *OTLP) Inject(ctx context.Context, h http.Header) {
	s.prop.Inject(ctx, propagation.HeaderCarrier(h))
}

func (s *OTLP) Extract(ctx context.Context, h http.Header) context.Context {
	return s.prop.Extract(ctx, propagation.HeaderCarrier(h))
}

func (s *OTLP) Flush(ctx context.Context) error {
	return s.tp.ForceFlush(ctx)
}

func (s *OTLP) Close(ctx context.Context) error {
	return s.tp.Shutdown(ctx)
}

func (s *OTLP) commonAttrs() []attribute.KeyValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attrs := make([]attribute.KeyValue, 0, len(s.labels)+3)
	if s.user.ID != "" {
		attrs = append(attrs, attribute.String("enduser.id", s.user.ID))
	}
	if s.user.Username != "" {
		attrs = append(attrs, attribute.String("user.name", s.user.Username))
	}
	if s.user.Email != "" {
		attrs = append(attrs, attribute.String("user.email", s.user.Email))
	}
	for k, v := range s.labels {
		attrs = append(attrs, attribute.String(k, v))
	}

	return attrs
}

type otlpSpan struct {
	span trace.Span
}

func (s *otlpSpan) SetLabel(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *otlpSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otlpSpan) SetResult(result string) {
	s.span.SetAttributes(attribute.String("transaction.result", result))
	if strings.HasPrefix(result, "HTTP 5") {
		s.span.SetStatus(codes.Error, result)
	}
}

func (s *otlpSpan) End() {
	s.span.End()
}
