package pkgtelemetry

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkguid"
)

const traceparentHeader = "traceparent"

// RecordedSpan is a snapshot of a transaction or span kept by Memory.
type RecordedSpan struct {
	Name     string
	Type     string
	TraceID  string
	SpanID   string
	ParentID string
	Result   string
	Labels   Labels
	Errors   []string
	User     User
	Ended    bool
	Duration time.Duration
}

// RecordedError is a snapshot of a captured error kept by Memory.
type RecordedError struct {
	Message string
	TraceID string
	SpanID  string
	Labels  Labels
	User    User
}

// Memory is a Sink that keeps everything in process. Every event is also
// written to the default slog logger.
type Memory struct {
	mu           sync.RWMutex
	transactions []*memorySpan
	spans        []*memorySpan
	errors       []RecordedError
	user         User
	labels       Labels
	ids          pkguid.StringID
}

type memorySpan struct {
	mu      sync.Mutex
	rec     RecordedSpan
	started time.Time
}

type memorySpanKey struct{}

type memoryRemoteKey struct{}

type memoryRemote struct {
	traceID string
	spanID  string
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{labels: Labels{}, ids: pkguid.NewHexID()}
}

func (m *Memory) CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := RecordedError{
		Message: err.Error(),
		Labels:  maps.Clone(m.labels),
		User:    m.user,
	}
	if parent, ok := ctx.Value(memorySpanKey{}).(*memorySpan); ok {
		parent.mu.Lock()
		rec.TraceID = parent.rec.TraceID
		rec.SpanID = parent.rec.SpanID
		parent.rec.Errors = append(parent.rec.Errors, err.Error())
		parent.mu.Unlock()
	}
	m.errors = append(m.errors, rec)

	slog.InfoContext(ctx, "telemetry error captured", "error", err, "trace_id", rec.TraceID)
}

func (m *Memory) StartTransaction(ctx context.Context, name, typ string) (context.Context, Transaction) {
	span := m.newSpan(ctx, name, typ)

	m.mu.Lock()
	m.transactions = append(m.transactions, span)
	m.mu.Unlock()

	return context.WithValue(ctx, memorySpanKey{}, span), span
}

func (m *Memory) StartSpan(ctx context.Context, name, typ string) (context.Context, Span) {
	span := m.newSpan(ctx, name, typ)

	m.mu.Lock()
	m.spans = append(m.spans, span)
	m.mu.Unlock()

	return context.WithValue(ctx, memorySpanKey{}, span), span
}

func (m *Memory) SetUserContext(user User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}

func (m *Memory) AddLabels(labels Labels) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.labels, labels)
}

func (m *Memory) Inject(ctx context.Context, h http.Header) {
	span, ok := ctx.Value(memorySpanKey{}).(*memorySpan)
	if !ok {
		return
	}

	span.mu.Lock()
	defer span.mu.Unlock()
	h.Set(traceparentHeader, "00-"+span.rec.TraceID+"-"+span.rec.SpanID+"-01")
}

func (m *Memory) Extract(ctx context.Context, h http.Header) context.Context {
	parts := strings.Split(h.Get(traceparentHeader), "-")
	if len(parts) != 4 || len(parts[1]) != 32 || len(parts[2]) != 16 {
		return ctx
	}

	return context.WithValue(ctx, memoryRemoteKey{}, memoryRemote{traceID: parts[1], spanID: parts[2]})
}

func (m *Memory) Flush(context.Context) error { return nil }
func (m *Memory) Close(context.Context) error { return nil }

// Transactions returns a snapshot of every started transaction in start order.
func (m *Memory) Transactions() []RecordedSpan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.transactions)
}

// Spans returns a snapshot of every started span in start order.
func (m *Memory) Spans() []RecordedSpan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.spans)
}

// Errors returns every captured error in capture order.
func (m *Memory) Errors() []RecordedError {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedError(nil), m.errors...)
}

// User returns the current user context.
func (m *Memory) User() User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Labels returns a copy of the global labels.
func (m *Memory) Labels() Labels {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.labels)
}

func (m *Memory) newSpan(ctx context.Context, name, typ string) *memorySpan {
	m.mu.RLock()
	rec := RecordedSpan{
		Name:   name,
		Type:   typ,
		SpanID: m.ids.Generate()[:16],
		Labels: maps.Clone(m.labels),
		User:   m.user,
	}
	m.mu.RUnlock()

	switch parent, remote := parentOf(ctx); {
	case parent != nil:
		parent.mu.Lock()
		rec.TraceID = parent.rec.TraceID
		rec.ParentID = parent.rec.SpanID
		parent.mu.Unlock()
	case remote != nil:
		rec.TraceID = remote.traceID
		rec.ParentID = remote.spanID
	default:
		rec.TraceID = m.ids.Generate()
	}

	return &memorySpan{rec: rec, started: time.Now()}
}

func parentOf(ctx context.Context) (*memorySpan, *memoryRemote) {
	if span, ok := ctx.Value(memorySpanKey{}).(*memorySpan); ok {
		return span, nil
	}
	if remote, ok := ctx.Value(memoryRemoteKey{}).(memoryRemote); ok {
		return nil, &remote
	}
	return nil, nil
}

func (s *memorySpan) SetLabel(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec.Labels == nil {
		s.rec.Labels = Labels{}
	}
	s.rec.Labels[key] = value
}

func (s *memorySpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Errors = append(s.rec.Errors, err.Error())
}

func (s *memorySpan) SetResult(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Result = result
}

func (s *memorySpan) End() {
	s.mu.Lock()
	if s.rec.Ended {
		s.mu.Unlock()
		return
	}
	s.rec.Ended = true
	s.rec.Duration = time.Since(s.started)
	rec := s.rec
	s.mu.Unlock()

	slog.Info("telemetry span ended",
		"name", rec.Name,
		"type", rec.Type,
		"trace_id", rec.TraceID,
		"result", rec.Result,
		"duration_ms", rec.Duration.Milliseconds(),
	)
}

func snapshot(spans []*memorySpan) []RecordedSpan {
	out := make([]RecordedSpan, 0, len(spans))
	for _, s := range spans {
		s.mu.Lock()
		rec := s.rec
		rec.Labels = maps.Clone(s.rec.Labels)
		rec.Errors = append([]string(nil), s.rec.Errors...)
		s.mu.Unlock()
		out = append(out, rec)
	}
	return out
}
