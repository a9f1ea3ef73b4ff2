package pkgtelemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestNewSelectsDriver(t *testing.T) {
	sink, err := New(context.Background(), Config{Driver: " Memory "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := sink.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", sink)
	}

	sink, err = New(context.Background(), Config{Driver: DriverNoop})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := sink.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", sink)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), Config{Driver: "datadog"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if sink := NewOrNoop(context.Background(), Config{Driver: "datadog"}); sink != (Noop{}) {
		t.Fatalf("expected Noop fallback, got %T", sink)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "none", cfg: Config{}, want: ""},
		{name: "token", cfg: Config{SecretToken: "s3cr3t"}, want: "Bearer s3cr3t"},
		{name: "api key", cfg: Config{APIKey: "k"}, want: "ApiKey k"},
		{name: "token wins", cfg: Config{SecretToken: "s3cr3t", APIKey: "k"}, want: "Bearer s3cr3t"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.AuthorizationHeader(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSentrySinkWithoutDSN(t *testing.T) {
	sink, err := New(context.Background(), Config{
		Driver:         DriverSentry,
		ServiceName:    "local-test-app",
		ServiceVersion: "0.0.1",
		Environment:    "local",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sink.SetUserContext(User{ID: "your-uid"})
	sink.AddLabels(Labels{"device_id": "aaa-xxx-vvv-dddd"})

	ctx, tx := sink.StartTransaction(context.Background(), "pure-frontend-click", TypeUserInteraction)
	spanCtx, span := sink.StartSpan(ctx, "GET localhost:3000", TypeExternal)

	h := http.Header{}
	sink.Inject(spanCtx, h)
	if h.Get("sentry-trace") == "" {
		t.Fatal("expected sentry-trace header")
	}

	sink.CaptureError(spanCtx, errors.New("Frontend Test Error"))
	span.End()
	tx.SetResult("success")
	tx.End()

	remote := sink.Extract(context.Background(), h)
	_, stx := sink.StartTransaction(remote, "GET /api/data", TypeRequest)
	stx.End()

	parent := tx.(*sentrySpan).span
	child := stx.(*sentrySpan).span
	if child.TraceID != parent.TraceID {
		t.Fatalf("expected continued trace %s, got %s", parent.TraceID, child.TraceID)
	}

	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}
