package pkgtelemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestTransportPropagatesOnlyToAllowedOrigins(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			seen[name] = r.Header.Get("traceparent")
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}
	}

	backend := httptest.NewServer(handler("backend"))
	defer backend.Close()
	thirdParty := httptest.NewServer(handler("third-party"))
	defer thirdParty.Close()

	sink := NewMemory()
	client := &http.Client{Transport: NewTransport(sink, []string{backend.URL + "/"}, nil)}

	ctx, tx := sink.StartTransaction(context.Background(), "Click - api-btn", TypeUserInteraction)
	defer tx.End()

	for _, target := range []string{backend.URL + "/api/data", thirdParty.URL + "/pixel"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		resp.Body.Close()
		if req.Header.Get("traceparent") != "" {
			t.Fatal("transport must not mutate the caller's request")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if seen["backend"] == "" {
		t.Fatal("expected traceparent on allowed origin")
	}
	if seen["third-party"] != "" {
		t.Fatalf("expected no traceparent on foreign origin, got %q", seen["third-party"])
	}

	spans := sink.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 external spans, got %d", len(spans))
	}
	if spans[0].Type != TypeExternal || spans[0].Labels["http.status_code"] != "204" {
		t.Fatalf("unexpected span: %+v", spans[0])
	}
	if !spans[0].Ended {
		t.Fatal("expected span to be ended")
	}
}

func TestNormalizeOrigin(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":  "http://localhost:3000",
		"http://LOCALHOST:3000/": "http://localhost:3000",
		"https://example.com":    "https://example.com:443",
		"http://example.com/a/b": "http://example.com:80",
		"not a url":              "",
	}
	for in, want := range cases {
		if got := normalizeOrigin(in); got != want {
			t.Fatalf("normalizeOrigin(%q) = %q, want %q", in, got, want)
		}
	}
}
