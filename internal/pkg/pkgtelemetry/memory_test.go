package pkgtelemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestMemoryRecordsTransactionTree(t *testing.T) {
	sink := NewMemory()
	sink.SetUserContext(User{ID: "your-uid", Username: "user@example.com"})
	sink.AddLabels(Labels{"device_id": "aaa-xxx-vvv-dddd"})

	ctx, tx := sink.StartTransaction(context.Background(), "GET /api/data", TypeRequest)
	spanCtx, span := sink.StartSpan(ctx, "process-data", TypeApp)
	sink.CaptureError(spanCtx, errors.New("boom"))
	span.End()
	tx.SetResult("HTTP 2xx")
	tx.End()

	txs := sink.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	spans := sink.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	if !txs[0].Ended || txs[0].Result != "HTTP 2xx" {
		t.Fatalf("unexpected transaction: %+v", txs[0])
	}
	if spans[0].TraceID != txs[0].TraceID || spans[0].ParentID != txs[0].SpanID {
		t.Fatalf("span not parented to transaction: span=%+v tx=%+v", spans[0], txs[0])
	}
	if spans[0].Labels["device_id"] != "aaa-xxx-vvv-dddd" {
		t.Fatalf("expected global label on span, got %v", spans[0].Labels)
	}
	if txs[0].User.ID != "your-uid" {
		t.Fatalf("expected user on transaction, got %+v", txs[0].User)
	}

	errs := sink.Errors()
	if len(errs) != 1 || errs[0].Message != "boom" {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if errs[0].SpanID != spans[0].SpanID {
		t.Fatalf("expected error attached to span %s, got %s", spans[0].SpanID, errs[0].SpanID)
	}
	if len(spans[0].Errors) != 1 {
		t.Fatalf("expected span to record the error, got %v", spans[0].Errors)
	}
}

func TestMemoryPropagation(t *testing.T) {
	client := NewMemory()
	server := NewMemory()

	ctx, tx := client.StartTransaction(context.Background(), "Click - api-btn", TypeUserInteraction)
	defer tx.End()

	h := http.Header{}
	client.Inject(ctx, h)
	if h.Get("traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	_, stx := server.StartTransaction(server.Extract(context.Background(), h), "GET /api/data", TypeRequest)
	stx.End()

	clientTx := client.Transactions()[0]
	serverTx := server.Transactions()[0]
	if serverTx.TraceID != clientTx.TraceID {
		t.Fatalf("expected shared trace id, got %s vs %s", serverTx.TraceID, clientTx.TraceID)
	}
	if serverTx.ParentID != clientTx.SpanID {
		t.Fatalf("expected remote parent %s, got %s", clientTx.SpanID, serverTx.ParentID)
	}
}

func TestMemoryExtractIgnoresMalformedHeader(t *testing.T) {
	sink := NewMemory()
	h := http.Header{}
	h.Set("traceparent", "garbage")

	ctx := context.Background()
	if got := sink.Extract(ctx, h); got != ctx {
		t.Fatal("expected context unchanged for malformed header")
	}
}

func TestMemoryEndIsIdempotent(t *testing.T) {
	sink := NewMemory()
	_, tx := sink.StartTransaction(context.Background(), "pure-frontend-click", TypeUserInteraction)
	tx.End()
	first := sink.Transactions()[0].Duration
	tx.End()
	if got := sink.Transactions()[0].Duration; got != first {
		t.Fatalf("expected duration to stay %v, got %v", first, got)
	}
}
