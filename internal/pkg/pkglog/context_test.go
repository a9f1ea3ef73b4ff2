package pkglog

import (
	"context"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelationID(ctx); got != "" {
		t.Fatalf("expected empty correlation id, got %q", got)
	}

	ctx = SetCorrelationID(ctx, "cid-123")
	if got := GetCorrelationID(ctx); got != "cid-123" {
		t.Fatalf("expected cid-123, got %q", got)
	}
}

func TestBatchID(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetBatchID(ctx); ok {
		t.Fatalf("expected no batch id on a bare context")
	}

	ctx = SetBatchID(SetCorrelationID(ctx, "cid"), 42)
	id, ok := GetBatchID(ctx)
	if !ok || id != 42 {
		t.Fatalf("expected batch 42, got %d (%v)", id, ok)
	}
	if got := GetCorrelationID(ctx); got != "cid" {
		t.Fatalf("batch id must not shadow the correlation id, got %q", got)
	}
}
