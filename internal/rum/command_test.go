package rum

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

func memoryFactory(sink *pkgtelemetry.Memory, got *pkgtelemetry.Config) SinkFactory {
	return func(_ context.Context, cfg pkgtelemetry.Config) (pkgtelemetry.Sink, error) {
		*got = cfg
		return sink, nil
	}
}

func TestCommandAll(t *testing.T) {
	backend, _ := newBackend(t)
	sink := pkgtelemetry.NewMemory()
	var cfg pkgtelemetry.Config
	var out bytes.Buffer

	cmd := NewCommand(memoryFactory(sink, &cfg))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"all",
		"--backend", backend.URL,
		"--origins", backend.URL,
		"--transaction-delay", "5ms",
		"--service", "shop-web",
	})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, want := range []string{
		"Frontend Error captured!",
		"Frontend Transaction finished.",
		"Response from Backend: ",
		"Backend returned error status: 500",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	if cfg.ServiceName != "shop-web" || cfg.ServiceVersion != "0.0.1" || cfg.Environment != "local" {
		t.Fatalf("unexpected telemetry config: %+v", cfg)
	}
	if user := sink.User(); user.ID != "your-uid" || user.Username != "user@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if sink.Labels()["device_id"] != "aaa-xxx-vvv-dddd" {
		t.Fatalf("unexpected labels: %v", sink.Labels())
	}
	if n := len(sink.Transactions()); n != 3 {
		t.Fatalf("expected 3 transactions, got %d", n)
	}
	for _, tx := range sink.Transactions() {
		if !tx.Ended {
			t.Fatalf("transaction %q not ended before exit", tx.Name)
		}
	}
}

func TestCommandSinkInitFailure(t *testing.T) {
	boom := errors.New("no collector")
	cmd := NewCommand(func(context.Context, pkgtelemetry.Config) (pkgtelemetry.Sink, error) {
		return nil, boom
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"error"})

	if err := cmd.ExecuteContext(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected init error, got %v", err)
	}
}

func TestCommandRejectsArgs(t *testing.T) {
	cmd := NewCommand(memoryFactory(pkgtelemetry.NewMemory(), &pkgtelemetry.Config{}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"error", "extra"})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for unexpected argument")
	}
}

type closeTrackingSink struct {
	*pkgtelemetry.Memory
	closed   bool
	closeErr error
}

func (s *closeTrackingSink) Close(ctx context.Context) error {
	s.closed = true
	s.closeErr = ctx.Err()
	return nil
}

func TestCommandClosesSinkWhenTransactionIsCanceled(t *testing.T) {
	sink := &closeTrackingSink{Memory: pkgtelemetry.NewMemory()}
	cmd := NewCommand(func(context.Context, pkgtelemetry.Config) (pkgtelemetry.Sink, error) {
		return sink, nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"transaction", "--transaction-delay", "1h"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the canceled transaction to be reported, got %v", err)
	}
	if !sink.closed {
		t.Fatal("expected the sink to be closed after a failed wait")
	}
	if sink.closeErr != nil {
		t.Fatalf("expected Close to get a live context, got %v", sink.closeErr)
	}

	txs := sink.Transactions()
	if len(txs) != 1 || !txs[0].Ended || txs[0].Result != "canceled" {
		t.Fatalf("expected one canceled transaction, got %+v", txs)
	}
}
