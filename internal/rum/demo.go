package rum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

// DefaultTransactionDelay is how long the "transaction" action keeps its
// transaction open.
const DefaultTransactionDelay = 300 * time.Millisecond

type Runner interface {
	After(ctx context.Context, delay time.Duration, f func(ctx context.Context, err error) error)
	Wait() error
}

type Dependency struct {
	Sink             pkgtelemetry.Sink
	Client           *http.Client
	Runner           Runner
	Backend          string
	Out              io.Writer
	Clock            func() time.Time
	TransactionDelay time.Duration
}

type Demo struct {
	sink    pkgtelemetry.Sink
	client  *http.Client
	runner  Runner
	backend string
	clock   func() time.Time
	txDelay time.Duration

	mu  sync.Mutex
	out io.Writer
}

func New(dep Dependency) *Demo {
	sink := dep.Sink
	if sink == nil {
		sink = pkgtelemetry.Noop{}
	}

	client := dep.Client
	if client == nil {
		client = http.DefaultClient
	}

	out := dep.Out
	if out == nil {
		out = io.Discard
	}

	clock := dep.Clock
	if clock == nil {
		clock = time.Now
	}

	delay := dep.TransactionDelay
	if delay <= 0 {
		delay = DefaultTransactionDelay
	}

	return &Demo{
		sink:    sink,
		client:  client,
		runner:  dep.Runner,
		backend: strings.TrimRight(dep.Backend, "/"),
		clock:   clock,
		txDelay: delay,
		out:     out,
	}
}

func (d *Demo) log(ctx context.Context, msg string) {
	d.mu.Lock()
	fmt.Fprintln(d.out, msg)
	d.mu.Unlock()

	slog.InfoContext(ctx, msg)
}

// TriggerError captures a synthetic frontend error.
func (d *Demo) TriggerError(ctx context.Context) {
	err := errors.New("Frontend Test Error: " + d.clock().UTC().Format(time.RFC3339Nano))
	d.sink.CaptureError(ctx, err)
	d.log(ctx, "Frontend Error captured!")
}

// Transaction opens a user-interaction transaction and ends it after the
// configured delay. Without a Runner it blocks for the delay; otherwise it
// returns at once and Wait reports when the transaction has ended.
func (d *Demo) Transaction(ctx context.Context) {
	txCtx, tx := d.sink.StartTransaction(ctx, "pure-frontend-click", pkgtelemetry.TypeUserInteraction)

	end := func(ctx context.Context, err error) error {
		defer tx.End()

		if err != nil {
			tx.SetResult("canceled")
			return err
		}

		tx.SetResult("success")
		d.log(ctx, "Frontend Transaction finished.")
		return nil
	}

	if d.runner == nil {
		timer := time.NewTimer(d.txDelay)
		defer timer.Stop()

		var err error
		select {
		case <-txCtx.Done():
			err = txCtx.Err()
		case <-timer.C:
		}
		//nolint:errcheck // cancellation is already the caller's
		end(txCtx, err)
		return
	}

	d.runner.After(txCtx, d.txDelay, end)
}

// CallAPI fetches /api/data from the backend inside a click transaction.
func (d *Demo) CallAPI(ctx context.Context) {
	d.log(ctx, "Calling Backend API...")

	ctx, tx := d.sink.StartTransaction(ctx, "Click - api-btn", pkgtelemetry.TypeUserInteraction)
	defer tx.End()

	data, _, err := d.get(ctx, "/api/data")
	if err != nil {
		tx.SetResult("failure")
		d.log(ctx, "Fetch failed: "+err.Error())
		d.sink.CaptureError(ctx, err)
		return
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		tx.SetResult("failure")
		d.log(ctx, "Fetch failed: "+err.Error())
		d.sink.CaptureError(ctx, err)
		return
	}
	compact, _ := json.Marshal(payload)

	tx.SetResult("success")
	d.log(ctx, "Response from Backend: "+string(compact))
}

// CallAPIError fetches /api/error from the backend inside a click
// transaction and reports the status it gets back.
func (d *Demo) CallAPIError(ctx context.Context) {
	d.log(ctx, "Calling Backend Error API...")

	ctx, tx := d.sink.StartTransaction(ctx, "Click - api-err-btn", pkgtelemetry.TypeUserInteraction)
	defer tx.End()

	_, status, err := d.get(ctx, "/api/error")
	if err != nil {
		tx.SetResult("failure")
		d.log(ctx, "Fetch failed: "+err.Error())
		return
	}

	if status < 200 || status > 299 {
		tx.SetResult("failure")
		d.log(ctx, fmt.Sprintf("Backend returned error status: %d", status))
		return
	}
	tx.SetResult("success")
}

// All runs every action in page order.
func (d *Demo) All(ctx context.Context) {
	d.TriggerError(ctx)
	d.Transaction(ctx)
	d.CallAPI(ctx)
	d.CallAPIError(ctx)
}

// Wait blocks until asynchronous actions are done.
func (d *Demo) Wait() error {
	if d.runner == nil {
		return nil
	}
	return d.runner.Wait()
}

func (d *Demo) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.backend+path, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}
