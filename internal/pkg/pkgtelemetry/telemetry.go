package pkgtelemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Well-known transaction and span types.
const (
	TypeRequest         = "request"
	TypeUserInteraction = "user-interaction"
	TypeExternal        = "external"
	TypeApp             = "app"
)

// Driver names a Sink implementation.
type Driver string

const (
	DriverOTLP   Driver = "otlp"
	DriverSentry Driver = "sentry"
	DriverMemory Driver = "memory"
	DriverNoop   Driver = "noop"
)

// User identifies the end user attached to every event recorded after
// SetUserContext.
type User struct {
	ID       string
	Username string
	Email    string
}

// Labels are free-form key/value pairs attached to recorded events.
type Labels map[string]string

// Span is a timed unit of work inside a transaction.
type Span interface {
	SetLabel(key, value string)
	RecordError(err error)
	End()
}

// Transaction is the root span of a trace segment (a request, a click).
type Transaction interface {
	Span
	// SetResult records the outcome, for example "HTTP 2xx" or "success".
	SetResult(result string)
}

// Sink records telemetry and ships it out of band.
type Sink interface {
	CaptureError(ctx context.Context, err error)
	StartTransaction(ctx context.Context, name, typ string) (context.Context, Transaction)
	StartSpan(ctx context.Context, name, typ string) (context.Context, Span)
	SetUserContext(user User)
	AddLabels(labels Labels)

	// Inject writes the trace header of the active span in ctx into h.
	Inject(ctx context.Context, h http.Header)
	// Extract returns ctx carrying the remote parent found in h, if any.
	Extract(ctx context.Context, h http.Header) context.Context

	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config holds everything a driver needs to start.
type Config struct {
	Driver         Driver
	ServiceName    string
	ServiceVersion string
	Environment    string

	// ServerURL is the APM server base URL (otlp driver).
	ServerURL   string
	SecretToken string
	APIKey      string

	// DSN is the Sentry project DSN (sentry driver). Empty disables sending.
	DSN string

	SampleRate   float64
	FlushTimeout time.Duration

	// DistributedTracingOrigins lists origins that receive trace headers
	// on outgoing requests.
	DistributedTracingOrigins []string
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverOTLP
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:8200"
	}
	if c.SampleRate <= 0 || c.SampleRate > 1 {
		c.SampleRate = 1
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = 2 * time.Second
	}
	return c
}

// AuthorizationHeader returns the Authorization value for the APM server,
// preferring the secret token over the API key. Empty means no header.
func (c Config) AuthorizationHeader() string {
	switch {
	case c.SecretToken != "":
		return "Bearer " + c.SecretToken
	case c.APIKey != "":
		return "ApiKey " + c.APIKey
	default:
		return ""
	}
}

// SetupFunc builds a Sink for one driver.
type SetupFunc func(ctx context.Context, cfg Config) (Sink, error)

//nolint:gochecknoglobals // driver registry
var drivers = map[Driver]SetupFunc{
	DriverOTLP:   newOTLP,
	DriverSentry: newSentry,
	DriverMemory: func(context.Context, Config) (Sink, error) { return NewMemory(), nil },
	DriverNoop:   func(context.Context, Config) (Sink, error) { return Noop{}, nil },
}

// New initializes the sink selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (Sink, error) {
	cfg = cfg.withDefaults()
	driver := Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))

	setup, ok := drivers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported telemetry driver: %s", cfg.Driver)
	}

	sink, err := setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s telemetry: %w", driver, err)
	}

	return sink, nil
}

// NewOrNoop is New that degrades to Noop when the driver cannot start, so a
// telemetry outage never prevents the service from starting.
func NewOrNoop(ctx context.Context, cfg Config) Sink {
	sink, err := New(ctx, cfg)
	if err != nil {
		slog.WarnContext(ctx, "telemetry disabled", "driver", cfg.Driver, "error", err)
		return Noop{}
	}
	return sink
}
