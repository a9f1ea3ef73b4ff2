package rum

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgroutine"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

// SinkFactory builds the telemetry sink from the command flags.
type SinkFactory func(ctx context.Context, cfg pkgtelemetry.Config) (pkgtelemetry.Sink, error)

type options struct {
	server      string
	backend     string
	driver      string
	service     string
	version     string
	environment string
	dsn         string
	origins     []string

	userID   string
	username string
	email    string
	deviceID string

	txDelay time.Duration
	timeout time.Duration
}

func (o options) telemetryConfig() pkgtelemetry.Config {
	return pkgtelemetry.Config{
		Driver:                    pkgtelemetry.Driver(o.driver),
		ServiceName:               o.service,
		ServiceVersion:            o.version,
		Environment:               o.environment,
		ServerURL:                 o.server,
		SecretToken:               os.Getenv("ELASTIC_APM_SECRET_TOKEN"),
		APIKey:                    os.Getenv("ELASTIC_APM_API_KEY"),
		DSN:                       o.dsn,
		DistributedTracingOrigins: o.origins,
	}
}

// NewCommand returns the rumdemo root command. A nil newSink uses
// pkgtelemetry.New.
func NewCommand(newSink SinkFactory) *cobra.Command {
	if newSink == nil {
		newSink = pkgtelemetry.New
	}

	var (
		opts options
		sink pkgtelemetry.Sink
		demo *Demo
	)

	root := &cobra.Command{
		Use:   "rumdemo",
		Short: "Drive the RUM demo actions against the backend API",
		Long: `rumdemo plays the browser page of the Elastic RUM demo.

Every action reports to the APM server through the selected telemetry
driver, with the user context and device_id label of the page. Requests to
the backend carry a traceparent header when its origin is listed in
--origins, so the backend transaction joins the same trace.`,
		Example: `  # Capture a frontend error
  rumdemo error

  # Call the backend and follow the trace in Kibana
  rumdemo api --backend http://localhost:3000 --server http://localhost:8200

  # Run the four actions in order, printing spans instead of exporting them
  rumdemo all --driver memory`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			sink, err = newSink(cmd.Context(), opts.telemetryConfig())
			if err != nil {
				return err
			}

			sink.SetUserContext(pkgtelemetry.User{
				ID:       opts.userID,
				Username: opts.username,
				Email:    opts.email,
			})
			sink.AddLabels(pkgtelemetry.Labels{"device_id": opts.deviceID})

			demo = New(Dependency{
				Sink: sink,
				Client: &http.Client{
					Transport: pkgtelemetry.NewTransport(sink, opts.origins, nil),
					Timeout:   opts.timeout,
				},
				Runner:           pkgroutine.NewManager(pkgroutine.DefaultMaxGoroutine),
				Backend:          opts.backend,
				Out:              cmd.OutOrStdout(),
				TransactionDelay: opts.txDelay,
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			waitErr := demo.Wait()
			// the command context may already be canceled; the flush must still run
			closeErr := sink.Close(context.WithoutCancel(cmd.Context()))
			return errors.Join(waitErr, closeErr)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.server, "server", "http://localhost:8200", "APM server URL")
	pf.StringVar(&opts.backend, "backend", "http://localhost:3000", "backend API base URL")
	pf.StringVar(&opts.driver, "driver", string(pkgtelemetry.DriverOTLP), "telemetry driver (otlp, sentry, memory, noop)")
	pf.StringVar(&opts.service, "service", "local-test-app", "service name")
	pf.StringVar(&opts.version, "version", "0.0.1", "service version, matched against uploaded sourcemaps")
	pf.StringVar(&opts.environment, "environment", "local", "deployment environment")
	pf.StringVar(&opts.dsn, "dsn", "", "Sentry DSN for the sentry driver")
	pf.StringSliceVar(&opts.origins, "origins", []string{"http://localhost:3000"}, "origins that receive the trace header")
	pf.StringVar(&opts.userID, "user-id", "your-uid", "user id reported with every event")
	pf.StringVar(&opts.username, "username", "user@example.com", "username reported with every event")
	pf.StringVar(&opts.email, "email", "", "user email reported with every event")
	pf.StringVar(&opts.deviceID, "device-id", "aaa-xxx-vvv-dddd", "device_id label")
	pf.DurationVar(&opts.txDelay, "transaction-delay", DefaultTransactionDelay, "how long the transaction action stays open")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Second, "backend request timeout")

	action := func(use, short string, run func(d *Demo, ctx context.Context)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				run(demo, cmd.Context())
				return nil
			},
		}
	}

	root.AddCommand(
		action("error", "Capture a frontend error", (*Demo).TriggerError),
		action("transaction", "Record a frontend-only transaction", (*Demo).Transaction),
		action("api", "Call the backend API (success)", (*Demo).CallAPI),
		action("api-error", "Call the backend API (error)", (*Demo).CallAPIError),
		action("all", "Run every action in order", (*Demo).All),
	)

	return root
}
