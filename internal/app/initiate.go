package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgconfig"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgrouter"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkguid"
	"github.com/rs/cors"
)

func defaultConfig() map[string]any {
	return map[string]any{
		"tz":                                    "UTC",
		"server.address.http":                   ":3000",
		"modules.api.enabled":                   true,
		"modules.api.delay":                     "200ms",
		"telemetry.driver":                      string(pkgtelemetry.DriverOTLP),
		"telemetry.service_name":                serviceName,
		"telemetry.service_version":             "0.0.1",
		"telemetry.environment":                 "local",
		"telemetry.server_url":                  "http://localhost:8200",
		"telemetry.sample_rate":                 1.0,
		"telemetry.flush_timeout":               "2s",
		"telemetry.distributed_tracing_origins": []string{},
		"telemetry.global_labels":               "",
	}
}

func configOptions() []pkgconfig.Option {
	return []pkgconfig.Option{
		pkgconfig.WithDefaults(defaultConfig()),
		pkgconfig.WithEnvAlias("telemetry.server_url", "TELEMETRY_SERVER_URL", "APM_SERVER_URL"),
		pkgconfig.WithEnvAlias("telemetry.secret_token", "TELEMETRY_SECRET_TOKEN", "ELASTIC_APM_SECRET_TOKEN"),
		pkgconfig.WithEnvAlias("telemetry.api_key", "TELEMETRY_API_KEY", "ELASTIC_APM_API_KEY"),
		pkgconfig.WithEnvAlias("telemetry.dsn", "TELEMETRY_DSN", "SENTRY_DSN"),
		pkgconfig.WithEnvAlias("telemetry.global_labels", "TELEMETRY_GLOBAL_LABELS", "ELASTIC_APM_GLOBAL_LABELS"),
	}
}

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path, configOptions()...)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
	a.addCloser("Config", func(context.Context) error { return cfg.Close() })
}

func (a *App) initLibraries() {
	a.uuid = pkguid.NewUUID()
}

func telemetryConfig(cfg pkgconfig.Config) pkgtelemetry.Config {
	return pkgtelemetry.Config{
		Driver:                    pkgtelemetry.Driver(cfg.GetString("telemetry.driver")),
		ServiceName:               cfg.GetString("telemetry.service_name"),
		ServiceVersion:            cfg.GetString("telemetry.service_version"),
		Environment:               cfg.GetString("telemetry.environment"),
		ServerURL:                 cfg.GetString("telemetry.server_url"),
		SecretToken:               cfg.GetString("telemetry.secret_token"),
		APIKey:                    cfg.GetString("telemetry.api_key"),
		DSN:                       cfg.GetString("telemetry.dsn"),
		SampleRate:                cfg.GetFloat("telemetry.sample_rate"),
		FlushTimeout:              cfg.GetDuration("telemetry.flush_timeout"),
		DistributedTracingOrigins: cfg.GetArray("telemetry.distributed_tracing_origins"),
	}
}

func (a *App) initTelemetry(ctx context.Context) {
	tcfg := telemetryConfig(a.config)
	a.telemetry = pkgtelemetry.NewOrNoop(ctx, tcfg)
	a.addCloser("Telemetry", a.telemetry.Close)

	if labels := a.config.GetMap("telemetry.global_labels"); len(labels) > 0 {
		a.telemetry.AddLabels(labels)
	}

	slog.Info("telemetry initialized",
		"driver", tcfg.Driver,
		"server_url", tcfg.ServerURL,
		"service_version", tcfg.ServiceVersion,
	)
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid, a.telemetry)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{pkgrouter.HeaderCorrelationID},
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
