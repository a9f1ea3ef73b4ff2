package sourcemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkguid"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/entity"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/outbound"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/usecase"
)

const (
	EnvSecretToken = "ELASTIC_APM_SECRET_TOKEN"
	EnvAPIKey      = "ELASTIC_APM_API_KEY"
)

// Exit statuses of the command.
const (
	ExitOK             = 0
	ExitMissingDir     = 1
	ExitUploadsFailed  = 2
	exitUnexpectedFail = 1
)

// ExitError carries the process exit status for main. Reported marks errors
// whose message was already printed to the user.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) ExitCode() int { return e.Code }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitStatus maps the result of Run to a process exit status, printing the
// error to w unless Run already reported it.
func ExitStatus(err error, w io.Writer) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			fmt.Fprintf(w, "error: %v\n", exitErr)
		}
		return exitErr.Code
	}

	fmt.Fprintf(w, "error: %v\n", err)
	return exitUnexpectedFail
}

func newFlagSet(cfg *usecase.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("upload-sourcemaps", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.ServiceName, "service", usecase.DefaultServiceName, "service name")
	fs.StringVar(&cfg.ServiceVersion, "version", usecase.DefaultServiceVersion, "service version")
	fs.StringVar(&cfg.PublicBaseURL, "base", usecase.DefaultPublicBaseURL, "public base URL the bundles are served from")
	fs.StringVar(&cfg.DistDir, "dist", usecase.DefaultDistDir, "build output directory")
	fs.StringVar(&cfg.ServerURL, "server", usecase.DefaultServerURL, "APM server URL")
	fs.BoolVar(&cfg.Validate, "validate", false, "parse every sourcemap before uploading it")
	fs.BoolVar(&cfg.Strict, "strict", false, "exit with status 2 when any upload fails")
	return fs
}

// Usage writes the flag help to w.
func Usage(w io.Writer) {
	fs := newFlagSet(&usecase.Config{})
	fmt.Fprintln(w, "Usage: upload-sourcemaps [flags]")
	fmt.Fprintln(w)
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Credentials are read from %s or %s.\n", EnvSecretToken, EnvAPIKey)
}

// ParseArgs builds the configuration from command-line args and the
// environment. Parsing is best effort: a malformed command line is reported
// and the default configuration is used instead.
func ParseArgs(args []string, getenv func(string) string) usecase.Config {
	cfg, err := parseArgs(args, getenv)
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		slog.Warn("arg parsing failed, using defaults", "error", err)
		cfg, _ = parseArgs(nil, getenv)
	}
	return cfg
}

// WantsHelp reports whether args ask for the usage text.
func WantsHelp(args []string) bool {
	_, err := parseArgs(args, func(string) string { return "" })
	return errors.Is(err, pflag.ErrHelp)
}

func parseArgs(args []string, getenv func(string) string) (usecase.Config, error) {
	var cfg usecase.Config
	err := newFlagSet(&cfg).Parse(args)

	cfg.ServiceName = orDefault(cfg.ServiceName, usecase.DefaultServiceName)
	cfg.ServiceVersion = orDefault(cfg.ServiceVersion, usecase.DefaultServiceVersion)
	cfg.PublicBaseURL = orDefault(cfg.PublicBaseURL, usecase.DefaultPublicBaseURL)
	cfg.ServerURL = orDefault(cfg.ServerURL, usecase.DefaultServerURL)
	cfg.DistDir = orDefault(cfg.DistDir, usecase.DefaultDistDir)
	if abs, absErr := filepath.Abs(cfg.DistDir); absErr == nil {
		cfg.DistDir = abs
	}

	if getenv != nil {
		cfg.SecretToken = getenv(EnvSecretToken)
		cfg.APIKey = getenv(EnvAPIKey)
	}

	return cfg, err
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Run uploads every sourcemap described by cfg. Progress goes to out, failure
// details to errOut. The returned error, if any, is an *ExitError.
func Run(ctx context.Context, cfg usecase.Config, out, errOut io.Writer) error {
	var id pkguid.NumberID
	if sf, err := pkguid.NewSnowflake(); err != nil {
		slog.WarnContext(ctx, "batch id generator unavailable", "error", err)
	} else {
		id = sf
	}

	uploader := outbound.NewHTTPUploader(nil, cfg.ServerURL, cfg.Authorization())
	uc := usecase.New(usecase.Dependency{
		Config:   cfg,
		Uploader: uploader,
		ID:       id,
		Out:      out,
		ErrOut:   errOut,
	})

	slog.InfoContext(ctx, "uploading sourcemaps",
		"dist", cfg.DistDir,
		"endpoint", uploader.Endpoint(),
		"authorized", cfg.Authorization() != "",
	)

	report, err := uc.Run(ctx)
	switch {
	case errors.Is(err, entity.ErrDirectoryNotFound):
		return &ExitError{Code: ExitMissingDir, Err: err, Reported: true}
	case err != nil:
		return &ExitError{Code: exitUnexpectedFail, Err: err}
	}

	if cfg.Strict && report.Failed() > 0 {
		return &ExitError{
			Code: ExitUploadsFailed,
			Err:  fmt.Errorf("%d of %d sourcemap uploads failed", report.Failed(), len(report.Results)),
		}
	}

	return nil
}
