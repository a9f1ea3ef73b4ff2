package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkglog"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkguid"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/entity"
)

// Uploader sends one sourcemap to the APM server and returns the response
// status. A non-2xx response is returned as *entity.UploadError.
type Uploader interface {
	Upload(ctx context.Context, rec entity.Record) (int, error)
}

type Validator interface {
	Validate(path string) error
}

type Dependency struct {
	Config    Config
	Uploader  Uploader
	Validator Validator
	ID        pkguid.NumberID
	Out       io.Writer
	ErrOut    io.Writer
}

type Usecase struct {
	cfg       Config
	uploader  Uploader
	validator Validator
	id        pkguid.NumberID
	out       io.Writer
	errOut    io.Writer
}

func New(dep Dependency) *Usecase {
	validator := dep.Validator
	if validator == nil {
		validator = SourcemapValidator{}
	}

	out := dep.Out
	if out == nil {
		out = io.Discard
	}

	errOut := dep.ErrOut
	if errOut == nil {
		errOut = out
	}

	return &Usecase{
		cfg:       dep.Config,
		uploader:  dep.Uploader,
		validator: validator,
		id:        dep.ID,
		out:       out,
		errOut:    errOut,
	}
}

// Record builds the upload record for one discovered file.
func (u *Usecase) Record(mapFilePath string) (entity.Record, error) {
	rel, err := filepath.Rel(u.cfg.DistDir, mapFilePath)
	if err != nil {
		return entity.Record{}, err
	}
	rel = filepath.ToSlash(rel)

	return entity.Record{
		MapFilePath:    mapFilePath,
		RelativePath:   rel,
		BundleFilepath: BundleFilepath(u.cfg.PublicBaseURL, rel),
		ServiceName:    u.cfg.ServiceName,
		ServiceVersion: u.cfg.ServiceVersion,
	}, nil
}

// UploadOne validates (when enabled) and uploads a single sourcemap. Failures
// are reported in the result, never returned, so the batch can go on.
func (u *Usecase) UploadOne(ctx context.Context, mapFilePath string) entity.Result {
	start := time.Now()
	res := u.uploadOne(ctx, mapFilePath)
	res.Duration = time.Since(start)
	return res
}

func (u *Usecase) uploadOne(ctx context.Context, mapFilePath string) entity.Result {
	rec, err := u.Record(mapFilePath)
	if err != nil {
		return entity.Result{Record: entity.Record{MapFilePath: mapFilePath}, Err: &entity.UploadError{Err: err}}
	}

	if u.cfg.Validate {
		if err := u.validator.Validate(mapFilePath); err != nil {
			return entity.Result{Record: rec, Err: &entity.UploadError{Err: err}}
		}
	}

	status, err := u.uploader.Upload(ctx, rec)
	if err != nil {
		var uerr *entity.UploadError
		if !errors.As(err, &uerr) {
			uerr = &entity.UploadError{StatusCode: status, Err: err}
		}
		return entity.Result{Record: rec, StatusCode: status, Body: uerr.Body, Err: uerr}
	}

	return entity.Result{Record: rec, OK: true, StatusCode: status}
}

// Run discovers every sourcemap under the dist dir and uploads them one by
// one, in order, printing progress as it goes.
func (u *Usecase) Run(ctx context.Context) (entity.Report, error) {
	report := entity.Report{DistDir: u.cfg.DistDir}
	if u.id != nil {
		report.BatchID = u.id.Generate()
		ctx = pkglog.SetBatchID(ctx, report.BatchID)
	}

	u.printBanner()

	paths, err := Discover(u.cfg.DistDir)
	if err != nil {
		fmt.Fprintf(u.errOut, "Dist directory not found: %s\n", u.cfg.DistDir)
		slog.ErrorContext(ctx, "sourcemap discovery failed", "dist", u.cfg.DistDir, "error", err)
		return report, err
	}

	report.Discovered = len(paths)
	if len(paths) == 0 {
		fmt.Fprintln(u.errOut, "No .js.map files found.")
		slog.WarnContext(ctx, "no sourcemaps found", "dist", u.cfg.DistDir)
		return report, nil
	}

	fmt.Fprintf(u.out, "Found %d source maps.\n", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := u.UploadOne(ctx, path)
		report.Results = append(report.Results, res)
		u.printResult(res)

		slog.InfoContext(ctx, "sourcemap processed",
			"file", res.Record.RelativePath,
			"bundle_filepath", res.Record.BundleFilepath,
			"ok", res.OK,
			"status", res.StatusCode,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}

	fmt.Fprintf(u.out, "Done: %d uploaded, %d failed.\n", len(report.Results)-report.Failed(), report.Failed())

	return report, nil
}

func (u *Usecase) printBanner() {
	const line = "----------------------------------------"
	fmt.Fprintln(u.out, line)
	fmt.Fprintln(u.out, "Elastic RUM Sourcemap Uploader")
	fmt.Fprintf(u.out, "Service      : %s\n", u.cfg.ServiceName)
	fmt.Fprintf(u.out, "Version      : %s\n", u.cfg.ServiceVersion)
	fmt.Fprintf(u.out, "APM Server   : %s\n", u.cfg.ServerURL)
	fmt.Fprintln(u.out, line)
}

func (u *Usecase) printResult(res entity.Result) {
	if res.OK {
		fmt.Fprintf(u.out, "Uploading %s... OK\n", res.Record.RelativePath)
		return
	}

	fmt.Fprintf(u.out, "Uploading %s... FAIL\n", res.Record.RelativePath)

	var uerr *entity.UploadError
	if errors.As(res.Err, &uerr) && uerr.StatusCode != 0 {
		fmt.Fprintf(u.errOut, " -> Status: %d\n", uerr.StatusCode)
		fmt.Fprintf(u.errOut, " -> Data: %s\n", uerr.Body)
		return
	}
	fmt.Fprintf(u.errOut, " -> Error: %v\n", res.Err)
}
