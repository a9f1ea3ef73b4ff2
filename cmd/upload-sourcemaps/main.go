// upload-sourcemaps registers the sourcemaps of a frontend build with the
// Elastic APM server. See package sourcemap for flags and environment.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkglog"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap"
)

func main() {
	os.Exit(sourcemap.ExitStatus(run(), os.Stderr))
}

func run() error {
	pkglog.InitLogging("upload-sourcemaps", os.Stderr)

	args := os.Args[1:]
	if sourcemap.WantsHelp(args) {
		sourcemap.Usage(os.Stderr)
		return nil
	}

	cfg := sourcemap.ParseArgs(args, os.Getenv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sourcemap.Run(ctx, cfg, os.Stdout, os.Stderr)
}
