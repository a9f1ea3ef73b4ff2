package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	application := app.New(ctx)
	err := application.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(shutdownCtx)

	if err != nil {
		slog.Error("http server stopped unexpectedly", "error", err)
		os.Exit(1) //nolint:gocritic // deferred cancel has nothing left to release
	}
}
