// rumdemo drives the client side of the Elastic RUM demo from the command
// line. Run "rumdemo --help" for the actions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkglog"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/rum"
)

func main() {
	pkglog.InitLogging("rumdemo", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rum.NewCommand(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
