package app

import (
	"context"
	"net/http"
	"os"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgconfig"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkglog"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgrouter"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkguid"
)

const serviceName = "local-backend-api"

type closer struct {
	name string
	fn   func(context.Context) error
}

// App is the demo backend: config, telemetry, router and the enabled modules.
type App struct {
	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	telemetry pkgtelemetry.Sink

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// released in reverse registration order by Stop
	closers []closer
}

// New wires the application. Any failure here is fatal.
func New(ctx context.Context) *App {
	pkglog.InitLogging(serviceName, os.Stdout)

	app := &App{}

	app.initConfig()
	app.initLibraries()
	app.initTelemetry(ctx)
	app.initHTTPServer()
	app.initModules()
	app.addCloser("HTTP Server", app.httpServer.Shutdown)

	return app
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
