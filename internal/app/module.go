package app

import (
	"log/slog"
	"os"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/api"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.api.enabled") {
		closer, err := api.New(api.Dependency{
			Config: a.config,
			Router: a.router,
			Sink:   a.telemetry,
		})
		if err != nil {
			slog.Error("failed to init module api", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			a.addCloser("API", closer)
		}
	}
}
