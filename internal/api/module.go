package api

import (
	"context"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/api/inbound"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/api/usecase"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgconfig"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgrouter"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

type Dependency struct {
	Config pkgconfig.Config
	Router *pkgrouter.Router
	Sink   pkgtelemetry.Sink
}

func New(dep Dependency) (func(context.Context) error, error) {
	delay := usecase.DefaultDelay
	if d := dep.Config.GetDuration("modules.api.delay"); d > 0 {
		delay = d
	}

	uc := usecase.New(usecase.Dependency{
		Sink:  dep.Sink,
		Delay: delay,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil, nil
}
