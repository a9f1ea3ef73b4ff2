package inbound

import (
	"context"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/api/entity"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgrouter"
)

type uc interface {
	Data(ctx context.Context) (entity.Greeting, error)
	Fail(ctx context.Context) error
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/data", end.Data)
	r.GET("/api/error", end.Error)
}
