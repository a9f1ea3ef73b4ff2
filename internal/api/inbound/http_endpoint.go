package inbound

import (
	"context"
	"net/http"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Data(ctx context.Context, _ *http.Request) (any, error) {
	greeting, err := h.uc.Data(ctx)
	if err != nil {
		return nil, err
	}

	return DataResponse{
		Message:   greeting.Message,
		Timestamp: greeting.Timestamp.UTC(),
	}, nil
}

func (h *HTTPEndpoint) Error(ctx context.Context, _ *http.Request) (any, error) {
	return nil, h.uc.Fail(ctx)
}
