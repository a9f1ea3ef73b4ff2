package pkglog

import "context"

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	batchIDKey
)

// GetCorrelationID returns the correlation ID stored in ctx, or "" when the
// request never went through the correlation middleware.
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey).(string)
	return cid
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey, cid)
}

// GetBatchID returns the upload batch id stored in ctx.
func GetBatchID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(batchIDKey).(int64)
	return id, ok
}

// SetBatchID tags every log line written with ctx with an upload batch id.
func SetBatchID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}
