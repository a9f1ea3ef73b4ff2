package pkgrouter

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

// resultOf turns a status code into the APM result bucket, e.g. "HTTP 2xx".
func resultOf(status int) string {
	if status < 100 || status > 599 {
		return "HTTP " + strconv.Itoa(status)
	}
	return fmt.Sprintf("HTTP %dxx", status/100)
}

// middlewareTelemetry opens one request transaction named "METHOD route",
// continuing the caller's trace when it sent propagation headers.
func middlewareTelemetry(sink pkgtelemetry.Sink) Middleware {
	if sink == nil {
		sink = pkgtelemetry.Noop{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			ctx := sink.Extract(r.Context(), r.Header)
			ctx, tx := sink.StartTransaction(ctx, r.Method+" "+route, pkgtelemetry.TypeRequest)
			tx.SetLabel("http.method", r.Method)
			tx.SetLabel("http.route", route)

			rec := newStatusRecorder(w)
			defer func() {
				if rvr := recover(); rvr != nil {
					tx.RecordError(fmt.Errorf("panic: %v", rvr))
					tx.SetResult(resultOf(http.StatusInternalServerError))
					tx.End()
					panic(rvr)
				}

				status := rec.Status()
				tx.SetLabel("http.status_code", strconv.Itoa(status))
				tx.SetResult(resultOf(status))
				tx.End()
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}
