package pkgrouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

// middlewareRecoverer turns a handler panic into a captured error and a 500
// {"error":"Internal server error"} response. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func middlewareRecoverer(sink pkgtelemetry.Sink) Middleware {
	if sink == nil {
		sink = pkgtelemetry.Noop{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				//nolint:err113,errorlint // sentinel panic value
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				err := fmt.Errorf("panic: %v", rvr)
				slog.ErrorContext(r.Context(), "panic on the server",
					"error", err,
					"stack", internalFrames(debug.Stack()),
				)
				sink.CaptureError(r.Context(), err)

				writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// internalFrames keeps the "internal/...go:line" locations of a stack dump.
func internalFrames(stack []byte) []string {
	var frames []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, "/internal/")
		if idx == -1 || !strings.Contains(line, ".go:") {
			continue
		}
		loc := line[idx+1:]
		if sp := strings.IndexByte(loc, ' '); sp != -1 {
			loc = loc[:sp]
		}
		frames = append(frames, loc)
	}
	return frames
}
