package pkgrouter

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Header and query keys whose values never reach the logs. The RUM agent and
// the uploader send APM credentials under several of these names.
//
//nolint:gochecknoglobals // lookup table
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"x-api-key":     {},
	"api_key":       {},
	"apikey":        {},
	"secret_token":  {},
	"access_token":  {},
}

func isSensitive(key string) bool {
	_, found := sensitiveKeys[strings.ToLower(key)]
	return found
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if isSensitive(key) {
			result.Set(key, "***")
		}
	}
	return result
}

func maskQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "<unparseable query omitted>"
	}
	for key := range values {
		if isSensitive(key) {
			values.Set(key, "***")
		}
	}
	return values.Encode()
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"query", maskQuery(r.URL.RawQuery),
			"origin", r.Header.Get("Origin"),
			"headers", maskHeaders(r.Header),
		)

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		slog.Log(r.Context(), level, "response sent",
			"method", r.Method,
			"route", route,
			"status", rec.Status(),
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	})
}
