package pkgtelemetry

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Transport is an http.RoundTripper that records an external span for every
// request and propagates the trace header to the configured origins only.
type Transport struct {
	sink    Sink
	origins map[string]struct{}
	base    http.RoundTripper
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(sink Sink, origins []string, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if sink == nil {
		sink = Noop{}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if norm := normalizeOrigin(o); norm != "" {
			allowed[norm] = struct{}{}
		}
	}

	return &Transport{sink: sink, origins: allowed, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.sink.StartSpan(req.Context(), req.Method+" "+req.URL.Host, TypeExternal)
	defer span.End()

	span.SetLabel("http.method", req.Method)
	span.SetLabel("http.url", req.URL.Redacted())

	if t.propagates(req.URL) {
		req = req.Clone(ctx)
		t.sink.Inject(ctx, req.Header)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetLabel("http.status_code", strconv.Itoa(resp.StatusCode))
	return resp, nil
}

func (t *Transport) propagates(u *url.URL) bool {
	_, ok := t.origins[normalizeOrigin(u.Scheme+"://"+u.Host)]
	return ok
}

func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "" && u.Scheme == "http":
		port = "80"
	case port == "" && u.Scheme == "https":
		port = "443"
	}

	return strings.ToLower(u.Scheme) + "://" + host + ":" + port
}
