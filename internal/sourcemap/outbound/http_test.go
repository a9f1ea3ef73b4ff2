package outbound

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/entity"
)

type capturedRequest struct {
	method        string
	path          string
	authorization string
	fields        map[string]string
	fileName      string
	fileBody      string
}

func newIntake(t *testing.T, status int, body string) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()

	reqs := make(chan capturedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := capturedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			fields:        map[string]string{},
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		} else {
			for k, v := range r.MultipartForm.Value {
				got.fields[k] = v[0]
			}
			if fh := r.MultipartForm.File["sourcemap"]; len(fh) == 1 {
				got.fileName = fh[0].Filename
				f, err := fh[0].Open()
				if err == nil {
					b, _ := io.ReadAll(f)
					got.fileBody = string(b)
					f.Close()
				}
			}
		}

		reqs <- got
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, reqs
}

func writeMap(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.abc123.js.map")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestUploadSendsMultipartForm(t *testing.T) {
	srv, reqs := newIntake(t, http.StatusAccepted, "{}")
	path := writeMap(t, `{"version":3}`)

	up := NewHTTPUploader(srv.Client(), srv.URL+"/", "Bearer s3cr3t")
	status, err := up.Upload(context.Background(), entity.Record{
		MapFilePath:    path,
		RelativePath:   "assets/app.abc123.js.map",
		BundleFilepath: "http://localhost:4173/assets/app.abc123.js",
		ServiceName:    "local-test-app",
		ServiceVersion: "0.0.1",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if status != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", status)
	}

	got := <-reqs
	if got.method != http.MethodPost || got.path != "/assets/v1/sourcemaps" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.authorization != "Bearer s3cr3t" {
		t.Fatalf("unexpected authorization %q", got.authorization)
	}
	if got.fields["service_name"] != "local-test-app" ||
		got.fields["service_version"] != "0.0.1" ||
		got.fields["bundle_filepath"] != "http://localhost:4173/assets/app.abc123.js" {
		t.Fatalf("unexpected fields: %v", got.fields)
	}
	if got.fileName != "app.abc123.js.map" || got.fileBody != `{"version":3}` {
		t.Fatalf("unexpected file part %q: %q", got.fileName, got.fileBody)
	}
}

func TestNewHTTPUploaderDefaultClientHasNoDeadline(t *testing.T) {
	up := NewHTTPUploader(nil, "http://apm.local:8200/", "")

	if up.client == nil || up.client.Timeout != 0 {
		t.Fatalf("expected default client without timeout, got %+v", up.client)
	}
	if got := up.Endpoint(); got != "http://apm.local:8200/assets/v1/sourcemaps" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}

func TestUploadWithoutCredentialSendsNoAuthorization(t *testing.T) {
	srv, reqs := newIntake(t, http.StatusOK, "")
	path := writeMap(t, `{}`)

	up := NewHTTPUploader(srv.Client(), srv.URL, "")
	if _, err := up.Upload(context.Background(), entity.Record{MapFilePath: path}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if got := <-reqs; got.authorization != "" {
		t.Fatalf("expected no authorization header, got %q", got.authorization)
	}
}

func TestUploadNon2xxReturnsUploadError(t *testing.T) {
	srv, _ := newIntake(t, http.StatusInternalServerError, `{"error":"boom"}`+"\n")
	path := writeMap(t, `{}`)

	up := NewHTTPUploader(srv.Client(), srv.URL, "")
	status, err := up.Upload(context.Background(), entity.Record{MapFilePath: path})

	var uerr *entity.UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *entity.UploadError, got %v", err)
	}
	if status != http.StatusInternalServerError || uerr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d / %d", status, uerr.StatusCode)
	}
	if uerr.Body != `{"error":"boom"}` {
		t.Fatalf("unexpected body %q", uerr.Body)
	}
}

func TestUploadCapsResponseBody(t *testing.T) {
	srv, _ := newIntake(t, http.StatusBadRequest, strings.Repeat("x", maxResponseBytes+100))
	path := writeMap(t, `{}`)

	_, err := NewHTTPUploader(srv.Client(), srv.URL, "").Upload(context.Background(), entity.Record{MapFilePath: path})

	var uerr *entity.UploadError
	if !errors.As(err, &uerr) || len(uerr.Body) != maxResponseBytes {
		t.Fatalf("expected body capped at %d bytes, got %v", maxResponseBytes, err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	up := NewHTTPUploader(nil, "http://127.0.0.1:1", "")
	_, err := up.Upload(context.Background(), entity.Record{MapFilePath: filepath.Join(t.TempDir(), "nope.js.map")})

	var uerr *entity.UploadError
	if !errors.As(err, &uerr) || uerr.StatusCode != 0 || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestUploadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	path := writeMap(t, `{}`)
	_, err := NewHTTPUploader(nil, url, "").Upload(context.Background(), entity.Record{MapFilePath: path})

	var uerr *entity.UploadError
	if !errors.As(err, &uerr) || uerr.StatusCode != 0 || uerr.Err == nil {
		t.Fatalf("expected transport error, got %v", err)
	}
}
