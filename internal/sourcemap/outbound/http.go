package outbound

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/entity"
)

const (
	uploadPath       = "/assets/v1/sourcemaps"
	maxResponseBytes = 64 * 1024
)

// HTTPUploader posts sourcemaps to the APM server's sourcemap intake as
// multipart/form-data. The file is streamed from disk, never fully buffered.
type HTTPUploader struct {
	client        *http.Client
	endpoint      string
	authorization string
}

// NewHTTPUploader builds an uploader for serverURL. An empty authorization
// sends no Authorization header. A nil client means a plain http.Client with
// no overall deadline: a large sourcemap on a slow link is only bounded by ctx.
func NewHTTPUploader(client *http.Client, serverURL, authorization string) *HTTPUploader {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPUploader{
		client:        client,
		endpoint:      strings.TrimRight(serverURL, "/") + uploadPath,
		authorization: authorization,
	}
}

// Endpoint is the full intake URL requests are sent to.
func (h *HTTPUploader) Endpoint() string {
	return h.endpoint
}

func (h *HTTPUploader) Upload(ctx context.Context, rec entity.Record) (int, error) {
	file, err := os.Open(rec.MapFilePath)
	if err != nil {
		return 0, &entity.UploadError{Err: err}
	}
	defer file.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writeForm(form, rec, file))
	}()
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, pr)
	if err != nil {
		return 0, &entity.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if h.authorization != "" {
		req.Header.Set("Authorization", h.authorization)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, &entity.UploadError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	//nolint:errcheck // drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &entity.UploadError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.StatusCode, nil
}

// writeForm writes the intake fields, then the sourcemap file part, and
// closes the multipart writer.
func writeForm(form *multipart.Writer, rec entity.Record, src io.Reader) error {
	fields := [][2]string{
		{"service_name", rec.ServiceName},
		{"service_version", rec.ServiceVersion},
		{"bundle_filepath", rec.BundleFilepath},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("sourcemap", filepath.Base(rec.MapFilePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}

	return form.Close()
}
