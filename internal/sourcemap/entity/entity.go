package entity

import (
	"errors"
	"fmt"
	"time"
)

// ErrDirectoryNotFound is returned when the dist directory is missing or is
// not a directory. It aborts the whole run.
var ErrDirectoryNotFound = errors.New("dist directory not found")

// Record describes one sourcemap to register.
type Record struct {
	MapFilePath    string
	RelativePath   string
	BundleFilepath string
	ServiceName    string
	ServiceVersion string
}

// Result is the outcome of one upload attempt.
type Result struct {
	Record     Record
	OK         bool
	StatusCode int
	Body       string
	Err        error
	Duration   time.Duration
}

// Report summarizes one uploader run.
type Report struct {
	BatchID    int64
	DistDir    string
	Discovered int
	Results    []Result
}

// Failed returns how many uploads did not succeed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK {
			n++
		}
	}
	return n
}

// UploadError is a per-file failure. StatusCode is zero when the request never
// got a response.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload rejected with status %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "upload failed"
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
