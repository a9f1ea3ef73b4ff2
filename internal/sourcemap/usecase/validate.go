package usecase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-sourcemap/sourcemap"
)

// SourcemapValidator checks that a file is a parseable source map v3.
type SourcemapValidator struct{}

func (SourcemapValidator) Validate(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if _, err := sourcemap.Parse(filepath.Base(path), b); err != nil {
		return fmt.Errorf("invalid sourcemap: %w", err)
	}

	return nil
}
