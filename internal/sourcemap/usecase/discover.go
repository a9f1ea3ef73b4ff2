package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/sourcemap/entity"
)

const sourcemapPattern = "**/*.js.map"

// Discover returns the absolute path of every *.js.map file under distDir, at
// any depth, in lexical order of their relative paths.
func Discover(distDir string) ([]string, error) {
	info, err := os.Stat(distDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", entity.ErrDirectoryNotFound, distDir)
	}

	matches, err := doublestar.Glob(os.DirFS(distDir), sourcemapPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", distDir, err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(distDir, filepath.FromSlash(m)))
	}

	return paths, nil
}

// BundleFilepath is the public URL the browser loads the bundle from: base
// joined with relativePath minus its ".map" suffix, with exactly one slash
// between them.
func BundleFilepath(base, relativePath string) string {
	bundle := strings.TrimSuffix(relativePath, ".map")
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(bundle, "/")
}
