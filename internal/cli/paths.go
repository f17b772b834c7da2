package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/herblab/specnet/pkg/cache"
	"github.com/herblab/specnet/pkg/pipeline"
)

// cacheDir returns the artifact cache directory, creating nothing.
// Defaults to <user cache dir>/specnet.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "specnet"), nil
}

// openCache opens the file-backed artifact cache, or a null cache when
// disabled.
func openCache(disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	return cache.NewFileCache(dir)
}

// recordsFormat infers the records file format from its extension when the
// --format flag is unset.
func recordsFormat(flag, path string) string {
	if flag != "" {
		return flag
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return pipeline.FormatTOML
	}
	return pipeline.FormatCSV
}
