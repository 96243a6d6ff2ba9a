// Package catalog discovers model files under the configured models
// directory and resolves load sources against them.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"synthd/internal/common/fsutil"
	"synthd/pkg/types"
)

// ScanDir walks a directory (non-recursive) for model files in a known
// serialization format and builds catalog entries from the file names.
// ID is the full file name including extension; Path is absolute.
func ScanDir(dir string) ([]types.CatalogModel, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.CatalogModel
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		format := DetectFormat(name)
		if format == types.FormatUnknown {
			continue
		}
		var size int64
		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}
		models = append(models, types.CatalogModel{
			ID:        name,
			Name:      name,
			Path:      filepath.Join(abs, name),
			Format:    format,
			SizeBytes: size,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve maps a load source to a concrete reference. A source matching a
// catalog id resolves to that entry's path; anything else passes through
// verbatim (absolute path, remote reference) for the runtime to interpret.
func Resolve(models []types.CatalogModel, source string) string {
	for _, m := range models {
		if m.ID == source {
			return m.Path
		}
	}
	return source
}
