package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"sprite-detector/internal/imageio"
)

// Scan walks dir and returns every decodable sheet, sorted by path.
func Scan(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageio.Supported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
