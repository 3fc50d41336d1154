// Package discovery finds spectrum files under an input directory.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
)

// Find returns every regular file below root whose extension matches one of
// exts, ignoring case. Results are ordered by their slash-separated path
// relative to root so repeated runs stack curves in the same order. An empty
// result is not an error.
func Find(root string, exts ...string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, common.NewConfigError(config.KeyInputDir, root, "directory does not exist")
	}
	if !info.IsDir() {
		return nil, common.NewConfigError(config.KeyInputDir, root, "not a directory")
	}

	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[strings.ToLower(ext)] = true
	}

	type match struct {
		path string
		key  string
	}
	var matches []match

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !want[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		matches = append(matches, match{path: path, key: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].key < matches[j].key
	})

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = m.path
	}
	return files, nil
}
