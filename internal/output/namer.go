// Package output names and writes the artifacts of a run.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Veraticus/ftir-stack/internal/common"
)

// Artifact extensions.
const (
	ExtFigure  = ".png"
	ExtSummary = ".csv"
	ExtParquet = ".parquet"
)

// maxIndex bounds the suffix search.
const maxIndex = 1 << 20

// ArtifactName formats base_NNN.ext with n zero-padded to digits. Numbers
// wider than digits are printed in full.
func ArtifactName(base string, n, digits int, ext string) string {
	return fmt.Sprintf("%s_%0*d%s", base, digits, n, ext)
}

// NextIndex returns the smallest positive n for which no artifact
// base_n.ext exists in dir for any of exts. Gaps left by deleted runs are
// reused: with 001 and 003 present, 002 is returned.
func NextIndex(dir, base string, digits int, exts ...string) (int, error) {
	for n := 1; n <= maxIndex; n++ {
		taken, err := indexTaken(dir, base, n, digits, exts)
		if err != nil {
			return 0, err
		}
		if !taken {
			return n, nil
		}
	}
	return 0, &common.IOError{
		Op:   "name",
		Path: filepath.Join(dir, ArtifactName(base, maxIndex, digits, "")),
		Err:  errors.New("no free suffix"),
	}
}

func indexTaken(dir, base string, n, digits int, exts []string) (bool, error) {
	for _, ext := range exts {
		path := filepath.Join(dir, ArtifactName(base, n, digits, ext))
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, &common.IOError{Op: "stat", Path: path, Err: err}
		}
	}
	return false, nil
}
