package output

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
)

// Artifacts are the paths written by one run.
type Artifacts struct {
	Figure  string
	Summary string
	Parquet string // empty unless the parquet summary is enabled
	Index   int
}

// Writer persists a figure and its summary under the next free suffix.
// Existing files are never replaced.
type Writer struct {
	dir     string
	base    string
	digits  int
	parquet bool
}

// NewWriter creates a writer for the output settings in cfg.
func NewWriter(cfg config.Config) *Writer {
	return &Writer{
		dir:     cfg.OutputDir,
		base:    cfg.FigBasename,
		digits:  cfg.FigDigits,
		parquet: cfg.SummaryParquet,
	}
}

// Extensions lists the artifact extensions this writer produces.
func (w *Writer) Extensions() []string {
	exts := []string{ExtFigure, ExtSummary}
	if w.parquet {
		exts = append(exts, ExtParquet)
	}
	return exts
}

// Write stores figure and rows. All artifacts are created exclusively; if
// one already exists or a write fails, the files created by this call are
// removed and an IOError naming the path is returned.
func (w *Writer) Write(figure []byte, rows []SummaryRow) (Artifacts, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Artifacts{}, &common.IOError{Op: "mkdir", Path: w.dir, Err: err}
	}

	n, err := NextIndex(w.dir, w.base, w.digits, w.Extensions()...)
	if err != nil {
		return Artifacts{}, err
	}

	var summary bytes.Buffer
	if err := WriteSummaryCSV(&summary, rows); err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{
		Index:   n,
		Figure:  w.path(n, ExtFigure),
		Summary: w.path(n, ExtSummary),
	}
	if w.parquet {
		out.Parquet = w.path(n, ExtParquet)
	}

	var created []string
	fail := func(err error) (Artifacts, error) {
		for _, path := range created {
			if rmErr := os.Remove(path); rmErr != nil {
				common.LogError(rmErr, "Failed to remove partial artifact", common.Fields{"path": path})
			}
		}
		return Artifacts{}, err
	}

	if err := createExclusive(out.Figure, bytes.NewReader(figure)); err != nil {
		return fail(err)
	}
	created = append(created, out.Figure)

	if err := createExclusive(out.Summary, &summary); err != nil {
		return fail(err)
	}
	created = append(created, out.Summary)

	if w.parquet {
		var pq bytes.Buffer
		if err := WriteSummaryParquet(&pq, rows); err != nil {
			return fail(&common.IOError{Op: "encode", Path: out.Parquet, Err: err})
		}
		if err := createExclusive(out.Parquet, &pq); err != nil {
			return fail(err)
		}
	}

	return out, nil
}

func (w *Writer) path(n int, ext string) string {
	return filepath.Join(w.dir, ArtifactName(w.base, n, w.digits, ext))
}

// createExclusive writes r to a new file at path. It fails if path exists.
func createExclusive(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &common.IOError{Op: "create", Path: path, Err: errors.New("refusing to overwrite existing file")}
		}
		return &common.IOError{Op: "create", Path: path, Err: err}
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return &common.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return &common.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
