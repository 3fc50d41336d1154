package engine

import (
	"context"

	"github.com/Veraticus/ftir-stack/internal/model"
	"github.com/Veraticus/ftir-stack/internal/output"
)

// SpectrumParser reads one input file.
type SpectrumParser interface {
	ParseFile(ctx context.Context, path string) (model.Spectrum, error)
}

// Annotator finds the minima of a spectrum and selects the ones to label.
type Annotator interface {
	Annotate(spec model.Spectrum) ([]model.CandidateMinimum, []model.Annotation)
}

// ArtifactWriter persists the rendered figure and the summary table.
type ArtifactWriter interface {
	Write(figure []byte, rows []output.SummaryRow) (output.Artifacts, error)
}

// Progress receives per-file parse progress.
type Progress interface {
	Start(total int)
	FileDone(path string, err error)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)              {}
func (noopProgress) FileDone(string, error) {}
func (noopProgress) Finish()                {}
