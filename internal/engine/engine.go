// Package engine runs the spectrum stacking pipeline: discover, parse,
// stack, detect minima, render and write.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
	"github.com/Veraticus/ftir-stack/internal/discovery"
	"github.com/Veraticus/ftir-stack/internal/model"
	"github.com/Veraticus/ftir-stack/internal/output"
	"github.com/Veraticus/ftir-stack/internal/parser"
	"github.com/Veraticus/ftir-stack/internal/peaks"
	"github.com/Veraticus/ftir-stack/internal/render"
	"github.com/Veraticus/ftir-stack/internal/stack"
)

// Engine runs one batch. It is single-threaded; files are processed in
// discovery order.
type Engine struct {
	parser    SpectrumParser
	annotator Annotator
	renderer  render.Renderer
	writer    ArtifactWriter
	progress  Progress
	detector  peaks.CandidateDetector
	cfg       config.Config
}

// Option customizes an Engine.
type Option func(*Engine)

// WithParser replaces the CSV parser.
func WithParser(p SpectrumParser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithDetector replaces the numeric peak detector.
func WithDetector(d peaks.CandidateDetector) Option {
	return func(e *Engine) { e.detector = d }
}

// WithAnnotator replaces minima detection and selection entirely.
func WithAnnotator(a Annotator) Option {
	return func(e *Engine) { e.annotator = a }
}

// WithRenderer replaces the figure renderer.
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithWriter replaces the artifact writer.
func WithWriter(w ArtifactWriter) Option {
	return func(e *Engine) { e.writer = w }
}

// WithProgress reports per-file progress to p.
func WithProgress(p Progress) Option {
	return func(e *Engine) { e.progress = p }
}

// New creates an engine for cfg. The configuration is validated before any
// component is built.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, progress: noopProgress{}}
	for _, opt := range opts {
		opt(e)
	}

	if e.parser == nil {
		e.parser = parser.NewParser()
	}
	if e.annotator == nil {
		detector, err := peaks.NewMinimaDetector(cfg, e.detector)
		if err != nil {
			return nil, err
		}
		e.annotator = detector
	}
	if e.renderer == nil {
		e.renderer = render.NewPlotRenderer(cfg)
	}
	if e.writer == nil {
		e.writer = output.NewWriter(cfg)
	}

	return e, nil
}

// FileSummary describes one successfully parsed file.
type FileSummary struct {
	Label      string
	Points     int
	Candidates int
	Annotated  int
	Offset     float64
}

// Result describes a completed run.
type Result struct {
	Artifacts output.Artifacts
	Files     []FileSummary
	// Failures are the input files that were skipped.
	Failures    []*common.ParseError
	Discovered  int
	Annotations int
	Duration    time.Duration
}

// FailureErr joins the recovered parse failures, or returns nil.
func (r *Result) FailureErr() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Run executes the pipeline. Files that fail to parse are logged and skipped;
// they are listed in Result.Failures. The run fails if no file is found or
// none can be parsed, or if rendering or writing fails.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	files, err := discovery.Find(e.cfg.InputDir, e.cfg.InputExt)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files found under %s", common.ErrNoInput, e.cfg.InputExt, e.cfg.InputDir)
	}

	mode := model.ModeAuto
	if e.cfg.HasTargets() {
		mode = model.ModeTarget
	}
	common.LogInfo("Processing spectra", common.Fields{
		"input_dir":  e.cfg.InputDir,
		"file_count": len(files),
		"mode":       string(mode),
	})

	result := &Result{Discovered: len(files)}
	spectra, err := e.parseAll(ctx, files, result)
	if err != nil {
		return result, err
	}
	if len(spectra) == 0 {
		return result, fmt.Errorf("%w: none of the %d files under %s could be parsed: %w",
			common.ErrNoInput, len(files), e.cfg.InputDir, result.FailureErr())
	}

	stacks := stack.Normalize(spectra, e.cfg.OffsetStep)
	annotations := make([][]model.Annotation, len(stacks))
	for i, s := range stacks {
		candidates, selected := e.annotator.Annotate(s.Spectrum)
		annotations[i] = selected
		result.Annotations += len(selected)
		result.Files = append(result.Files, FileSummary{
			Label:      s.Label,
			Points:     len(s.Points),
			Candidates: len(candidates),
			Annotated:  len(selected),
			Offset:     s.Offset,
		})
		common.LogDebug("Detected minima", common.Fields{
			"file":       s.Label,
			"candidates": len(candidates),
			"annotated":  len(selected),
		})
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	var figure bytes.Buffer
	if err := e.renderer.Render(&figure, stacks, annotations); err != nil {
		return result, fmt.Errorf("failed to render figure: %w", err)
	}

	artifacts, err := e.writer.Write(figure.Bytes(), output.SummaryRows(stacks, annotations))
	if err != nil {
		return result, err
	}
	result.Artifacts = artifacts
	result.Duration = time.Since(start)

	slog.Info("Saved plot", "path", artifacts.Figure)
	slog.Info("Saved peak summary", "path", artifacts.Summary, "rows", result.Annotations)
	if artifacts.Parquet != "" {
		slog.Info("Saved parquet summary", "path", artifacts.Parquet)
	}

	return result, nil
}

// parseAll parses files one at a time. Parse failures are recorded on result;
// any other error (such as cancellation) stops the run.
func (e *Engine) parseAll(ctx context.Context, files []string, result *Result) ([]model.Spectrum, error) {
	e.progress.Start(len(files))
	defer e.progress.Finish()

	spectra := make([]model.Spectrum, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		spec, err := e.parser.ParseFile(ctx, path)
		e.progress.FileDone(path, err)
		if err != nil {
			var pe *common.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			common.LogWarn("Skipping unreadable spectrum", common.Fields{
				"file":   pe.Path,
				"reason": pe.Reason,
			})
			result.Failures = append(result.Failures, pe)
			continue
		}

		spectra = append(spectra, spec)
	}
	return spectra, nil
}
