package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
	"github.com/Veraticus/ftir-stack/internal/model"
	"github.com/Veraticus/ftir-stack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, inputDir string) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = filepath.Join(t.TempDir(), "results", "plots")
	cfg.Prominence = 0.05
	cfg.PeaksPerCurve = 2
	cfg.FigWidth = 4
	cfg.FigHeight = 3
	cfg.FigDPI = 40
	return cfg
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.NewSpectrumBuilder(t).
		WithDip(1715, 0.5, 15).
		WithDip(2920, 0.5, 15).
		Write(dir, "a_polymer.csv")
	testutil.NewSpectrumBuilder(t).
		WithDip(1600, 0.5, 15).
		WithDip(3400, 0.5, 15).
		WithDip(1050, 0.5, 15).
		WithDecimalComma().
		Write(dir, "b_film.csv")
	testutil.NewSpectrumBuilder(t).
		WithDip(1240, 0.5, 15).
		Descending().
		Write(dir, "nested/c_blend.csv")
	return dir
}

func TestRunWritesArtifacts(t *testing.T) {
	cfg := testConfig(t, fixtureDir(t))

	e, err := New(cfg)
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Discovered)
	assert.Empty(t, result.Failures)
	require.Len(t, result.Files, 3)
	assert.Equal(t, "a_polymer.csv", result.Files[0].Label)
	assert.Equal(t, "b_film.csv", result.Files[1].Label)
	assert.Equal(t, "c_blend.csv", result.Files[2].Label)
	assert.InDelta(t, 0.35, result.Files[2].Offset, 1e-12)

	// Two per curve, except the single-dip spectrum.
	assert.Equal(t, 5, result.Annotations)
	assert.Equal(t, 1, result.Artifacts.Index)
	assert.FileExists(t, result.Artifacts.Figure)
	assert.FileExists(t, result.Artifacts.Summary)

	summary, err := os.ReadFile(result.Artifacts.Summary)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "file,mode,target_cm-1,wavenumber_cm-1,transmittance,prominence", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "a_polymer.csv,auto,,"))
	assert.True(t, strings.HasPrefix(lines[5], "c_blend.csv,auto,,1240,"))
}

func TestRunTwiceIsDeterministic(t *testing.T) {
	cfg := testConfig(t, fixtureDir(t))
	e, err := New(cfg)
	require.NoError(t, err)

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	second, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Artifacts.Index)
	assert.Equal(t, 2, second.Artifacts.Index)
	assert.True(t, strings.HasSuffix(second.Artifacts.Figure, "ftir_stacked_002.png"))

	a, err := os.ReadFile(first.Artifacts.Summary)
	require.NoError(t, err)
	b, err := os.ReadFile(second.Artifacts.Summary)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunWithTargets(t *testing.T) {
	cfg := testConfig(t, fixtureDir(t))
	cfg.Targets = []float64{1710, 2900}

	e, err := New(cfg)
	require.NoError(t, err)
	result, err := e.Run(context.Background())
	require.NoError(t, err)

	// One annotation per target per curve.
	assert.Equal(t, 6, result.Annotations)

	summary, err := os.ReadFile(result.Artifacts.Summary)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "a_polymer.csv,target,1710,1716,")
	assert.Contains(t, string(summary), "a_polymer.csv,target,2900,2920,")
}

func TestRunRecoversFromBadFiles(t *testing.T) {
	dir := fixtureDir(t)
	testutil.WriteFile(t, dir, "d_broken.csv", "this is not,a spectrum\nat,all\n")

	e, err := New(testConfig(t, dir))
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Files, 3)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "d_broken.csv", filepath.Base(result.Failures[0].Path))
	assert.ErrorIs(t, result.FailureErr(), common.ErrParse)
	assert.FileExists(t, result.Artifacts.Figure)
}

func TestRunWithoutInputFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "readme.txt", "nothing here")

	e, err := New(testConfig(t, dir))
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoInput)
	assert.Contains(t, err.Error(), "no .csv files found")
}

func TestRunWithoutUsableInput(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.csv", "header only\n")
	testutil.WriteFile(t, dir, "b.csv", "1,2\n")

	cfg := testConfig(t, dir)
	e, err := New(cfg)
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoInput)
	assert.ErrorIs(t, err, common.ErrParse)
	assert.Len(t, result.Failures, 2)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunRejectsMissingInputDir(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	e, err := New(cfg)
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "INPUT_DIR")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Prominence = 0

	_, err := New(cfg)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	e, err := New(testConfig(t, fixtureDir(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingProgress struct {
	total  int
	done   []string
	failed int
	closed bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) FileDone(path string, err error) {
	p.done = append(p.done, filepath.Base(path))
	if err != nil {
		p.failed++
	}
}
func (p *recordingProgress) Finish() { p.closed = true }

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, []model.StackedSpectrum, [][]model.Annotation) error {
	return errors.New("out of ink")
}

func TestRunReportsProgress(t *testing.T) {
	dir := fixtureDir(t)
	testutil.WriteFile(t, dir, "z_bad.csv", "x\n")

	progress := &recordingProgress{}
	e, err := New(testConfig(t, dir), WithProgress(progress))
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, progress.total)
	assert.Equal(t, []string{"a_polymer.csv", "b_film.csv", "c_blend.csv", "z_bad.csv"}, progress.done)
	assert.Equal(t, 1, progress.failed)
	assert.True(t, progress.closed)
}

func TestRunSurfacesRenderFailure(t *testing.T) {
	cfg := testConfig(t, fixtureDir(t))
	e, err := New(cfg, WithRenderer(failingRenderer{}))
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of ink")
	assert.NoDirExists(t, cfg.OutputDir)
}
