package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSpectra(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for i, name := range []string{"first.csv", "second.csv"} {
		testutil.NewSpectrumBuilder(t).
			WithRange(400, 4000, 20).
			WithBaseline(0.9).
			WithDip(1700+float64(i)*200, 0.5, 0.1).
			Descending().
			Write(dir, name)
	}
	return dir
}

func TestPlotWithFlags(t *testing.T) {
	in := writeSpectra(t)
	out := filepath.Join(t.TempDir(), "plots")

	stdout, err := execute(t, "plot",
		"--input-dir", in,
		"--output-dir", out,
		"--dpi", "30", "--width", "3", "--height", "2",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stacked 2 spectra")
	assert.FileExists(t, filepath.Join(out, "ftir_stacked_001.png"))
	assert.FileExists(t, filepath.Join(out, "ftir_stacked_001.csv"))
}

func TestPlotWithConfigFile(t *testing.T) {
	in := writeSpectra(t)
	out := filepath.Join(t.TempDir(), "plots")
	envFile := filepath.Join(t.TempDir(), "settings.env")
	content := fmt.Sprintf("INPUT_DIR=%s\nOUTPUT_DIR=%s\nFIG_BASENAME=run\nFIG_DIGITS=2\nFIG_DPI=30\nTARGET_GUESSES=1700\n", in, out)
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	_, err := execute(t, "--config", envFile, "plot", "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "run_01.png"))

	summary, err := os.ReadFile(filepath.Join(out, "run_01.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "first.csv,target,1700,1700,0.4,")
	assert.Contains(t, string(summary), "second.csv,target,1700,1900,0.4,")
}

func TestPlotRequiresInputDir(t *testing.T) {
	t.Setenv("INPUT_DIR", "")

	_, err := execute(t, "plot", "--quiet")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, err.Error(), "INPUT_DIR")
}

func TestPlotRejectsBadTargets(t *testing.T) {
	_, err := execute(t, "plot", "--quiet", "--input-dir", t.TempDir(), "--targets", "1700,abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "TARGET_GUESSES")
}

func TestPlotWithEmptyDirectory(t *testing.T) {
	_, err := execute(t, "plot", "--quiet", "--input-dir", t.TempDir(), "--output-dir", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoInput)
	assert.Contains(t, err.Error(), "nothing to plot")
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.env"), "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ftirstack version dev\n", stdout)
}
