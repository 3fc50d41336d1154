package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrumBuilderCSV(t *testing.T) {
	csv := NewSpectrumBuilder(t).
		WithRange(1000, 1008, 4).
		WithBaseline(0.9).
		WithDip(1004, 0.5, 0.1).
		CSV()

	assert.Equal(t, "wavenumber,transmittance\n"+
		"1000.0,0.900000\n"+
		"1004.0,0.400000\n"+
		"1008.0,0.900000\n", csv)
}

func TestSpectrumBuilderDecimalCommaDescending(t *testing.T) {
	csv := NewSpectrumBuilder(t).
		WithRange(1000, 1004, 4).
		WithDecimalComma().
		WithoutHeader().
		Descending().
		CSV()

	assert.Equal(t, "1004,0;0,950000\n1000,0;0,950000\n", csv)
}

func TestSpectrumBuilderWrite(t *testing.T) {
	dir := t.TempDir()
	path := NewSpectrumBuilder(t).Write(dir, "nested/a.csv")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 902)

	raw := WriteFile(t, dir, "bad.csv", "x\n")
	data, err = os.ReadFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}
