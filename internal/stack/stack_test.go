package stack

import (
	"testing"

	"github.com/Veraticus/ftir-stack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSortsAndOffsets(t *testing.T) {
	ascending := model.Spectrum{
		Label: "a.csv",
		Points: []model.Point{
			{Wavenumber: 400, Transmittance: 0.1},
			{Wavenumber: 500, Transmittance: 0.2},
			{Wavenumber: 600, Transmittance: 0.3},
		},
	}
	descending := model.Spectrum{
		Label: "b.csv",
		Points: []model.Point{
			{Wavenumber: 900, Transmittance: 0.9},
			{Wavenumber: 800, Transmittance: 0.8},
		},
	}

	stacks := Normalize([]model.Spectrum{ascending, descending, ascending}, 0.25)
	require.Len(t, stacks, 3)

	assert.Equal(t, []float64{600, 500, 400}, stacks[0].Wavenumbers())
	assert.Equal(t, []float64{0.3, 0.2, 0.1}, stacks[0].Transmittances())
	assert.Equal(t, []float64{900, 800}, stacks[1].Wavenumbers())

	for i, s := range stacks {
		assert.Equal(t, i, s.Index)
		assert.InDelta(t, float64(i)*0.25, s.Offset, 1e-12)
	}
	assert.Equal(t, "b.csv", stacks[1].Label)

	// Input is untouched.
	assert.Equal(t, 400.0, ascending.Points[0].Wavenumber)
}

func TestSortDescendingIsStable(t *testing.T) {
	points := []model.Point{
		{Wavenumber: 500, Transmittance: 0.1},
		{Wavenumber: 700, Transmittance: 0.2},
		{Wavenumber: 500, Transmittance: 0.3},
	}

	sorted := SortDescending(points)
	assert.Equal(t, []model.Point{
		{Wavenumber: 700, Transmittance: 0.2},
		{Wavenumber: 500, Transmittance: 0.1},
		{Wavenumber: 500, Transmittance: 0.3},
	}, sorted)
}

func TestShiftedKeepsRawValues(t *testing.T) {
	s := Normalize([]model.Spectrum{{}, {
		Points: []model.Point{{Wavenumber: 2, Transmittance: 0.5}, {Wavenumber: 1, Transmittance: 0.25}},
	}}, 0.5)[1]

	assert.InDeltaSlice(t, []float64{1.0, 0.75}, Shifted(s), 1e-12)
	assert.Equal(t, []float64{0.5, 0.25}, s.Transmittances())
}
