// Package stack orders spectra for display and assigns their vertical offsets.
package stack

import (
	"sort"

	"github.com/Veraticus/ftir-stack/internal/model"
	"gonum.org/v1/gonum/floats"
)

// Normalize returns one StackedSpectrum per input, in input order. Each gets
// its own copy of the points sorted by descending wavenumber (stable, so
// repeated wavenumbers keep file order) and Offset = index * step. The input
// spectra are not modified and transmittance values are left raw.
func Normalize(spectra []model.Spectrum, step float64) []model.StackedSpectrum {
	out := make([]model.StackedSpectrum, len(spectra))
	for i, spec := range spectra {
		sorted := spec
		sorted.Points = SortDescending(spec.Points)
		out[i] = model.StackedSpectrum{
			Spectrum: sorted,
			Index:    i,
			Offset:   float64(i) * step,
		}
	}
	return out
}

// SortDescending returns a copy of points ordered by descending wavenumber.
func SortDescending(points []model.Point) []model.Point {
	sorted := make([]model.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Wavenumber > sorted[j].Wavenumber
	})
	return sorted
}

// Shifted returns the transmittance values of s with its offset added.
func Shifted(s model.StackedSpectrum) []float64 {
	ys := s.Transmittances()
	floats.AddConst(s.Offset, ys)
	return ys
}
