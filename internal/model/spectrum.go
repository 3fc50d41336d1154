// Package model defines the spectral data types shared by the pipeline stages.
package model

// Point is a single sample of a spectrum.
type Point struct {
	Wavenumber    float64 // cm⁻¹
	Transmittance float64 // nominally in [0, 1]
}

// Spectrum is one parsed input file.
type Spectrum struct {
	Source string   // path the spectrum was read from
	Label  string   // display name, the file's base name
	Header []string // column names when the file had a header row
	Points []Point
}

// Wavenumbers returns the independent variable as a slice.
func (s Spectrum) Wavenumbers() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Wavenumber
	}
	return out
}

// Transmittances returns the dependent variable as a slice.
func (s Spectrum) Transmittances() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Transmittance
	}
	return out
}

// StackedSpectrum is a spectrum sorted by descending wavenumber with the
// vertical offset it is drawn at. Points keep their raw transmittance.
type StackedSpectrum struct {
	Spectrum
	Index  int
	Offset float64
}
