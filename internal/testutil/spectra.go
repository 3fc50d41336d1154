// Package testutil provides test fixtures for spectrum files. It offers a
// fluent builder for synthetic transmittance spectra with Gaussian absorption
// dips, written in any of the CSV layouts the parser accepts.
//
// Example usage:
//
//	path := testutil.NewSpectrumBuilder(t).
//		WithDip(1715, 0.5, 15).
//		WithDecimalComma().
//		Write(dir, "polymer.csv")
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Dip is a Gaussian absorption band.
type Dip struct {
	Center float64
	Depth  float64
	Width  float64
}

// SpectrumBuilder builds synthetic spectrum CSV files.
type SpectrumBuilder struct {
	t            *testing.T
	header       []string
	dips         []Dip
	start        float64
	stop         float64
	step         float64
	baseline     float64
	delimiter    string
	decimalComma bool
	descending   bool
}

// NewSpectrumBuilder returns a builder for a 400 to 4000 cm-1 spectrum
// sampled every 4 cm-1 on a 0.95 baseline, comma separated with a header.
func NewSpectrumBuilder(t *testing.T) *SpectrumBuilder {
	t.Helper()
	return &SpectrumBuilder{
		t:         t,
		header:    []string{"wavenumber", "transmittance"},
		start:     400,
		stop:      4000,
		step:      4,
		baseline:  0.95,
		delimiter: ",",
	}
}

// WithRange sets the sampled wavenumbers.
func (b *SpectrumBuilder) WithRange(start, stop, step float64) *SpectrumBuilder {
	b.start, b.stop, b.step = start, stop, step
	return b
}

// WithBaseline sets the transmittance away from any dip.
func (b *SpectrumBuilder) WithBaseline(baseline float64) *SpectrumBuilder {
	b.baseline = baseline
	return b
}

// WithDip adds an absorption band. A width well below the sampling step
// gives a single-sample spike.
func (b *SpectrumBuilder) WithDip(center, depth, width float64) *SpectrumBuilder {
	b.dips = append(b.dips, Dip{Center: center, Depth: depth, Width: width})
	return b
}

// WithDecimalComma switches to the semicolon separated, decimal comma layout.
func (b *SpectrumBuilder) WithDecimalComma() *SpectrumBuilder {
	b.delimiter = ";"
	b.decimalComma = true
	return b
}

// WithoutHeader drops the header line.
func (b *SpectrumBuilder) WithoutHeader() *SpectrumBuilder {
	b.header = nil
	return b
}

// Descending writes rows from high to low wavenumber.
func (b *SpectrumBuilder) Descending() *SpectrumBuilder {
	b.descending = true
	return b
}

// Transmittance is the synthetic value at wn.
func (b *SpectrumBuilder) Transmittance(wn float64) float64 {
	tr := b.baseline
	for _, d := range b.dips {
		tr -= d.Depth * math.Exp(-math.Pow((wn-d.Center)/d.Width, 2))
	}
	return tr
}

// CSV renders the spectrum.
func (b *SpectrumBuilder) CSV() string {
	var sb strings.Builder
	if len(b.header) > 0 {
		sb.WriteString(strings.Join(b.header, b.delimiter) + "\n")
	}

	n := int(math.Round((b.stop-b.start)/b.step)) + 1
	for i := 0; i < n; i++ {
		k := i
		if b.descending {
			k = n - 1 - i
		}
		wn := b.start + float64(k)*b.step
		sb.WriteString(b.number(wn, 1) + b.delimiter + b.number(b.Transmittance(wn), 6) + "\n")
	}
	return sb.String()
}

// Write saves the spectrum under dir, creating parent directories of name,
// and returns its path.
func (b *SpectrumBuilder) Write(dir, name string) string {
	b.t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(b.CSV()), 0o644); err != nil {
		b.t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

func (b *SpectrumBuilder) number(f float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, f)
	if b.decimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// WriteFile writes raw content under dir, for malformed fixtures.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
