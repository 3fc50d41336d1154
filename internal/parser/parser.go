// Package parser reads delimited spectrum files.
package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/model"
)

// Failure reasons reported in ParseError.
const (
	ReasonUnreadable   = "unreadable"
	ReasonNoNumeric    = "no numeric columns"
	ReasonTooFewRows   = "fewer than 2 usable rows"
	defaultSampleLines = 20
)

// Parser turns delimited text into spectra. The field delimiter (comma or
// semicolon) and decimal mark (point or comma) are detected per file.
type Parser struct {
	sampleLines int
}

// Option configures a Parser.
type Option func(*Parser)

// WithSampleLines sets how many leading lines are inspected to detect the
// file layout.
func WithSampleLines(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.sampleLines = n
		}
	}
}

// NewParser creates a new spectrum parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{sampleLines: defaultSampleLines}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout is the detected shape of a file.
type Layout struct {
	Delimiter    rune
	DecimalComma bool
}

func (l Layout) String() string {
	dec := "."
	if l.DecimalComma {
		dec = ","
	}
	return fmt.Sprintf("delimiter=%q decimal=%q", l.Delimiter, dec)
}

// ParseFile opens, parses and closes the file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (model.Spectrum, error) {
	if err := ctx.Err(); err != nil {
		return model.Spectrum{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Spectrum{}, &common.ParseError{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	defer f.Close()

	return p.Parse(ctx, path, f)
}

// Parse reads a spectrum from r. source names the input in errors and becomes
// the spectrum's Source; its base name becomes the Label.
func (p *Parser) Parse(ctx context.Context, source string, r io.Reader) (model.Spectrum, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return model.Spectrum{}, &common.ParseError{Path: source, Reason: ReasonUnreadable, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return model.Spectrum{}, err
	}

	lines := nonEmptyLines(strings.TrimPrefix(string(content), "\ufeff"))
	if len(lines) == 0 {
		return model.Spectrum{}, &common.ParseError{Path: source, Reason: ReasonNoNumeric, Err: fmt.Errorf("file is empty")}
	}

	layout, err := DetectLayout(lines, p.sampleLines)
	if err != nil {
		return model.Spectrum{}, &common.ParseError{Path: source, Reason: ReasonNoNumeric, Err: err}
	}

	spec := model.Spectrum{
		Source: source,
		Label:  filepath.Base(source),
	}
	skipped := 0

	for i, line := range lines {
		fields := splitFields(line, layout.Delimiter)
		if len(fields) < 2 {
			skipped++
			continue
		}

		wn, okWN := parseNumber(fields[0], layout.DecimalComma)
		tr, okTR := parseNumber(fields[1], layout.DecimalComma)
		if !okWN || !okTR {
			if i == 0 {
				spec.Header = []string{strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])}
			} else {
				skipped++
			}
			continue
		}

		spec.Points = append(spec.Points, model.Point{Wavenumber: wn, Transmittance: tr})
	}

	switch len(spec.Points) {
	case 0:
		return model.Spectrum{}, &common.ParseError{Path: source, Reason: ReasonNoNumeric}
	case 1:
		return model.Spectrum{}, &common.ParseError{Path: source, Reason: ReasonTooFewRows}
	}

	slog.Debug("Parsed spectrum",
		"file", spec.Label,
		"points", len(spec.Points),
		"skipped_rows", skipped,
		"header", spec.Header != nil,
		"layout", layout.String())

	return spec, nil
}

// DetectLayout inspects up to n leading lines. A semicolon wins when it
// splits every sampled line into the same number (>= 2) of fields; a comma is
// tried next under the same rule. Failing both, the delimiter whose most
// common field count (>= 2) covers the most lines is used.
func DetectLayout(lines []string, n int) (Layout, error) {
	if n <= 0 || n > len(lines) {
		n = len(lines)
	}
	sample := lines[:n]

	bestCover := 0
	var layout Layout
	for _, delim := range []rune{';', ','} {
		modal, cover := modalFieldCount(sample, delim)
		if modal < 2 {
			continue
		}
		if cover == len(sample) {
			layout.Delimiter = delim
			bestCover = cover
			break
		}
		if cover > bestCover {
			layout.Delimiter = delim
			bestCover = cover
		}
	}
	if bestCover == 0 {
		return Layout{}, fmt.Errorf("fewer than two fields per line")
	}

	for _, line := range sample {
		fields := splitFields(line, layout.Delimiter)
		for _, f := range fields[:min(2, len(fields))] {
			if strings.Contains(f, ",") {
				layout.DecimalComma = true
			}
		}
	}

	return layout, nil
}

func modalFieldCount(lines []string, delim rune) (modal, cover int) {
	counts := make(map[int]int)
	for _, line := range lines {
		counts[len(splitFields(line, delim))]++
	}
	for n, c := range counts {
		if c > cover || (c == cover && n > modal) {
			modal, cover = n, c
		}
	}
	return modal, cover
}

// splitFields splits one line, honoring double quotes.
func splitFields(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	fields, err := r.Read()
	if err != nil {
		return strings.Split(line, string(delim))
	}
	return fields
}

// parseNumber coerces a field to a finite float. With decimalComma set, a
// comma is the decimal mark and any point is a thousands separator.
func parseNumber(field string, decimalComma bool) (float64, bool) {
	raw := strings.TrimSpace(field)
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	if decimalComma && strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
