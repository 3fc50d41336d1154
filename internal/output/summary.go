package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/ftir-stack/internal/model"
	parquet "github.com/parquet-go/parquet-go"
)

// SummaryHeader is the first line of the summary table.
var SummaryHeader = []string{"file", "mode", "target_cm-1", "wavenumber_cm-1", "transmittance", "prominence"}

// SummaryRow is one annotated minimum in the summary table.
type SummaryRow struct {
	File          string   `parquet:"file"`
	Mode          string   `parquet:"mode"`
	Target        *float64 `parquet:"target_cm1"`
	Wavenumber    float64  `parquet:"wavenumber_cm1"`
	Transmittance float64  `parquet:"transmittance"`
	Prominence    float64  `parquet:"prominence"`
}

// SummaryRows flattens annotations into table rows, in stack order and then
// selection order. Transmittance is the raw value, without the offset.
func SummaryRows(stacks []model.StackedSpectrum, ann [][]model.Annotation) []SummaryRow {
	var rows []SummaryRow
	for i, s := range stacks {
		if i >= len(ann) {
			break
		}
		for _, a := range ann[i] {
			row := SummaryRow{
				File:          s.Label,
				Mode:          string(a.Mode),
				Wavenumber:    a.Wavenumber,
				Transmittance: a.Transmittance,
				Prominence:    a.Prominence,
			}
			if a.HasTarget {
				target := a.Target
				row.Target = &target
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteSummaryCSV writes rows as CSV with SummaryHeader. Floats use the
// shortest exact representation so identical input gives identical bytes.
func WriteSummaryCSV(w io.Writer, rows []SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for _, r := range rows {
		target := ""
		if r.Target != nil {
			target = formatFloat(*r.Target)
		}
		record := []string{
			r.File,
			r.Mode,
			target,
			formatFloat(r.Wavenumber),
			formatFloat(r.Transmittance),
			formatFloat(r.Prominence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryParquet writes rows as a snappy-compressed parquet file.
func WriteSummaryParquet(w io.Writer, rows []SummaryRow) error {
	pw := parquet.NewGenericWriter[SummaryRow](w, parquet.Compression(&parquet.Snappy))
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
