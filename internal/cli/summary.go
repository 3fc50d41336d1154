package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ftir-stack/internal/engine"
	"github.com/charmbracelet/lipgloss"
)

var summaryColumns = []string{"File", "Points", "Minima", "Labeled", "Offset"}

// RenderSummary renders the outcome of a run as a boxed table followed by
// the skipped files and the written artifacts.
func RenderSummary(result *engine.Result) string {
	if result == nil {
		return ""
	}

	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		rows = append(rows, []string{
			f.Label,
			strconv.Itoa(f.Points),
			strconv.Itoa(f.Candidates),
			strconv.Itoa(f.Annotated),
			fmt.Sprintf("+%.3f", f.Offset),
		})
	}

	sections := []string{renderTable(summaryColumns, rows)}

	if len(result.Failures) > 0 {
		var skipped strings.Builder
		skipped.WriteString(FormatWarning(fmt.Sprintf("Skipped %d of %d files", len(result.Failures), result.Discovered)))
		for _, f := range result.Failures {
			skipped.WriteString("\n  " + SubtleStyle.Render(fmt.Sprintf("%s: %s", f.Path, f.Reason)))
		}
		sections = append(sections, skipped.String())
	}

	written := []string{}
	if result.Artifacts.Figure != "" {
		written = append(written, FormatSuccess("Plot: "+result.Artifacts.Figure))
	}
	if result.Artifacts.Summary != "" {
		written = append(written, FormatSuccess("Peaks: "+result.Artifacts.Summary))
	}
	if result.Artifacts.Parquet != "" {
		written = append(written, FormatSuccess("Parquet: "+result.Artifacts.Parquet))
	}
	if len(written) > 0 {
		sections = append(sections, strings.Join(written, "\n"))
	}

	sections = append(sections, SubtleStyle.Render(fmt.Sprintf("%d minima labeled in %s",
		result.Annotations, result.Duration.Round(time.Millisecond))))

	title := fmt.Sprintf("%s Stacked %d spectra", ChartIcon, len(result.Files))
	return RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, interleave(sections)...))
}

func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}
	lines := []string{TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

// interleave separates sections with a blank line.
func interleave(sections []string) []string {
	out := make([]string, 0, 2*len(sections))
	for i, s := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}
