package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// ParseProgress shows a progress bar while input files are parsed. It
// satisfies the engine's progress reporter.
type ParseProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	failed int
}

// NewParseProgress creates a progress reporter writing to w.
func NewParseProgress(w io.Writer) *ParseProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ParseProgress{writer: w}
}

// Start creates the bar for total files.
func (p *ParseProgress) Start(total int) {
	p.failed = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reading spectra...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// FileDone advances the bar by one file.
func (p *ParseProgress) FileDone(path string, err error) {
	if p.bar == nil {
		return
	}
	if err != nil {
		p.failed++
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Reading spectra...[reset] %s", filepath.Base(path)))
	if addErr := p.bar.Add(1); addErr != nil {
		slog.Warn("Failed to update progress bar", "error", addErr)
	}
}

// Finish completes the bar.
func (p *ParseProgress) Finish() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.bar = nil
}

// Failed returns how many files failed since the last Start.
func (p *ParseProgress) Failed() int {
	return p.failed
}
