// Package config loads and validates the run configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys. Viper keys are case-insensitive, so these match both
// the .env file entries and the environment variables of the same name.
const (
	KeyInputDir       = "INPUT_DIR"
	KeyInputExt       = "INPUT_EXT"
	KeyOutputDir      = "OUTPUT_DIR"
	KeyOffsetStep     = "OFFSET_STEP"
	KeyPeakProminence = "PEAK_PROMINENCE"
	KeyPeaksPerCurve  = "PEAKS_PER_CURVE"
	KeyTargetGuesses  = "TARGET_GUESSES"
	KeyFigBasename    = "FIG_BASENAME"
	KeyFigDigits      = "FIG_DIGITS"
	KeyFigWidth       = "FIG_WIDTH"
	KeyFigHeight      = "FIG_HEIGHT"
	KeyFigDPI         = "FIG_DPI"
	KeyLabelDecimals  = "LABEL_DECIMALS"
	KeySummaryParquet = "SUMMARY_PARQUET"
)

// BaseOffsetStep is the offset step the label lift is scaled against.
const BaseOffsetStep = 0.175

var targetSeparators = regexp.MustCompile(`[,;\s]+`)

// Config holds the settings for one run. It is built once by Load and passed
// by value; nothing mutates it afterwards.
type Config struct {
	InputDir       string
	InputExt       string
	OutputDir      string
	FigBasename    string
	Targets        []float64
	OffsetStep     float64
	Prominence     float64
	FigWidth       float64 // inches
	FigHeight      float64 // inches
	PeaksPerCurve  int
	FigDigits      int
	FigDPI         int
	LabelDecimals  int
	SummaryParquet bool
}

// DefaultConfig returns a Config with sensible defaults. InputDir has no
// default and must be supplied.
func DefaultConfig() Config {
	return Config{
		InputExt:      ".csv",
		OutputDir:     "results/plots",
		FigBasename:   "ftir_stacked",
		OffsetStep:    BaseOffsetStep,
		Prominence:    0.001,
		FigWidth:      10,
		FigHeight:     6,
		PeaksPerCurve: 5,
		FigDigits:     3,
		FigDPI:        200,
	}
}

// HasTargets reports whether annotations are chosen by target wavenumbers.
func (c Config) HasTargets() bool {
	return len(c.Targets) > 0
}

// LabelLift is the vertical distance between a marker and its text label.
func (c Config) LabelLift() float64 {
	return 0.01 * math.Max(1.0, c.OffsetStep/BaseOffsetStep)
}

// Load builds a validated Config from v. Values not present in v keep their
// defaults. All problems are reported together.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	str := func(key string, dst *string) {
		if raw := strings.TrimSpace(v.GetString(key)); raw != "" {
			*dst = raw
		}
	}
	float := func(key string, dst *float64) {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			return
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, common.NewConfigError(key, raw, "not a number"))
			return
		}
		*dst = f
	}
	integer := func(key string, dst *int) {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, common.NewConfigError(key, raw, "not an integer"))
			return
		}
		*dst = n
	}

	str(KeyInputDir, &cfg.InputDir)
	str(KeyInputExt, &cfg.InputExt)
	str(KeyOutputDir, &cfg.OutputDir)
	str(KeyFigBasename, &cfg.FigBasename)
	float(KeyOffsetStep, &cfg.OffsetStep)
	float(KeyPeakProminence, &cfg.Prominence)
	float(KeyFigWidth, &cfg.FigWidth)
	float(KeyFigHeight, &cfg.FigHeight)
	integer(KeyPeaksPerCurve, &cfg.PeaksPerCurve)
	integer(KeyFigDigits, &cfg.FigDigits)
	integer(KeyFigDPI, &cfg.FigDPI)
	integer(KeyLabelDecimals, &cfg.LabelDecimals)

	if raw := strings.TrimSpace(v.GetString(KeySummaryParquet)); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, common.NewConfigError(KeySummaryParquet, raw, "not a boolean"))
		} else {
			cfg.SummaryParquet = b
		}
	}

	targets, err := ParseTargets(v.GetString(KeyTargetGuesses))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Targets = targets

	cfg.InputDir = ExpandPath(cfg.InputDir)
	cfg.OutputDir = ExpandPath(cfg.OutputDir)
	if !strings.HasPrefix(cfg.InputExt, ".") {
		cfg.InputExt = "." + cfg.InputExt
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// ParseTargets splits a list of target wavenumbers separated by commas,
// semicolons or whitespace. An empty string means no targets.
func ParseTargets(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var targets []float64
	for _, tok := range targetSeparators.Split(raw, -1) {
		if tok == "" {
			continue
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, common.NewConfigError(KeyTargetGuesses, raw,
				fmt.Sprintf("%q is not a wavenumber", tok))
		}
		targets = append(targets, f)
	}
	return targets, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	var errs []error
	invalid := func(key string, value any, reason string) {
		errs = append(errs, common.NewConfigError(key, fmt.Sprint(value), reason))
	}

	if c.InputDir == "" {
		errs = append(errs, common.NewConfigError(KeyInputDir, "", "is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, common.NewConfigError(KeyOutputDir, "", "is required"))
	}
	if !finite(c.OffsetStep) || c.OffsetStep < 0 {
		invalid(KeyOffsetStep, c.OffsetStep, "must be a finite number >= 0")
	}
	if !finite(c.Prominence) || c.Prominence <= 0 {
		invalid(KeyPeakProminence, c.Prominence, "must be greater than 0")
	}
	if c.PeaksPerCurve <= 0 {
		invalid(KeyPeaksPerCurve, c.PeaksPerCurve, "must be a positive integer")
	}
	if c.FigBasename == "" || strings.ContainsAny(c.FigBasename, `/\`) {
		invalid(KeyFigBasename, c.FigBasename, "must be a non-empty file name without separators")
	}
	if c.FigDigits <= 0 || c.FigDigits > 9 {
		invalid(KeyFigDigits, c.FigDigits, "must be between 1 and 9")
	}
	if !finite(c.FigWidth) || c.FigWidth <= 0 {
		invalid(KeyFigWidth, c.FigWidth, "must be greater than 0")
	}
	if !finite(c.FigHeight) || c.FigHeight <= 0 {
		invalid(KeyFigHeight, c.FigHeight, "must be greater than 0")
	}
	if c.FigDPI <= 0 {
		invalid(KeyFigDPI, c.FigDPI, "must be a positive integer")
	}
	if c.LabelDecimals < 0 || c.LabelDecimals > 6 {
		invalid(KeyLabelDecimals, c.LabelDecimals, "must be between 0 and 6")
	}
	if len(c.InputExt) < 2 || !strings.HasPrefix(c.InputExt, ".") {
		invalid(KeyInputExt, c.InputExt, "must be a file extension such as .csv")
	}
	for _, t := range c.Targets {
		if !finite(t) {
			invalid(KeyTargetGuesses, t, "targets must be finite")
			break
		}
	}

	return errors.Join(errs...)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
