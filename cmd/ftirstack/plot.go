package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/ftir-stack/internal/cli"
	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
	"github.com/Veraticus/ftir-stack/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// plotFlags maps each flag to the configuration key it overrides.
var plotFlags = []struct {
	name  string
	key   string
	usage string
}{
	{"input-dir", config.KeyInputDir, "directory searched recursively for spectra (required)"},
	{"input-ext", config.KeyInputExt, "extension of spectrum files (default .csv)"},
	{"output-dir", config.KeyOutputDir, "directory for the figure and summary (default results/plots)"},
	{"offset-step", config.KeyOffsetStep, "vertical offset between stacked curves (default 0.175)"},
	{"prominence", config.KeyPeakProminence, "minimum prominence of a labeled minimum (default 0.001)"},
	{"peaks-per-curve", config.KeyPeaksPerCurve, "minima labeled per curve without targets (default 5)"},
	{"targets", config.KeyTargetGuesses, "target wavenumbers, e.g. \"1715,2920\""},
	{"basename", config.KeyFigBasename, "artifact base name (default ftir_stacked)"},
	{"digits", config.KeyFigDigits, "zero padding of the artifact number (default 3)"},
	{"width", config.KeyFigWidth, "figure width in inches (default 10)"},
	{"height", config.KeyFigHeight, "figure height in inches (default 6)"},
	{"dpi", config.KeyFigDPI, "figure resolution (default 200)"},
	{"label-decimals", config.KeyLabelDecimals, "decimals in wavenumber labels (default 0)"},
	{"parquet", config.KeySummaryParquet, "also write the summary as parquet (true/false)"},
}

func plotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Stack spectra and label absorption minima",
		Long: `Read every spectrum under INPUT_DIR, stack the curves and write the next
free {basename}_{NNN}.png and .csv pair to OUTPUT_DIR.

Files that cannot be parsed are reported and skipped. The run fails if no
file could be used.`,
		RunE: runPlot,
	}

	// Flags are strings so config.Load parses every source the same way.
	for _, f := range plotFlags {
		cmd.Flags().String(f.name, "", f.usage)
		_ = viper.BindPFlag(f.key, cmd.Flags().Lookup(f.name))
	}
	cmd.Flags().BoolP("quiet", "q", false, "hide the progress bar and summary")

	return cmd
}

func runPlot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	var opts []engine.Option
	if !quiet {
		opts = append(opts, engine.WithProgress(cli.NewParseProgress(cmd.ErrOrStderr())))
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		return err
	}

	result, err := eng.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			for _, pe := range common.ParseErrors(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(pe.Error()))
			}
			return common.NewUserError("nothing to plot", err)
		}
		return fmt.Errorf("plot failed: %w", err)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(result))
	}
	return nil
}
