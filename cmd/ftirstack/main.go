package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/ftir-stack/internal/cli"
	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyLogLevel  = "log_level"
	keyLogFormat = "log_format"
)

var (
	cfgFile string
	version = "dev"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ftirstack",
		Short: "🌈 Stacked FTIR spectra with labeled absorption minima",
		Long: `ftirstack reads every FTIR spectrum CSV under a directory, stacks the curves
with a vertical offset, labels their absorption minima and writes a numbered
PNG figure plus a CSV summary of the labeled minima.

Settings come from a .env file, the environment, or flags.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file in .env format (default: ./.env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(plotCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx := cli.NewInterruptHandler(os.Stderr).HandleInterrupts(context.Background())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	viper.SetConfigType("env")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
	}

	// Plain variable names, as in the .env file.
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// No .env file is fine; the environment and flags may be enough.
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config file", "path", used)
	}
	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	return common.SetupLogger(os.Stderr, level, viper.GetString(keyLogFormat))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ftirstack version %s\n", version)
		},
	}
}
