package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"opspulse/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool
var configPath string
var config Config

var rootCmd = &cobra.Command{
	Use:   "opspulse",
	Short: "opspulse is a DevOps toolbelt: resource checks, API fetching, log analysis.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		var err error
		config, err = loadConfig(configPath)
		if err != nil {
			return err
		}

		tel, err := telemetry.SetupFromEnv(cmd.Context(), "opspulse")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
			return nil
		}

		var stopPerfStats context.CancelFunc
		if tel.MeterProvider != nil {
			var perfCtx context.Context
			perfCtx, stopPerfStats = context.WithCancel(cmd.Context())
			telemetry.InstrumentPerfStats(perfCtx)
		}

		cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
			if stopPerfStats != nil {
				stopPerfStats()
			}
			err := tel.Shutdown(cmd.Context())
			if err != nil {
				slog.Warn("failed to shutdown telemetry", "err", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "explicit config file (default: discover opspulse.json5 upward from cwd)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fatal prints a diagnostic naming the cause and exits non-zero. The
// exit code is the one durable contract these commands expose.
func fatal(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}
