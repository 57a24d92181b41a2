package cli

import (
	"context"
	"fmt"
	"os"

	"invoice_recorder/internal/config"
	"invoice_recorder/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var settings config.Settings

var rootCmd = &cobra.Command{
	Use:   "recorder",
	Short: "Invoice recorder: invoices, settlements, imports and monthly reports",
	Long: `recorder keeps invoices with their two payment tracks, derives the
interest-like payment 2 from the payment 1 delay, imports invoices from
CSV/XLSX files and renders monthly CSV/XLSX reports.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.Load()
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			settings.Log.Level = lvl
		}
		return logger.Setup(settings.Log)
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL (trace, debug, info, warn, error)")
}
