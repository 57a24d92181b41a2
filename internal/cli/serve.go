package cli

import (
	"os"
	"os/signal"
	"syscall"

	"invoice_recorder/internal/handlers"
	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("serve")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if p, _ := cmd.Flags().GetString("port"); p != "" {
			settings.Port = p
		}

		a, err := newApp(ctx, settings, false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.cfg.S3.EnsureBucket(ctx); err != nil {
			return err
		}

		h := handlers.New(handlers.Handlers{
			Invoices:       a.invoices,
			Importer:       a.importer,
			Records:        a.journal,
			Reports:        a.reports,
			Uploads:        a.cfg.S3,
			Health:         a.cfg,
			Bucket:         a.cfg.S3.Bucket,
			MaxUploadBytes: settings.MaxUploadMB << 20,
		})

		log.Info().Str("port", settings.Port).Msg("listening")
		return server.NewServer(settings.Port, h, a.tokens).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Override SERVER_PORT")
}
