package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-tables/internal/api"
)

var staticDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := api.NewApp(&api.Handler{
			Processor: newDriver(cfg),
			Version:   Version,
			StaticDir: staticDir,
			Logger:    log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
			errCh <- app.Listen(cfg.ListenAddr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address")
	serveCmd.Flags().String("pdftotext", "", "Path to the pdftotext binary")
	serveCmd.Flags().StringVar(&staticDir, "static", "", "Folder with web UI files to serve at /")
}
