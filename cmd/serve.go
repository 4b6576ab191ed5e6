package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/httpapi"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Serve the task engine as a JSON REST API until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := app.config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := setupSignalHandler(cmd.Context())
		defer stop()

		e := httpapi.New(app.tasks, app.session, httpapi.Options{
			DefaultUnits: app.config.Estimation.DefaultUnits,
			RateLimit:    app.config.Server.RateLimit,
			MaxRemaining: app.config.Pomodoro.Longest(),
			Logger:       app.logger,
		})

		errCh := make(chan error, 1)
		go func() {
			app.logger.Info("HTTP server listening", "addr", addr)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}

		app.logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}
