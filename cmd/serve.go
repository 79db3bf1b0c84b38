package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stakesure/internal/bootstrap"
	"stakesure/internal/bootstrap/logging"
	"stakesure/internal/errs"
	"stakesure/internal/messaging"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the claims HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if app.Config.NATS.URL != "" {
			publisher, err := messaging.NewPublisher(ctx, app.Config.NATS.URL, app.Config.NATS.SubjectPrefix)
			if err != nil {
				return errs.Wrap(err, "start nats publisher")
			}
			publisher.Attach(deps.Bus)
			defer publisher.Close()
			logging.Info(ctx, "nats publisher attached", slog.String("url", app.Config.NATS.URL))
		}

		server := &http.Server{
			Addr:              app.Config.HTTP.Listen,
			Handler:           deps.Server.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("listen", app.Config.HTTP.Listen))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
		case <-ctx.Done():
			logging.Info(ctx, "shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
		}

		logging.Info(ctx, "http server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
