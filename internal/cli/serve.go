package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"repoguard/internal/handlers"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, true)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			dispatcher, err := newDispatcher(cfg, logger)
			if err != nil {
				return err
			}

			router := mux.NewRouter()
			handlers.NewWebhookHandler(dispatcher, logger).Routes(router)

			// Workflows run inside the request, so writes get a generous timeout.
			server := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 2 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info(fmt.Sprintf("repoguard starting on port %s", cfg.Port))
				logger.Info(fmt.Sprintf("Webhook URL: http://localhost:%s/repo/event_callback", cfg.Port))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err, ok := <-serveErr:
				if ok {
					return fmt.Errorf("server failed to start: %w", err)
				}
				return nil
			case <-quit:
			}

			logger.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			logger.Info("Server gracefully stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Override PORT")
	return cmd
}
