package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpDelivery "github.com/wbscout/wbscout/internal/delivery/http"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP preview server",
	Long: `Serve rendered result pages over HTTP.

Endpoints:
  GET /health                     Health check
  GET /search?q=QUERY&limit=N     Results page for QUERY`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides WBSCOUT_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	service := newSearchService(cfg, nil)
	handler := httpDelivery.NewHandler(service)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Server.Environment).
			Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-cmd.Context().Done():
	}

	logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
