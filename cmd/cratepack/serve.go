package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the packing API over HTTP",
		Long: `Serve exposes /api/v1/pack for single solver runs, /api/v1/optimize for
background optimizations polled through /api/v1/jobs/{id}, and /metrics
for Prometheus. Settings come from CRATEPACK_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}

			srv, err := server.New(a.cfg, a.logger, a.inventory)
			if err != nil {
				return err
			}
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
				Handler:      srv.Router(),
				ReadTimeout:  a.cfg.HTTP.ReadTimeout,
				WriteTimeout: a.cfg.HTTP.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting server",
					zap.String("addr", httpSrv.Addr),
					zap.String("environment", a.cfg.Environment))
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
			defer cancel()

			srv.Close()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("graceful shutdown failed", zap.Error(err))
				return httpSrv.Close()
			}
			a.logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides CRATEPACK_HTTP_PORT)")
	return cmd
}
