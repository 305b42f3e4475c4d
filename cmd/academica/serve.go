// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/academica/academica/internal/api"
	"github.com/academica/academica/internal/config"
	"github.com/academica/academica/internal/logging"
	"github.com/academica/academica/internal/observability"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server that handles login, user provisioning,
lookup, and deletion, plus an optional metrics/health endpoint.`,
		RunE: runServe,
	}

	// Flag defaults mirror config.Default so an unset flag never overrides
	// a value from the config file with an empty string.
	defaults := config.Default()
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("http-addr", defaults.HTTP.Addr, "API listen address")
	cmd.Flags().String("metrics-addr", defaults.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("academica", version, cfg.Log.Format)

	slog.Info("starting server",
		"http_addr", cfg.HTTP.Addr,
		"log_format", cfg.Log.Format,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	slog.Info("connected to database")

	apiOpts := []api.Option{}

	// Start observability server if configured
	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			return svc.pool.Ping(ctx) == nil
		})
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		apiOpts = append(apiOpts, api.WithMetrics(obsServer.Metrics()))
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	apiServer, err := api.NewServer(svc.auth, svc.directory, apiOpts...)
	if err != nil {
		return stopObservability(obsServer, err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	cmd.Println("Server started")
	slog.Info("server ready", "http_addr", cfg.HTTP.Addr)

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case serveErr := <-errChan:
		return stopObservability(obsServer, serveErr)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("error stopping HTTP server", "error", shutdownErr)
	}

	if obsServer != nil {
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("error stopping observability server", "error", stopErr)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// stopObservability stops the observability server, if any, before returning
// the original error from a failed startup step.
func stopObservability(obsServer *observability.Server, err error) error {
	if obsServer == nil {
		return err
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", stopErr)
	}
	return err
}

// monitorServerErrors cancels the run context when a background server
// reports a fatal error. A closed channel means a graceful stop.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
