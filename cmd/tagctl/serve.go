package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"media-tags/internal/database"
	"media-tags/internal/handlers"
	"media-tags/internal/logging"
	"media-tags/internal/memory"
	"media-tags/internal/metrics"
	"media-tags/internal/middleware"
	"media-tags/internal/startup"
)

const shutdownTimeout = 30 * time.Second

func (a *app) serveMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Export tag graph metrics over HTTP",
		Long: `Serve Prometheus metrics and health endpoints while periodically
sampling tag graph statistics. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: a.runServeMetrics,
	}
	cmd.Flags().String("addr", ":9090", "Listen address")
	return cmd
}

func (a *app) runServeMetrics(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()
	addr, _ := cmd.Flags().GetString("addr")

	startup.LogStartup(cmd.OutOrStdout(), a.cfg)
	memory.ConfigureFromEnv()
	metrics.InitializeMetrics()
	startup.RecordBuildInfo()

	dbStart := time.Now()
	db, err := database.New(cmd.Context(), a.cfg.DatabaseOptions())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	collector := metrics.NewCollector(db, db, a.cfg.Metrics.CollectInterval)
	collector.Start()
	startup.LogCollectorStarted(a.cfg.Metrics.CollectInterval)

	router := handlers.NewRouter(handlers.New(db))
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logger(middleware.DefaultLoggingConfig())(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	startup.LogServerStarted(startup.ServerConfig{Addr: addr, StartupDuration: time.Since(startTime)})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("metrics server: %w", err)
			logging.Error("Server error: %v", err)
		}
		startup.LogShutdownInitiated("server exit")
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case <-cmd.Context().Done():
		startup.LogShutdownInitiated(cmd.Context().Err().Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("HTTP server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping stats collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Stats collector stopped")

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Error("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
	return runErr
}
