// Command percentile-server serves the latest percentile artifact over HTTP
// for the map front end.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-percentiles/internal/adapter/httpadapter"
	"github.com/couchcryptid/climate-percentiles/internal/adapter/jsonfile"
	"github.com/couchcryptid/climate-percentiles/internal/config"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewServerMetrics()

	// The artifact is rewritten only by the batch job; serve it from memory between runs.
	source := jsonfile.NewCachedStore(jsonfile.NewStore(cfg.OutputPath), metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, source, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
