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

	"github.com/matchpulse/matchpulse/internal/app"
	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/observability"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.NewJSON(cfg.LogLevel)
	logger, closeLogSink, err := observability.InitBetterStackLogger(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("init betterstack logger", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	httpLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(httpLogger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopProfiler, err := observability.InitPyroscope(cfg, httpLogger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofServer, err := observability.StartPprofServer(cfg, httpLogger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger, httpLogger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Broadcast.Start(ctx)
	go runIngestionJobs(ctx, cfg, application, logger)

	go func() {
		logger.Info("http server starting",
			"addr", cfg.HTTPAddr,
			"env", cfg.AppEnv,
			"db_backed", cfg.DBURL != "",
		)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := application.Close(); err != nil {
		logger.Error("close app", "error", err)
	}
	if pprofServer != nil {
		if err := observability.StopPprofServer(pprofServer, httpLogger, shutdownTimeout); err != nil {
			logger.Error("stop pprof server", "error", err)
		}
	}
	if err := stopProfiler(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("shutdown tracing", "error", err)
	}
	if err := closeLogSink(shutdownCtx); err != nil {
		logger.Error("close log sink", "error", err)
	}

	logger.Info("http server stopped")
}

// runIngestionJobs drives the background sync cadence: a full fixtures and
// standings pass on the long interval, live score refreshes on the short one.
// An immediate full pass runs at startup so a fresh deploy serves data before
// the first tick.
func runIngestionJobs(ctx context.Context, cfg config.Config, application *app.App, logger *logging.Logger) {
	runSyncAll := func() {
		result, err := application.Ingestion.SyncAll(ctx)
		if err != nil {
			logger.Warn("scheduled full sync failed", "error", err)
			return
		}
		logger.Info("scheduled full sync finished",
			"season_id", result.SeasonID,
			"tasks", len(result.Tasks),
			"succeeded", result.SuccessCount,
			"skipped", result.SkippedCount,
			"failed", result.FailedCount,
		)
	}

	runSyncAll()

	syncAllTicker := time.NewTicker(cfg.JobSyncAllInterval)
	defer syncAllTicker.Stop()
	liveTicker := time.NewTicker(cfg.JobLiveInterval)
	defer liveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncAllTicker.C:
			runSyncAll()
		case <-liveTicker.C:
			if err := application.Ingestion.SyncLive(ctx); err != nil {
				logger.Warn("scheduled live sync failed", "error", err)
			}
		}
	}
}

func slogLevel(level logging.Level) slog.Level {
	switch {
	case level <= logging.LevelDebug:
		return slog.LevelDebug
	case level == logging.LevelInfo:
		return slog.LevelInfo
	case level == logging.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
