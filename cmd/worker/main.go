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

	"github.com/kirillkom/fincadocs/internal/bootstrap"
	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/observability/logging"
	"github.com/kirillkom/fincadocs/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	pipelineMetrics := metrics.NewPipelineMetrics(serviceName, workerMetrics.Registerer())

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger, Observer: pipelineMetrics})
	if err != nil {
		logger.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()
	if err := metrics.RegisterExtractionStats(workerMetrics.Registerer(), serviceName, app.Pipeline.Extractor.Stats); err != nil {
		logger.Warn("extraction_stats_not_exported", slog.String("error", err.Error()))
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	handler := newEventHandler(app.ProcessUC, app.Repo, workerMetrics, cfg.ProcessTimeout, logger)

	logger.Info("worker_subscribed",
		slog.String("subject", cfg.NATSSubject),
		slog.Int("concurrency", cfg.WorkerConcurrency),
	)
	if err := app.Queue.SubscribeDocumentIngested(ctx, handler.Handle); err != nil {
		logger.Error("worker_subscribe_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
