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

	httpadapter "github.com/kirillkom/fincadocs/internal/adapters/http"
	"github.com/kirillkom/fincadocs/internal/bootstrap"
	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/observability/logging"
	"github.com/kirillkom/fincadocs/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	pipelineMetrics := metrics.NewPipelineMetrics("api", httpMetrics.Registerer())

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger, Observer: pipelineMetrics})
	if err != nil {
		logger.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()
	if err := metrics.RegisterExtractionStats(httpMetrics.Registerer(), "api", app.Pipeline.Extractor.Stats); err != nil {
		logger.Warn("extraction_stats_not_exported", slog.String("error", err.Error()))
	}

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Ingest:    app.IngestUC,
		Processor: app.ProcessUC,
		Documents: app.Repo,
		Validator: app.ValidateUC,
	}, httpMetrics).Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      cfg.ProcessTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", slog.String("error", err.Error()))
	}
}
