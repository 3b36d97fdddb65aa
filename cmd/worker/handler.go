package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

type runRecorder interface {
	StartRun()
	FinishRun(status string, level domain.ProcessingLevel, duration time.Duration)
	ObserveQueueLag(lag time.Duration)
}

type eventHandler struct {
	processor ports.DocumentProcessor
	documents ports.DocumentReader
	metrics   runRecorder
	timeout   time.Duration
	logger    *slog.Logger
}

func newEventHandler(processor ports.DocumentProcessor, documents ports.DocumentReader, recorder runRecorder, timeout time.Duration, logger *slog.Logger) *eventHandler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &eventHandler{processor: processor, documents: documents, metrics: recorder, timeout: timeout, logger: logger}
}

// Handle runs one ingest event under the per-document deadline. Stage failures are recorded on the
// document and are not returned, so the event is not redelivered for a deterministic failure.
func (h *eventHandler) Handle(ctx context.Context, event ports.IngestEvent) error {
	if doc, err := h.documents.GetByID(ctx, event.TenantID, event.DocumentID); err == nil {
		h.metrics.ObserveQueueLag(time.Since(doc.CreatedAt))
	}

	processCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.metrics.StartRun()
	start := time.Now()
	result, err := h.processor.ProcessByID(processCtx, event.TenantID, event.DocumentID, event.Level)
	status := runStatus(result, err)
	h.metrics.FinishRun(status, event.Level, time.Since(start))

	if err != nil {
		h.logger.Error("document_process_failed",
			slog.String("document_id", event.DocumentID),
			slog.String("tenant_id", event.TenantID),
			slog.String("error", err.Error()),
		)
		return err
	}
	h.logger.Info("document_processed",
		slog.String("document_id", event.DocumentID),
		slog.String("status", status),
		slog.Int("requested_level", int(event.Level)),
		slog.Int("completed_steps", len(result.CompletedSteps)),
	)
	return nil
}

func runStatus(result *domain.PipelineResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result.Success:
		return "success"
	case len(result.CompletedSteps) > 0:
		return "partial"
	default:
		return "error"
	}
}
