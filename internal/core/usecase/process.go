package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/classify"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/extraction"
	"github.com/kirillkom/fincadocs/internal/core/metadata"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

// TextExtractor is satisfied by *extraction.Service.
type TextExtractor interface {
	Extract(ctx context.Context, in extraction.Input) (domain.ExtractionResult, error)
}

// DocumentClassifier is satisfied by *classify.Classifier.
type DocumentClassifier interface {
	Classify(ctx context.Context, req classify.Request) classify.Outcome
}

// MetadataExtractor is satisfied by *metadata.Extractor.
type MetadataExtractor interface {
	Extract(ctx context.Context, docType domain.DocumentType, filename, text string) (metadata.Outcome, error)
}

// SchemaValidator is satisfied by *validation.Registry.
type SchemaValidator interface {
	Validate(fields domain.ExtractedFields) (domain.ValidationResult, error)
}

// PipelineObserver receives stage outcomes; the worker and api bind it to Prometheus.
type PipelineObserver interface {
	ObserveStage(stage domain.Stage, status domain.StageStatus, duration time.Duration)
	ObserveExtraction(result domain.ExtractionResult)
	ObserveClassification(result domain.ClassificationResult)
	ObserveValidation(result domain.ValidationResult)
	ObserveAIUsage(usage domain.AIUsage)
}

type ProcessDependencies struct {
	Repo    ports.DocumentRepository
	Fields  ports.ExtractedFieldsRepository
	Chunks  ports.ChunkRepository
	Storage ports.ObjectStorage
	Chunker ports.Chunker

	Extractor  TextExtractor
	Classifier DocumentClassifier
	Metadata   MetadataExtractor
	Validator  SchemaValidator

	Observer PipelineObserver
	Logger   *slog.Logger
}

type ProcessDocumentUseCase struct {
	deps   ProcessDependencies
	logger *slog.Logger
}

func NewProcessDocumentUseCase(deps ProcessDependencies) *ProcessDocumentUseCase {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	return &ProcessDocumentUseCase{deps: deps, logger: logger}
}

// run carries the state one invocation threads through its stages.
type run struct {
	doc    *domain.Document
	result *domain.PipelineResult
	data   []byte
	text   string
	class  domain.DocumentType
}

// ProcessByID runs levels 1..level for a stored document. A returned error means the run could
// not start (unknown document, invalid level); stage failures are reported in the result.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, tenantID, documentID string, level domain.ProcessingLevel) (*domain.PipelineResult, error) {
	if !level.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process document", fmt.Errorf("processing level %d out of range 1-4", level))
	}
	doc, err := uc.deps.Repo.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	start := time.Now()
	r := &run{
		doc: doc,
		result: &domain.PipelineResult{
			DocumentID:     doc.ID,
			TenantID:       doc.TenantID,
			RequestedLevel: level,
			CompletedSteps: []domain.Stage{},
		},
	}

	stages := []struct {
		stage domain.Stage
		fn    func(context.Context, *run) error
	}{
		{domain.StageExtraction, uc.extract},
		{domain.StageClassification, uc.classify},
		{domain.StageMetadata, uc.extractMetadata},
		{domain.StageChunking, uc.chunk},
	}
	for i, s := range stages {
		if domain.ProcessingLevel(i+1) > level {
			break
		}
		if !uc.runStage(ctx, r, s.stage, s.fn) {
			break
		}
	}

	r.result.Success = r.result.Reached(level)
	r.result.Duration = time.Since(start)
	uc.deps.Observer.ObserveAIUsage(r.result.Usage)
	uc.logger.Info("pipeline_finished",
		slog.String("document_id", doc.ID),
		slog.String("tenant_id", doc.TenantID),
		slog.Int("requested_level", int(level)),
		slog.Bool("success", r.result.Success),
		slog.Int("ai_calls", r.result.Usage.Calls),
		slog.Int64("duration_ms", r.result.Duration.Milliseconds()),
	)
	return r.result, nil
}

// runStage marks the stage processing, runs fn with panic recovery and records the outcome.
func (uc *ProcessDocumentUseCase) runStage(ctx context.Context, r *run, stage domain.Stage, fn func(context.Context, *run) error) bool {
	start := time.Now()
	err := uc.markStatus(ctx, r.doc, stage, domain.StageProcessing, "")
	if err == nil {
		err = safeStage(ctx, r, stage, fn)
	}
	if err == nil {
		err = uc.markStatus(ctx, r.doc, stage, domain.StageCompleted, "")
	}
	duration := time.Since(start)
	r.result.Timings = append(r.result.Timings, domain.StageTiming{Stage: stage, Duration: duration})

	if err != nil {
		r.result.FailedSteps = append(r.result.FailedSteps, stage)
		r.result.Error = err.Error()
		if markErr := uc.markStatus(ctx, r.doc, stage, domain.StageFailed, err.Error()); markErr != nil {
			uc.logger.Error("stage_status_update_failed",
				slog.String("document_id", r.doc.ID),
				slog.String("stage", string(stage)),
				slog.String("error", markErr.Error()),
			)
		}
		uc.deps.Observer.ObserveStage(stage, domain.StageFailed, duration)
		uc.logger.Warn("stage_failed",
			slog.String("document_id", r.doc.ID),
			slog.String("tenant_id", r.doc.TenantID),
			slog.String("stage", string(stage)),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.String("error_kind", domain.KindName(err)),
			slog.String("error", err.Error()),
		)
		return false
	}

	r.result.CompletedSteps = append(r.result.CompletedSteps, stage)
	uc.deps.Observer.ObserveStage(stage, domain.StageCompleted, duration)
	uc.logger.Info("stage_completed",
		slog.String("document_id", r.doc.ID),
		slog.String("stage", string(stage)),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
	return true
}

func safeStage(ctx context.Context, r *run, stage domain.Stage, fn func(context.Context, *run) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s stage panicked: %v", stage, p)
		}
	}()
	return fn(ctx, r)
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, r *run) error {
	if r.data == nil {
		data, err := uc.readSource(ctx, r.doc)
		if err != nil {
			return domain.WrapError(domain.ErrExtractionFailure, "read source document", err)
		}
		r.data = data
	}

	res, err := uc.deps.Extractor.Extract(ctx, extraction.Input{
		Filename: r.doc.Filename,
		MimeType: r.doc.MimeType,
		Data:     r.data,
	})
	r.result.Extraction = &res
	uc.deps.Observer.ObserveExtraction(res)
	if err != nil {
		return err
	}
	if !res.OK() {
		return domain.WrapError(domain.ErrExtractionFailure, "extract text", errors.New("empty extracted text"))
	}
	r.text = res.Text

	if err := uc.deps.Repo.SaveExtraction(ctx, r.doc.TenantID, r.doc.ID, res); err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	r.doc.ExtractionMethod = res.Method
	r.doc.ExtractionConfidence = res.Confidence
	r.doc.PageCount = res.Pages
	return nil
}

func (uc *ProcessDocumentUseCase) readSource(ctx context.Context, doc *domain.Document) ([]byte, error) {
	rc, err := uc.deps.Storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return data, nil
}

func (uc *ProcessDocumentUseCase) classify(ctx context.Context, r *run) error {
	out := uc.deps.Classifier.Classify(ctx, classify.Request{
		Filename:    r.doc.Filename,
		Text:        r.text,
		ContentHash: r.doc.ContentHash,
	})
	r.result.Usage.Add(out.Usage)
	cls := out.Result
	r.result.Classification = &cls
	if !cls.Type.Valid() {
		return domain.WrapError(domain.ErrClassificationUncertain, "classify document", fmt.Errorf("non-canonical type %q", cls.Type))
	}
	uc.deps.Observer.ObserveClassification(cls)

	if err := uc.deps.Repo.SaveClassification(ctx, r.doc.TenantID, r.doc.ID, cls); err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	r.class = cls.Type
	r.doc.DocumentType = cls.Type
	r.doc.ClassificationConfidence = cls.Confidence
	r.doc.ClassificationMethod = cls.Method
	return nil
}

// extractMetadata persists the record before validating it, so validation never blocks storage.
// An unparsable model answer stores an empty record, replacing any stale one.
func (uc *ProcessDocumentUseCase) extractMetadata(ctx context.Context, r *run) error {
	out, err := uc.deps.Metadata.Extract(ctx, r.class, r.doc.Filename, r.text)
	r.result.Usage.Add(out.Usage)
	if err != nil {
		return fmt.Errorf("extract metadata: %w", err)
	}

	fields := out.Fields
	parsed := fields != nil
	if !parsed {
		fields = metadata.Empty(r.class)
	}
	r.result.Fields = fields

	if err := uc.deps.Fields.Replace(ctx, domain.NewFieldsRecord(r.doc.ID, r.doc.TenantID, fields)); err != nil {
		return fmt.Errorf("persist extracted fields: %w", err)
	}

	validation, err := uc.deps.Validator.Validate(fields)
	if err != nil {
		return fmt.Errorf("validate extracted fields: %w", err)
	}
	r.result.Validation = &validation
	uc.deps.Observer.ObserveValidation(validation)

	if !parsed {
		return domain.WrapError(domain.ErrParseFailure, "extract metadata", errors.New("model answer held no JSON object"))
	}
	if validation.MissingRequired() {
		return domain.WrapError(domain.ErrValidationFailure, "extract metadata",
			fmt.Errorf("missing required fields: %s", strings.Join(validation.MissingFields, ", ")))
	}
	return nil
}

func (uc *ProcessDocumentUseCase) chunk(ctx context.Context, r *run) error {
	parts := uc.deps.Chunker.Split(r.text)
	if len(parts) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	chunks := make([]domain.Chunk, len(parts))
	for i, text := range parts {
		chunks[i] = domain.Chunk{DocumentID: r.doc.ID, TenantID: r.doc.TenantID, Index: i, Text: text}
	}
	if err := uc.deps.Chunks.ReplaceChunks(ctx, r.doc.TenantID, r.doc.ID, chunks); err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}
	r.result.ChunkCount = len(chunks)
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, doc *domain.Document, stage domain.Stage, status domain.StageStatus, errMessage string) error {
	if err := uc.deps.Repo.UpdateStageStatus(ctx, doc.TenantID, doc.ID, stage, status, errMessage); err != nil {
		return fmt.Errorf("set %s status=%s: %w", stage, status, err)
	}
	doc.SetStageStatus(stage, status)
	doc.Error = errMessage
	return nil
}

type noopObserver struct{}

func (noopObserver) ObserveStage(domain.Stage, domain.StageStatus, time.Duration) {}
func (noopObserver) ObserveExtraction(domain.ExtractionResult)                   {}
func (noopObserver) ObserveClassification(domain.ClassificationResult)           {}
func (noopObserver) ObserveValidation(domain.ValidationResult)                   {}
func (noopObserver) ObserveAIUsage(domain.AIUsage)                               {}
