package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

type ingestFake struct {
	err  error
	last ports.UploadRequest
	body string
}

func (f *ingestFake) Upload(_ context.Context, req ports.UploadRequest) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	f.last = req
	f.body = string(raw)
	now := time.Now().UTC()
	return &domain.Document{
		ID:               "doc-1",
		TenantID:         req.TenantID,
		Filename:         req.Filename,
		SizeBytes:        int64(len(raw)),
		ProcessingLevel:  req.Level,
		ExtractionStatus: domain.StagePending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

type docsFake struct {
	err        error
	lastTenant string
}

func (f *docsFake) GetByID(_ context.Context, tenantID, id string) (*domain.Document, error) {
	f.lastTenant = tenantID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, TenantID: tenantID, Filename: "a.pdf", ExtractionStatus: domain.StageCompleted}, nil
}

type processorFake struct {
	err       error
	lastLevel domain.ProcessingLevel
}

func (f *processorFake) ProcessByID(_ context.Context, tenantID, documentID string, level domain.ProcessingLevel) (*domain.PipelineResult, error) {
	f.lastLevel = level
	if f.err != nil {
		return nil, f.err
	}
	amount := 121.0
	return &domain.PipelineResult{
		DocumentID:     documentID,
		TenantID:       tenantID,
		RequestedLevel: level,
		Success:        true,
		CompletedSteps: []domain.Stage{domain.StageExtraction, domain.StageClassification, domain.StageMetadata},
		Fields:         &domain.FacturaFields{Amount: &amount},
	}, nil
}

type validatorFake struct {
	err  error
	rows []ports.ReportRow
}

func (f *validatorFake) ValidateDocument(_ context.Context, tenantID, documentID string) (*domain.FieldsRecord, domain.ValidationResult, error) {
	if f.err != nil {
		return nil, domain.ValidationResult{}, f.err
	}
	record := &domain.FieldsRecord{DocumentID: documentID, TenantID: tenantID, DocumentType: domain.TypeActa, Values: map[string]any{"summary": "ok"}}
	return record, domain.ValidationResult{DocumentType: domain.TypeActa, Score: 80, Valid: true}, nil
}

func (f *validatorFake) ValidateValues(docType domain.DocumentType, values map[string]any) (domain.ValidationResult, error) {
	if f.err != nil {
		return domain.ValidationResult{}, f.err
	}
	return domain.ValidationResult{DocumentType: docType, Score: float64(len(values)), Valid: true}, nil
}

func (f *validatorFake) ValidationReport(context.Context, string, domain.DocumentType, int) ([]ports.ReportRow, error) {
	return f.rows, f.err
}

type routerFixture struct {
	ingest    *ingestFake
	docs      *docsFake
	processor *processorFake
	validator *validatorFake
	handler   http.Handler
}

func newRouterFixture(cfg config.Config) *routerFixture {
	f := &routerFixture{
		ingest:    &ingestFake{},
		docs:      &docsFake{},
		processor: &processorFake{},
		validator: &validatorFake{},
	}
	f.handler = NewRouter(cfg, Services{
		Ingest:    f.ingest,
		Processor: f.processor,
		Documents: f.docs,
		Validator: f.validator,
	}, nil).Handler()
	return f
}

func defaultTestConfig() config.Config {
	return config.Config{DefaultTenantID: "finca-01", DefaultLevel: 3, APIMaxUploadBytes: 1 << 20}
}
