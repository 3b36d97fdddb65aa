package ports

import (
	"context"
	"io"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

// UploadRequest describes a document being ingested.
type UploadRequest struct {
	TenantID string
	Filename string
	MimeType string
	Level    domain.ProcessingLevel
	Body     io.Reader
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error)
}

// DocumentProcessor runs the progressive pipeline for a stored document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, tenantID, documentID string, level domain.ProcessingLevel) (*domain.PipelineResult, error)
}

// FieldsValidator validates stored or ad-hoc metadata against the per-type schema.
type FieldsValidator interface {
	ValidateDocument(ctx context.Context, tenantID, documentID string) (*domain.FieldsRecord, domain.ValidationResult, error)
	ValidateValues(docType domain.DocumentType, values map[string]any) (domain.ValidationResult, error)
	ValidationReport(ctx context.Context, tenantID string, docType domain.DocumentType, limit int) ([]ReportRow, error)
}

// ReportRow pairs a stored record with its validation outcome.
type ReportRow struct {
	Record     domain.FieldsRecord
	Validation domain.ValidationResult
}
