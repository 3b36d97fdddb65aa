package ports

import (
	"context"
	"io"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

// DocumentRepository persists and reads document state. Every call is tenant-scoped.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error)
	List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error)
	UpdateStageStatus(ctx context.Context, tenantID, id string, stage domain.Stage, status domain.StageStatus, errMessage string) error
	SaveExtraction(ctx context.Context, tenantID, id string, result domain.ExtractionResult) error
	SaveClassification(ctx context.Context, tenantID, id string, cls domain.ClassificationResult) error
}

// ExtractedFieldsRepository stores the per-type metadata record of a document.
type ExtractedFieldsRepository interface {
	// Replace deletes any previous record for the document and inserts the new one.
	Replace(ctx context.Context, record domain.FieldsRecord) error
	Get(ctx context.Context, tenantID, documentID string) (*domain.FieldsRecord, error)
	ListByType(ctx context.Context, tenantID string, docType domain.DocumentType, limit int) ([]domain.FieldsRecord, error)
}

// ChunkRepository stores text segments produced at the segmentation level.
type ChunkRepository interface {
	ReplaceChunks(ctx context.Context, tenantID, documentID string, chunks []domain.Chunk) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// IngestEvent is the queue payload announcing a stored document.
type IngestEvent struct {
	DocumentID string                 `json:"document_id"`
	TenantID   string                 `json:"tenant_id"`
	Level      domain.ProcessingLevel `json:"level"`
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, event IngestEvent) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, IngestEvent) error) error
}

// Chunker splits text into segments.
type Chunker interface {
	Split(text string) []string
}
