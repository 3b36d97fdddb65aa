package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates every table the pipeline writes to.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	processing_level SMALLINT NOT NULL,
	extraction_status TEXT NOT NULL,
	classification_status TEXT NOT NULL,
	metadata_status TEXT NOT NULL,
	chunking_status TEXT NOT NULL,
	extraction_method TEXT NOT NULL DEFAULT '',
	extraction_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	document_type TEXT NOT NULL DEFAULT '',
	classification_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	classification_method TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_tenant_created ON documents(tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_tenant_hash ON documents(tenant_id, content_hash);

CREATE TABLE IF NOT EXISTS extracted_fields (
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	document_type TEXT NOT NULL,
	field_values JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (tenant_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_extracted_fields_type ON extracted_fields(tenant_id, document_type);

CREATE TABLE IF NOT EXISTS document_chunks (
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (tenant_id, document_id, chunk_index)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, tenant_id, filename, size_bytes, content_hash, mime_type, storage_path, processing_level,
	extraction_status, classification_status, metadata_status, chunking_status,
	extraction_method, extraction_confidence, page_count, document_type, classification_confidence,
	classification_method, error_message, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
`,
		doc.ID, doc.TenantID, doc.Filename, doc.SizeBytes, doc.ContentHash, doc.MimeType, doc.StoragePath,
		int(doc.ProcessingLevel), string(doc.ExtractionStatus), string(doc.ClassificationStatus),
		string(doc.MetadataStatus), string(doc.ChunkingStatus), string(doc.ExtractionMethod),
		doc.ExtractionConfidence, doc.PageCount, string(doc.DocumentType), doc.ClassificationConfidence,
		string(doc.ClassificationMethod), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE tenant_id = $1 AND id = $2
`, tenantID, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2
`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// stageColumns whitelists the status column per stage; the name is interpolated into SQL.
var stageColumns = map[domain.Stage]string{
	domain.StageExtraction:     "extraction_status",
	domain.StageClassification: "classification_status",
	domain.StageMetadata:       "metadata_status",
	domain.StageChunking:       "chunking_status",
}

func (r *DocumentRepository) UpdateStageStatus(ctx context.Context, tenantID, id string, stage domain.Stage, status domain.StageStatus, errMessage string) error {
	column, ok := stageColumns[stage]
	if !ok {
		return domain.WrapError(domain.ErrInvalidInput, "update stage status", fmt.Errorf("unknown stage %q", stage))
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET `+column+` = $3, error_message = $4, updated_at = $5
WHERE tenant_id = $1 AND id = $2
`, tenantID, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "update stage status", err)
	}
	return ensureAffected(res, "update stage status", id)
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, tenantID, id string, result domain.ExtractionResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extraction_method = $3, extraction_confidence = $4, page_count = $5, updated_at = $6
WHERE tenant_id = $1 AND id = $2
`, tenantID, id, string(result.Method), result.Confidence, result.Pages, time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "save extraction", err)
	}
	return ensureAffected(res, "save extraction", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, tenantID, id string, cls domain.ClassificationResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET document_type = $3, classification_confidence = $4, classification_method = $5, updated_at = $6
WHERE tenant_id = $1 AND id = $2
`, tenantID, id, string(cls.Type), cls.Confidence, string(cls.Method), time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "save classification", err)
	}
	return ensureAffected(res, "save classification", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var (
		doc                                        domain.Document
		level                                      int
		extStatus, clsStatus, metaStatus, chStatus string
		method, docType, clsMethod                 string
	)
	err := row.Scan(
		&doc.ID, &doc.TenantID, &doc.Filename, &doc.SizeBytes, &doc.ContentHash, &doc.MimeType, &doc.StoragePath,
		&level, &extStatus, &clsStatus, &metaStatus, &chStatus,
		&method, &doc.ExtractionConfidence, &doc.PageCount, &docType, &doc.ClassificationConfidence,
		&clsMethod, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	doc.ProcessingLevel = domain.ProcessingLevel(level)
	doc.ExtractionStatus = domain.StageStatus(extStatus)
	doc.ClassificationStatus = domain.StageStatus(clsStatus)
	doc.MetadataStatus = domain.StageStatus(metaStatus)
	doc.ChunkingStatus = domain.StageStatus(chStatus)
	doc.ExtractionMethod = domain.ExtractionMethod(method)
	doc.DocumentType = domain.DocumentType(docType)
	doc.ClassificationMethod = domain.ClassificationMethod(clsMethod)
	return doc, nil
}

func ensureAffected(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
