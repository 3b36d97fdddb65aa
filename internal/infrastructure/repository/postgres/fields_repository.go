package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

// FieldsRepository stores one extracted metadata record per document.
type FieldsRepository struct {
	db *sql.DB
}

func NewFieldsRepository(db *sql.DB) *FieldsRepository {
	return &FieldsRepository{db: db}
}

func (r *FieldsRepository) Replace(ctx context.Context, record domain.FieldsRecord) error {
	values := record.Values
	if values == nil {
		values = map[string]any{}
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "marshal field values", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "begin fields tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
DELETE FROM extracted_fields
WHERE tenant_id = $1 AND document_id = $2
`, record.TenantID, record.DocumentID); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "delete extracted fields", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO extracted_fields (tenant_id, document_id, document_type, field_values, created_at)
VALUES ($1,$2,$3,$4,$5)
`, record.TenantID, record.DocumentID, string(record.DocumentType), valuesJSON, time.Now().UTC()); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "insert extracted fields", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "commit extracted fields", err)
	}
	return nil
}

func (r *FieldsRepository) Get(ctx context.Context, tenantID, documentID string) (*domain.FieldsRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_id, tenant_id, document_type, field_values
FROM extracted_fields
WHERE tenant_id = $1 AND document_id = $2
`, tenantID, documentID)

	record, err := scanFieldsRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get extracted fields", fmt.Errorf("document_id=%s", documentID))
		}
		return nil, fmt.Errorf("scan extracted fields: %w", err)
	}
	return &record, nil
}

func (r *FieldsRepository) ListByType(ctx context.Context, tenantID string, docType domain.DocumentType, limit int) ([]domain.FieldsRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `
SELECT document_id, tenant_id, document_type, field_values
FROM extracted_fields
WHERE tenant_id = $1
`
	args := []any{tenantID}
	if docType != "" {
		query += "AND document_type = $2\nORDER BY created_at DESC\nLIMIT $3"
		args = append(args, string(docType), limit)
	} else {
		query += "ORDER BY created_at DESC\nLIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list extracted fields: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FieldsRecord, 0)
	for rows.Next() {
		record, err := scanFieldsRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extracted fields: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extracted fields: %w", err)
	}
	return out, nil
}

func scanFieldsRecord(row rowScanner) (domain.FieldsRecord, error) {
	var (
		record  domain.FieldsRecord
		docType string
		raw     []byte
	)
	if err := row.Scan(&record.DocumentID, &record.TenantID, &docType, &raw); err != nil {
		return domain.FieldsRecord{}, err
	}
	record.DocumentType = domain.DocumentType(docType)
	if err := json.Unmarshal(raw, &record.Values); err != nil {
		return domain.FieldsRecord{}, fmt.Errorf("unmarshal field values: %w", err)
	}
	return record, nil
}
