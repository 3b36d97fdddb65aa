package postgres

import (
	"context"
	"database/sql"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceChunks swaps the document's segments in one transaction.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, tenantID, documentID string, chunks []domain.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "begin chunks tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE tenant_id = $1 AND document_id = $2`, tenantID, documentID); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "delete chunks", err)
	}
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO document_chunks (tenant_id, document_id, chunk_index, content)
VALUES ($1,$2,$3,$4)
`, tenantID, documentID, chunk.Index, chunk.Text); err != nil {
			return domain.WrapError(domain.ErrPersistenceFailure, "insert chunk", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailure, "commit chunks", err)
	}
	return nil
}
