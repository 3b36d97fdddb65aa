package usecase

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/extraction"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

// contentHashKey fixes the HighwayHash key so equal bytes hash equally across processes.
// The hash identifies content; it is not a MAC.
var contentHashKey = []byte("fincadocs-content-hash-key-v1-32")

type IngestDocumentUseCase struct {
	repo         ports.DocumentRepository
	storage      ports.ObjectStorage
	queue        ports.MessageQueue
	defaultLevel domain.ProcessingLevel
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	defaultLevel domain.ProcessingLevel,
) *IngestDocumentUseCase {
	if !defaultLevel.Valid() {
		defaultLevel = domain.LevelMetadata
	}
	return &IngestDocumentUseCase{
		repo:         repo,
		storage:      storage,
		queue:        queue,
		defaultLevel: defaultLevel,
	}
}

// Upload stores the bytes, records the document with every stage pending and announces it on the queue.
// A nil queue leaves processing to an explicit ProcessByID call.
func (uc *IngestDocumentUseCase) Upload(ctx context.Context, req ports.UploadRequest) (*domain.Document, error) {
	tenantID := strings.TrimSpace(req.TenantID)
	if tenantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("tenant id is required"))
	}
	level := req.Level
	if level == 0 {
		level = uc.defaultLevel
	}
	if !level.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("processing level %d out of range 1-4", level))
	}
	if req.Body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty document"))
	}

	body := bufio.NewReader(req.Body)
	head, err := body.Peek(512)
	if len(head) == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty document"))
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}

	hasher, err := highwayhash.New(contentHashKey)
	if err != nil {
		return nil, fmt.Errorf("init content hash: %w", err)
	}
	counter := &countingWriter{}

	id := uuid.NewString()
	filename := filepath.Base(strings.TrimSpace(req.Filename))
	storageKey := fmt.Sprintf("%s/%s_%s", sanitizeFilename(tenantID), id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, io.TeeReader(body, io.MultiWriter(hasher, counter))); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:                   id,
		TenantID:             tenantID,
		Filename:             filename,
		SizeBytes:            counter.n,
		ContentHash:          hex.EncodeToString(hasher.Sum(nil)),
		MimeType:             extraction.DetectMIME(filename, req.MimeType, head),
		StoragePath:          storageKey,
		ProcessingLevel:      level,
		ExtractionStatus:     domain.StagePending,
		ClassificationStatus: domain.StagePending,
		MetadataStatus:       domain.StagePending,
		ChunkingStatus:       domain.StagePending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if uc.queue != nil {
		event := ports.IngestEvent{DocumentID: doc.ID, TenantID: doc.TenantID, Level: doc.ProcessingLevel}
		if err := uc.queue.PublishDocumentIngested(ctx, event); err != nil {
			return nil, fmt.Errorf("publish ingestion event: %w", err)
		}
	}

	return doc, nil
}

// ContentHash returns the hex HighwayHash-256 used for Document.ContentHash.
func ContentHash(data []byte) string {
	sum := highwayhash.Sum(data, contentHashKey)
	return hex.EncodeToString(sum[:])
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}
