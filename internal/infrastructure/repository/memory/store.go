// Package memory keeps documents, field records, chunks and stored bytes in process memory.
// docctl uses it to run the pipeline on local files without Postgres or object storage.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type Store struct {
	mu      sync.RWMutex
	docs    map[string]domain.Document
	fields  map[string]domain.FieldsRecord
	chunks  map[string][]domain.Chunk
	objects map[string][]byte
}

func New() *Store {
	return &Store{
		docs:    map[string]domain.Document{},
		fields:  map[string]domain.FieldsRecord{},
		chunks:  map[string][]domain.Chunk{},
		objects: map[string][]byte{},
	}
}

func key(tenantID, id string) string {
	return tenantID + "/" + id
}

func notFound(op, id string) error {
	return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
}

func (s *Store) Create(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(doc.TenantID, doc.ID)
	if _, exists := s.docs[k]; exists {
		return domain.WrapError(domain.ErrPersistenceFailure, "insert document", fmt.Errorf("duplicate id %s", doc.ID))
	}
	s.docs[k] = *doc
	return nil
}

func (s *Store) GetByID(_ context.Context, tenantID, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key(tenantID, id)]
	if !ok {
		return nil, notFound("get document", id)
	}
	return &doc, nil
}

func (s *Store) List(_ context.Context, tenantID string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0)
	for _, doc := range s.docs {
		if doc.TenantID == tenantID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) update(tenantID, id, op string, mutate func(*domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(tenantID, id)
	doc, ok := s.docs[k]
	if !ok {
		return notFound(op, id)
	}
	mutate(&doc)
	doc.UpdatedAt = time.Now().UTC()
	s.docs[k] = doc
	return nil
}

func (s *Store) UpdateStageStatus(_ context.Context, tenantID, id string, stage domain.Stage, status domain.StageStatus, errMessage string) error {
	return s.update(tenantID, id, "update stage status", func(doc *domain.Document) {
		doc.SetStageStatus(stage, status)
		doc.Error = errMessage
	})
}

func (s *Store) SaveExtraction(_ context.Context, tenantID, id string, result domain.ExtractionResult) error {
	return s.update(tenantID, id, "save extraction", func(doc *domain.Document) {
		doc.ExtractionMethod = result.Method
		doc.ExtractionConfidence = result.Confidence
		doc.PageCount = result.Pages
	})
}

func (s *Store) SaveClassification(_ context.Context, tenantID, id string, cls domain.ClassificationResult) error {
	return s.update(tenantID, id, "save classification", func(doc *domain.Document) {
		doc.DocumentType = cls.Type
		doc.ClassificationConfidence = cls.Confidence
		doc.ClassificationMethod = cls.Method
	})
}

func (s *Store) Replace(_ context.Context, record domain.FieldsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]any, len(record.Values))
	for k, v := range record.Values {
		values[k] = v
	}
	record.Values = values
	s.fields[key(record.TenantID, record.DocumentID)] = record
	return nil
}

func (s *Store) Get(_ context.Context, tenantID, documentID string) (*domain.FieldsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.fields[key(tenantID, documentID)]
	if !ok {
		return nil, notFound("get extracted fields", documentID)
	}
	return &record, nil
}

func (s *Store) ListByType(_ context.Context, tenantID string, docType domain.DocumentType, limit int) ([]domain.FieldsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FieldsRecord, 0)
	for _, record := range s.fields {
		if record.TenantID != tenantID || (docType != "" && record.DocumentType != docType) {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ReplaceChunks(_ context.Context, tenantID, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[key(tenantID, documentID)] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// Chunks returns the stored segments of a document.
func (s *Store) Chunks(tenantID, documentID string) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks[key(tenantID, documentID)]...)
}

func (s *Store) Save(_ context.Context, objectKey string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = raw
	return nil
}

func (s *Store) Open(_ context.Context, objectKey string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.objects[objectKey]
	if !ok {
		return nil, notFound("open stored document", objectKey)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}
