package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

func TestDocumentsAreTenantScoped(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Create(ctx, &domain.Document{ID: "doc-1", TenantID: "tenant-a"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.GetByID(ctx, "tenant-b", "doc-1"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected other tenant to miss, got %v", err)
	}
	if err := s.UpdateStageStatus(ctx, "tenant-a", "doc-1", domain.StageExtraction, domain.StageCompleted, ""); err != nil {
		t.Fatalf("UpdateStageStatus() error = %v", err)
	}
	doc, _ := s.GetByID(ctx, "tenant-a", "doc-1")
	if doc.ExtractionStatus != domain.StageCompleted {
		t.Fatalf("expected extraction completed, got %s", doc.ExtractionStatus)
	}
}

func TestReplaceFieldsOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Replace(ctx, domain.FieldsRecord{DocumentID: "doc-1", TenantID: "t", DocumentType: domain.TypeFactura, Values: map[string]any{"amount": 1.0}})
	_ = s.Replace(ctx, domain.FieldsRecord{DocumentID: "doc-1", TenantID: "t", DocumentType: domain.TypeAlbaran, Values: map[string]any{}})

	record, err := s.Get(ctx, "t", "doc-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.DocumentType != domain.TypeAlbaran || len(record.Values) != 0 {
		t.Fatalf("expected replaced record, got %+v", record)
	}
	if list, _ := s.ListByType(ctx, "t", domain.TypeFactura, 0); len(list) != 0 {
		t.Fatalf("expected no factura records, got %d", len(list))
	}
}

func TestObjectsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Save(ctx, "t/doc-1.pdf", strings.NewReader("%PDF"))
	rc, err := s.Open(ctx, "t/doc-1.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, _ := io.ReadAll(rc)
	if string(raw) != "%PDF" {
		t.Fatalf("unexpected object %q", raw)
	}
}
