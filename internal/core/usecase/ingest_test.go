package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/repository/memory"
)

type ingestQueueFake struct {
	events []ports.IngestEvent
	err    error
}

func (f *ingestQueueFake) PublishDocumentIngested(_ context.Context, event ports.IngestEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *ingestQueueFake) SubscribeDocumentIngested(context.Context, func(context.Context, ports.IngestEvent) error) error {
	return errors.New("not implemented")
}

type failingStorage struct{}

func (failingStorage) Save(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

func (failingStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func TestIngestUploadSuccess(t *testing.T) {
	store := memory.New()
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(store, store, queue, domain.LevelMetadata)

	doc, err := uc.Upload(context.Background(), ports.UploadRequest{
		TenantID: "finca-01",
		Filename: "factura enero.txt",
		Body:     bytes.NewBufferString("FACTURA 2024-001"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.SizeBytes != int64(len("FACTURA 2024-001")) {
		t.Fatalf("expected size %d, got %d", len("FACTURA 2024-001"), doc.SizeBytes)
	}
	if doc.ContentHash != ContentHash([]byte("FACTURA 2024-001")) {
		t.Fatalf("streamed hash %s differs from ContentHash", doc.ContentHash)
	}
	if doc.MimeType != "text/plain" {
		t.Fatalf("expected detected text/plain, got %s", doc.MimeType)
	}
	for _, stage := range []domain.Stage{domain.StageExtraction, domain.StageClassification, domain.StageMetadata, domain.StageChunking} {
		if doc.StageStatus(stage) != domain.StagePending {
			t.Fatalf("expected %s pending, got %s", stage, doc.StageStatus(stage))
		}
	}
	if !strings.HasPrefix(doc.StoragePath, "finca-01/") || !strings.HasSuffix(doc.StoragePath, "_factura_enero.txt") {
		t.Fatalf("unexpected storage key %s", doc.StoragePath)
	}

	stored, err := store.GetByID(context.Background(), "finca-01", doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.ProcessingLevel != domain.LevelMetadata {
		t.Fatalf("expected default level 3, got %d", stored.ProcessingLevel)
	}

	rc, err := store.Open(context.Background(), doc.StoragePath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "FACTURA 2024-001" {
		t.Fatalf("unexpected stored body %q", body)
	}

	if len(queue.events) != 1 {
		t.Fatalf("expected one event, got %d", len(queue.events))
	}
	want := ports.IngestEvent{DocumentID: doc.ID, TenantID: "finca-01", Level: domain.LevelMetadata}
	if queue.events[0] != want {
		t.Fatalf("expected event %+v, got %+v", want, queue.events[0])
	}
}

func TestIngestUploadKeepsRequestedLevel(t *testing.T) {
	store := memory.New()
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(store, store, queue, domain.LevelMetadata)

	doc, err := uc.Upload(context.Background(), ports.UploadRequest{
		TenantID: "finca-01",
		Filename: "acta.txt",
		Level:    domain.LevelSegmentation,
		Body:     strings.NewReader("ACTA DE LA JUNTA"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ProcessingLevel != domain.LevelSegmentation || queue.events[0].Level != domain.LevelSegmentation {
		t.Fatalf("expected level 4 on document and event, got %d/%d", doc.ProcessingLevel, queue.events[0].Level)
	}
}

func TestIngestUploadWithoutQueue(t *testing.T) {
	store := memory.New()
	uc := NewIngestDocumentUseCase(store, store, nil, domain.LevelExtraction)

	if _, err := uc.Upload(context.Background(), ports.UploadRequest{
		TenantID: "finca-01",
		Filename: "nota.txt",
		Body:     strings.NewReader("aviso"),
	}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestIngestUploadRejectsInvalidInput(t *testing.T) {
	store := memory.New()
	uc := NewIngestDocumentUseCase(store, store, &ingestQueueFake{}, domain.LevelMetadata)

	cases := map[string]ports.UploadRequest{
		"missing tenant": {Filename: "a.txt", Body: strings.NewReader("x")},
		"invalid level":  {TenantID: "t", Filename: "a.txt", Level: 7, Body: strings.NewReader("x")},
		"empty body":     {TenantID: "t", Filename: "a.txt", Body: strings.NewReader("")},
		"nil body":       {TenantID: "t", Filename: "a.txt"},
	}
	for name, req := range cases {
		if _, err := uc.Upload(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestIngestUploadStorageError(t *testing.T) {
	store := memory.New()
	uc := NewIngestDocumentUseCase(store, failingStorage{}, &ingestQueueFake{}, domain.LevelMetadata)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{TenantID: "t", Filename: "a.txt", Body: strings.NewReader("x")})
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestIngestUploadQueueError(t *testing.T) {
	store := memory.New()
	queue := &ingestQueueFake{err: errors.New("queue down")}
	uc := NewIngestDocumentUseCase(store, store, queue, domain.LevelMetadata)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{TenantID: "t", Filename: "report.txt", Body: strings.NewReader("hello")})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish ingestion event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"factura 01.pdf": "factura_01.pdf",
		"../../etc/pass": "pass",
		"ñoño.pdf":       "_o_o.pdf",
		"":               "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
