package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

func TestNewProvidersDisabled(t *testing.T) {
	gen, ocr, err := newProviders(context.Background(), config.Config{AIProvider: "none", OCRProvider: "none"}, nil)
	if err != nil {
		t.Fatalf("newProviders() error = %v", err)
	}
	if gen != nil || ocr != nil {
		t.Fatalf("expected no providers, got %T %T", gen, ocr)
	}
}

func TestNewProvidersOllamaSharesClient(t *testing.T) {
	gen, ocr, err := newProviders(context.Background(), config.Config{
		AIProvider:  "ollama",
		OCRProvider: "ollama",
		OllamaURL:   "http://localhost:11434",
		OllamaModel: "llama3.1:8b",
	}, nil)
	if err != nil {
		t.Fatalf("newProviders() error = %v", err)
	}
	if gen == nil || ocr == nil {
		t.Fatalf("expected generator and OCR")
	}
}

func TestNewProvidersRejectsUnknown(t *testing.T) {
	if _, _, err := newProviders(context.Background(), config.Config{AIProvider: "gpt"}, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown AI provider, got %v", err)
	}
	if _, _, err := newProviders(context.Background(), config.Config{AIProvider: "none", OCRProvider: "abbyy"}, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown OCR provider, got %v", err)
	}
}

func TestNewProvidersGeminiRequiresKey(t *testing.T) {
	if _, _, err := newProviders(context.Background(), config.Config{AIProvider: "gemini"}, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestInMemoryAppRunsWithoutInfrastructure(t *testing.T) {
	cfg := config.Config{
		AIProvider:            "none",
		OCRProvider:           "none",
		ClassifierDefaultType: "acta",
		DefaultLevel:          2,
	}
	app, err := New(context.Background(), cfg, Options{InMemory: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	if app.Queue != nil || app.Memory == nil {
		t.Fatalf("in-memory app must have no queue and a memory store")
	}

	doc, err := app.IngestUC.Upload(context.Background(), ports.UploadRequest{
		TenantID: "local",
		Filename: "presupuesto_pintura.txt",
		Body:     strings.NewReader("Presupuesto para pintar la fachada del edificio."),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	res, err := app.ProcessUC.ProcessByID(context.Background(), "local", doc.ID, domain.LevelClassification)
	if err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if !res.Success || res.Classification.Type != domain.TypePresupuesto || res.Classification.Method != domain.ClassifiedByFilename {
		t.Fatalf("unexpected result %+v", res)
	}
}
