package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(context.Background(), Options{APIKey: "test-key", Model: "gemini-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestGenerateReadsTextAndUsage(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": " presupuesto "}]}}],
			"usageMetadata": {"promptTokenCount": 120, "candidatesTokenCount": 2},
			"modelVersion": "gemini-test-001"
		}`))
	})

	gen, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "clasifica", MaxOutputTokens: 10, JSON: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "presupuesto" || gen.PromptTokens != 120 || gen.OutputTokens != 2 || gen.Model != "gemini-test-001" {
		t.Fatalf("unexpected generation %+v", gen)
	}
	cfg, _ := body["generationConfig"].(map[string]any)
	if cfg["responseMimeType"] != "application/json" || cfg["maxOutputTokens"] != 10.0 {
		t.Fatalf("unexpected generation config %+v", cfg)
	}
}

func TestGenerateClassifiesRateLimitAsTemporary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "x"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Options{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
