package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

func TestGenerateSendsOptionsAndReadsUsage(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"model":"qwen2.5","response":" factura \n","prompt_eval_count":321,"eval_count":3}`))
	}))
	defer server.Close()

	gen, err := New(server.URL, "qwen2.5").Generate(context.Background(), ports.GenerateRequest{
		Prompt:          "clasifica",
		Temperature:     0,
		MaxOutputTokens: 10,
		JSON:            true,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "factura" || gen.PromptTokens != 321 || gen.OutputTokens != 3 || gen.Model != "qwen2.5" {
		t.Fatalf("unexpected generation %+v", gen)
	}
	options, _ := payload["options"].(map[string]any)
	if payload["format"] != "json" || payload["stream"] != false || options["num_predict"] != 10.0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestGenerateIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL, "missing").Generate(context.Background(), ports.GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected a missing model to be ErrInvalidInput, got %v", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"acta"}`))
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		BreakerEnabled:      false,
	})
	client := NewWithOptions(server.URL, "m", Options{ResilienceExecutor: exec})
	gen, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Text != "acta" || calls.Load() != 3 {
		t.Fatalf("expected success on third attempt, got %q after %d calls", gen.Text, calls.Load())
	}
}

func TestGenerateWrapsExhaustedRetriesAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 2, RetryInitialBackoff: time.Millisecond, BreakerEnabled: false})
	_, err := NewWithOptions(server.URL, "m", Options{ResilienceExecutor: exec}).Generate(context.Background(), ports.GenerateRequest{Prompt: "x"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestOCRSendsImage(t *testing.T) {
	var payload generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"response":"ACTA DE LA JUNTA"}`))
	}))
	defer server.Close()

	page, err := NewOCR(New(server.URL, "llava")).RecognizePage(context.Background(), ports.OCRPageRequest{
		Image: []byte{0x89, 'P', 'N', 'G'}, MIME: "image/png", Language: "es",
	})
	if err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if page.Text != "ACTA DE LA JUNTA" || len(payload.Images) != 1 || !strings.Contains(payload.Prompt, "es") {
		t.Fatalf("unexpected page=%+v payload=%+v", page, payload)
	}
}

func TestGenerateRejectsPDFAttachment(t *testing.T) {
	_, err := New("http://127.0.0.1:1", "m").Generate(context.Background(), ports.GenerateRequest{
		Prompt: "x", Document: []byte("%PDF"), DocumentMIME: "application/pdf",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	for _, v := range []string{"", "0", "-4", "soon"} {
		if got := parseRetryAfter(v); got != 0 {
			t.Fatalf("parseRetryAfter(%q) = %s, want 0", v, got)
		}
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Hour {
		t.Fatalf("expected a positive wait up to an hour, got %s", got)
	}
}

func TestStatusErrorCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := New(server.URL, "m").Generate(context.Background(), ports.GenerateRequest{Prompt: "x"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.RetryAfter() != 7*time.Second || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected 429 to be temporary, got %v", err)
	}
}
