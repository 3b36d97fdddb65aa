package config

import (
	"testing"
	"time"
)

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("EXTRACTION_TIMEOUT", "")
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("OCR_PAGE_TIMEOUT", "")
	t.Setenv("CLASSIFIER_DEFAULT_TYPE", "")
	t.Setenv("CLASSIFIER_MAX_TOKENS", "")
	t.Setenv("OCR_MAX_PAGES", "")

	cfg := Load()
	if cfg.ExtractionTimeout != 60*time.Second {
		t.Fatalf("expected default extraction timeout 60s, got %s", cfg.ExtractionTimeout)
	}
	if cfg.AITimeout != 30*time.Second {
		t.Fatalf("expected default ai timeout 30s, got %s", cfg.AITimeout)
	}
	if cfg.OCRPageTimeout != 45*time.Second {
		t.Fatalf("expected default ocr page timeout 45s, got %s", cfg.OCRPageTimeout)
	}
	if cfg.ClassifierDefaultType != "comunicado" {
		t.Fatalf("expected default type comunicado, got %q", cfg.ClassifierDefaultType)
	}
	if cfg.ClassifierMaxTokens != 10 {
		t.Fatalf("expected classifier token budget 10, got %d", cfg.ClassifierMaxTokens)
	}
	if cfg.OCRMaxPages != 20 {
		t.Fatalf("expected ocr max pages 20, got %d", cfg.OCRMaxPages)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_TIMEOUT", "90")
	t.Setenv("AI_TIMEOUT", "1m30s")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("AI_COST_PER_1K_TOKENS", "0.002")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.ExtractionTimeout != 90*time.Second {
		t.Fatalf("expected bare integer as seconds, got %s", cfg.ExtractionTimeout)
	}
	if cfg.AITimeout != 90*time.Second {
		t.Fatalf("expected parsed duration, got %s", cfg.AITimeout)
	}
	if cfg.AIProvider != "gemini" {
		t.Fatalf("expected lowercased provider, got %q", cfg.AIProvider)
	}
	if cfg.AICostPer1KTokens != 0.002 {
		t.Fatalf("expected cost override, got %v", cfg.AICostPer1KTokens)
	}
	if cfg.ResilienceBreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("OCR_DPI", "high")
	t.Setenv("OCR_PAGE_TIMEOUT", "soon")

	cfg := Load()
	if cfg.OCRDPI != 300 || cfg.OCRPageTimeout != 45*time.Second {
		t.Fatalf("expected fallbacks, got dpi=%d timeout=%s", cfg.OCRDPI, cfg.OCRPageTimeout)
	}
}
