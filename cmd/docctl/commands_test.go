package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/config"
)

func offlineConfig() config.Config {
	return config.Config{
		AIProvider:            "none",
		OCRProvider:           "none",
		ClassifierDefaultType: "comunicado",
		DefaultLevel:          2,
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(offlineConfig)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestSchemasListsEveryType(t *testing.T) {
	out, err := runCommand(t, "schemas")
	if err != nil {
		t.Fatalf("schemas error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 7 {
		t.Fatalf("expected 7 schema lines, got %d:\n%s", len(lines), out)
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "acta.json", `{"document_date": "2024-03-15"}`)
	out, err := runCommand(t, "validate", "acta", path)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	var res struct {
		DocumentType  string   `json:"document_type"`
		Valid         bool     `json:"valid"`
		MissingFields []string `json:"missing_fields"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.DocumentType != "acta" || res.Valid || len(res.MissingFields) == 0 {
		t.Fatalf("unexpected validation output %+v", res)
	}
}

func TestValidateCommandRejectsUnknownType(t *testing.T) {
	path := writeFile(t, "x.json", `{}`)
	if _, err := runCommand(t, "validate", "recibo", path); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestExtractCommandOnTextFile(t *testing.T) {
	path := writeFile(t, "aviso.txt", "Se comunica a los propietarios el corte de agua del martes.")
	out, err := runCommand(t, "extract", "--text", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	if !strings.Contains(out, `"method": "native"`) || !strings.Contains(out, "corte de agua") {
		t.Fatalf("unexpected extract output:\n%s", out)
	}
}

func TestProcessCommandClassifiesByFilename(t *testing.T) {
	path := writeFile(t, "albaran_77.txt", "Entrega de material de limpieza para el portal, 12 unidades.")
	out, err := runCommand(t, "process", "--level", "2", path)
	if err != nil {
		t.Fatalf("process error = %v\n%s", err, out)
	}
	if !strings.Contains(out, `"type": "albaran"`) || !strings.Contains(out, `"method": "filename-fallback"`) {
		t.Fatalf("unexpected process output:\n%s", out)
	}
}

func TestProcessCommandReportsStageFailure(t *testing.T) {
	path := writeFile(t, "acta.txt", "ACTA de la junta ordinaria.")
	if _, err := runCommand(t, "process", "--level", "3", path); err == nil || !strings.Contains(err.Error(), "pipeline stopped") {
		t.Fatalf("expected metadata stage failure without an AI provider, got %v", err)
	}
}
