package cmdrunner

import (
	"os"
	"strings"
	"testing"
)

func TestTempFileRoundTrip(t *testing.T) {
	path, cleanup, err := TempFile("doc-*.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("TempFile() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "%PDF-1.4" {
		t.Fatalf("unexpected temp content %q err=%v", raw, err)
	}
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err=%v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abc", 5); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate(strings.Repeat("x", 10), 4); got != "xxxx...(truncated)" {
		t.Fatalf("unexpected %q", got)
	}
}
