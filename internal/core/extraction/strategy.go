package extraction

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEText = "text/plain"
)

// Input is one document to extract text from.
type Input struct {
	Filename string
	MimeType string
	Data     []byte
}

// Strategy is one way of getting text out of a document.
type Strategy interface {
	Name() string
	CanHandle(in Input) bool
	// Confidence is the prior expectation for in; higher runs first.
	Confidence(in Input) float64
	Extract(ctx context.Context, in Input) (domain.ExtractionResult, error)
}

// DetectMIME prefers the declared type unless it is missing or generic, then sniffs the bytes.
func DetectMIME(filename, declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MIMEPDF
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

func isImage(mt string) bool {
	return strings.HasPrefix(mt, "image/")
}

func isText(mt string) bool {
	return strings.HasPrefix(mt, "text/")
}
