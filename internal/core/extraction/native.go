package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
	"github.com/kirillkom/fincadocs/internal/infrastructure/cmdrunner"
)

const (
	nativeGoodConfidence = 0.95
	nativePoorConfidence = 0.4
	pageBreak            = "\f"
)

// NativeStrategy reads the embedded text layer. pdftotext is used when the in-process reader fails.
type NativeStrategy struct {
	runner    cmdrunner.Runner
	pdftotext string
	logger    *slog.Logger
}

// NewNativeStrategy accepts a nil runner, which disables the pdftotext fallback.
func NewNativeStrategy(runner cmdrunner.Runner, pdftotextBin string, logger *slog.Logger) *NativeStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if pdftotextBin == "" {
		pdftotextBin = "pdftotext"
	}
	return &NativeStrategy{runner: runner, pdftotext: pdftotextBin, logger: logger}
}

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) CanHandle(in Input) bool {
	return in.MimeType == MIMEPDF || isText(in.MimeType)
}

func (s *NativeStrategy) Confidence(in Input) float64 {
	if s.CanHandle(in) {
		return nativeGoodConfidence
	}
	return 0
}

func (s *NativeStrategy) Extract(ctx context.Context, in Input) (domain.ExtractionResult, error) {
	res := domain.ExtractionResult{Method: domain.MethodNative, Strategy: s.Name()}
	if isText(in.MimeType) {
		text := string(in.Data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "")
			res.Warnings = append(res.Warnings, "invalid utf-8 sequences removed")
		}
		res.Text = strings.TrimSpace(text)
		res.Pages = 1
		return s.score(res)
	}

	text, pages, err := readPDFText(in.Data)
	if err != nil || strings.TrimSpace(text) == "" {
		reason := "empty text layer"
		if err != nil {
			reason = err.Error()
		}
		s.logger.Info("extraction_fallback",
			slog.String("from", "pdf_reader"),
			slog.String("to", "pdftotext"),
			slog.String("reason", reason),
		)
		text, pages, err = s.runPDFToText(ctx, in.Data)
		if err != nil {
			return res, fmt.Errorf("native extraction: pdf reader: %s; pdftotext: %w", reason, err)
		}
		res.Warnings = append(res.Warnings, "text read with pdftotext")
	}
	res.Text = strings.TrimSpace(text)
	res.Pages = pages
	if res.Text == "" {
		return res, errors.New("native extraction: document has no text layer")
	}
	return s.score(res)
}

func (s *NativeStrategy) score(res domain.ExtractionResult) (domain.ExtractionResult, error) {
	needsOCR, report := textquality.NeedsOCR(res.Text)
	res.Confidence = nativeGoodConfidence
	if needsOCR {
		res.Confidence = nativePoorConfidence
		res.Warnings = append(res.Warnings, "text quality: "+strings.Join(report.Reasons, ","))
	}
	return res, nil
}

// readPDFText returns the text of every page, pages separated by form feeds.
func readPDFText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	pages = r.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", pages, fmt.Errorf("read page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}
	return strings.Join(parts, "\n"+pageBreak), pages, nil
}

func (s *NativeStrategy) runPDFToText(ctx context.Context, data []byte) (string, int, error) {
	if s.runner == nil {
		return "", 0, errors.New("pdftotext is not configured")
	}
	path, cleanup, err := cmdrunner.TempFile("extract-*.pdf", data)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	stdout, stderr, err := s.runner.Run(ctx, s.pdftotext, s.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(stderr)), 512))
	}
	out := strings.TrimRight(string(stdout), pageBreak+"\n")
	return out, strings.Count(out, pageBreak) + 1, nil
}
