package extraction

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

func TestOCRSkipsEmptyPagesInConfidence(t *testing.T) {
	ocr := &fakeOCR{texts: []string{ocrPageText, "   ", ocrPageText}}
	s := NewOCRStrategy(&fakeRaster{pages: 3}, ocr, OCRConfig{}, nil)

	res, err := s.Extract(context.Background(), Input{MimeType: MIMEPDF, Data: []byte("%PDF-")})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := textquality.ScoreOCRText(ocrPageText, "es")
	if res.Confidence != want {
		t.Fatalf("empty page must be skipped, not zeroed: got %.3f want %.3f", res.Confidence, want)
	}
	if res.Pages != 3 || strings.Count(res.Text, "presupuesto") != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestOCRBlendsProviderConfidence(t *testing.T) {
	ocr := &fakeOCR{texts: []string{ocrPageText}, confidence: 0.5}
	s := NewOCRStrategy(nil, ocr, OCRConfig{}, nil)

	res, err := s.Extract(context.Background(), Input{MimeType: "image/png", Data: []byte{1}})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := textquality.BlendConfidence(textquality.ScoreOCRText(ocrPageText, "es"), 0.5)
	if res.Confidence != want {
		t.Fatalf("got %.3f want %.3f", res.Confidence, want)
	}
}

func TestOCRAllPagesEmptyFails(t *testing.T) {
	s := NewOCRStrategy(&fakeRaster{pages: 2}, &fakeOCR{}, OCRConfig{}, nil)
	if _, err := s.Extract(context.Background(), Input{MimeType: MIMEPDF, Data: []byte("%PDF-")}); err == nil {
		t.Fatalf("expected failure when every page is empty")
	}
}

func TestOCRUnavailable(t *testing.T) {
	s := NewOCRStrategy(nil, nil, OCRConfig{}, nil)
	_, err := s.Extract(context.Background(), Input{MimeType: "image/png", Data: []byte{1}})
	if !domain.IsKind(err, domain.ErrOCRUnavailable) {
		t.Fatalf("expected ErrOCRUnavailable, got %v", err)
	}

	s = NewOCRStrategy(nil, &fakeOCR{}, OCRConfig{}, nil)
	_, err = s.Extract(context.Background(), Input{MimeType: MIMEPDF, Data: []byte("%PDF-")})
	if !domain.IsKind(err, domain.ErrOCRUnavailable) {
		t.Fatalf("expected ErrOCRUnavailable without rasterizer, got %v", err)
	}
}

func TestOCRCapsPages(t *testing.T) {
	raster := &fakeRaster{pages: 5}
	ocr := &fakeOCR{texts: []string{ocrPageText, ocrPageText, ocrPageText, ocrPageText, ocrPageText}}
	s := NewOCRStrategy(raster, ocr, OCRConfig{MaxPages: 2, DPI: 300}, nil)

	res, err := s.Extract(context.Background(), Input{MimeType: MIMEPDF, Data: []byte("%PDF-")})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Pages != 2 || ocr.calls != 2 || raster.opts.MaxPages != 2 || raster.opts.DPI != 300 {
		t.Fatalf("expected page cap applied, got pages=%d calls=%d opts=%+v", res.Pages, ocr.calls, raster.opts)
	}
}

func TestOCRPageErrorsBecomeWarnings(t *testing.T) {
	s := NewOCRStrategy(&fakeRaster{pages: 1}, &fakeOCR{err: errBoom}, OCRConfig{}, nil)
	_, err := s.Extract(context.Background(), Input{MimeType: MIMEPDF, Data: []byte("%PDF-")})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected page error surfaced, got %v", err)
	}
}

func pageTexts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = ocrPageText
	}
	return out
}

func TestOCRKeepsRecognizedPagesOnDeadline(t *testing.T) {
	ocr := &fakeOCR{texts: pageTexts(10), delay: 30 * time.Millisecond}
	s := NewOCRStrategy(&fakeRaster{pages: 10}, ocr, OCRConfig{PageTimeout: time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	res, err := s.Extract(ctx, Input{MimeType: MIMEPDF, Data: []byte("%PDF-")})
	if err != nil {
		t.Fatalf("expected partial result, got %v", err)
	}
	recognized := strings.Count(res.Text, "presupuesto")
	if recognized == 0 || recognized >= 10 {
		t.Fatalf("expected some but not all pages, got %d", recognized)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[len(res.Warnings)-1], "deadline reached") {
		t.Fatalf("expected a deadline warning, got %v", res.Warnings)
	}
}

func TestOCRDeadlineBeforeAnyPageFails(t *testing.T) {
	s := NewOCRStrategy(nil, &fakeOCR{block: true}, OCRConfig{PageTimeout: time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Extract(ctx, Input{MimeType: "image/png", Data: []byte{1}}); err == nil {
		t.Fatalf("expected deadline error with no recognized page")
	}
}

func TestOCRBudgetScalesWithPages(t *testing.T) {
	s := NewOCRStrategy(nil, &fakeOCR{}, OCRConfig{MaxPages: 4, PageTimeout: 10 * time.Second}, nil)
	if got := s.Budget(Input{MimeType: MIMEPDF}); got != 40*time.Second {
		t.Fatalf("pdf budget = %v", got)
	}
	if got := s.Budget(Input{MimeType: "image/jpeg"}); got != 10*time.Second {
		t.Fatalf("image budget = %v", got)
	}
}
