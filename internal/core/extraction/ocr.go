package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

type OCRConfig struct {
	Language    string
	DPI         int
	MaxPages    int
	PageTimeout time.Duration
}

func (c OCRConfig) normalize() OCRConfig {
	if c.Language == "" {
		c.Language = "es"
	}
	if c.DPI < 200 {
		c.DPI = 200
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 20
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 45 * time.Second
	}
	return c
}

// OCRStrategy renders pages and recognizes each one independently.
type OCRStrategy struct {
	raster ports.PageRasterizer
	ocr    ports.PageOCR
	cfg    OCRConfig
	logger *slog.Logger
}

// NewOCRStrategy accepts a nil ocr or raster; the strategy then reports ErrOCRUnavailable.
func NewOCRStrategy(raster ports.PageRasterizer, ocr ports.PageOCR, cfg OCRConfig, logger *slog.Logger) *OCRStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStrategy{raster: raster, ocr: ocr, cfg: cfg.normalize(), logger: logger}
}

func (s *OCRStrategy) Name() string { return "ocr" }

func (s *OCRStrategy) CanHandle(in Input) bool {
	return in.MimeType == MIMEPDF || isImage(in.MimeType)
}

func (s *OCRStrategy) Confidence(in Input) float64 {
	switch {
	case isImage(in.MimeType):
		return 0.85
	case in.MimeType == MIMEPDF:
		return 0.6
	default:
		return 0
	}
}

// Budget covers one page timeout per page that may be recognized.
func (s *OCRStrategy) Budget(in Input) time.Duration {
	if isImage(in.MimeType) {
		return s.cfg.PageTimeout
	}
	return time.Duration(s.cfg.MaxPages) * s.cfg.PageTimeout
}

func (s *OCRStrategy) Extract(ctx context.Context, in Input) (domain.ExtractionResult, error) {
	res := domain.ExtractionResult{Method: domain.MethodOCR, Strategy: s.Name()}
	if s.ocr == nil {
		return res, domain.WrapError(domain.ErrOCRUnavailable, "ocr extract", fmt.Errorf("no ocr provider configured"))
	}

	images, err := s.pages(ctx, in)
	if err != nil {
		return res, err
	}
	res.Pages = len(images)

	var (
		texts    []string
		scoreSum float64
		firstErr error
	)
	for _, img := range images {
		page, err := s.recognize(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				if len(texts) == 0 {
					return res, fmt.Errorf("ocr page %d: %w", img.Number, ctx.Err())
				}
				// Keep what was recognized before the deadline.
				res.Warnings = append(res.Warnings, fmt.Sprintf("deadline reached at page %d: %d of %d pages recognized",
					img.Number, len(texts), len(images)))
				s.logger.Warn("ocr_partial",
					slog.Int("recognized_pages", len(texts)),
					slog.Int("total_pages", len(images)),
				)
				break
			}
			if firstErr == nil {
				firstErr = err
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", img.Number, err))
			continue
		}
		text := strings.TrimSpace(page.Text)
		if text == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: no text", img.Number))
			continue
		}
		score := textquality.BlendConfidence(textquality.ScoreOCRText(text, s.cfg.Language), page.Confidence)
		s.logger.Debug("ocr_page",
			slog.Int("page", img.Number),
			slog.Float64("score", score),
			slog.Float64("provider_confidence", page.Confidence),
		)
		texts = append(texts, text)
		scoreSum += score
	}

	if len(texts) == 0 {
		if firstErr != nil {
			return res, fmt.Errorf("ocr recognized no text on %d pages: %w", len(images), firstErr)
		}
		return res, fmt.Errorf("ocr recognized no text on %d pages", len(images))
	}
	res.Text = strings.Join(texts, "\n"+pageBreak)
	res.Confidence = scoreSum / float64(len(texts))
	return res, nil
}

func (s *OCRStrategy) pages(ctx context.Context, in Input) ([]ports.PageImage, error) {
	if isImage(in.MimeType) {
		return []ports.PageImage{{Number: 1, Data: in.Data, MIME: in.MimeType}}, nil
	}
	if s.raster == nil {
		return nil, domain.WrapError(domain.ErrOCRUnavailable, "ocr extract", fmt.Errorf("no pdf rasterizer configured"))
	}
	images, err := s.raster.Rasterize(ctx, in.Data, ports.RasterOptions{DPI: s.cfg.DPI, MaxPages: s.cfg.MaxPages})
	if err != nil {
		return nil, fmt.Errorf("rasterize pdf: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterize pdf: no pages rendered")
	}
	if len(images) > s.cfg.MaxPages {
		images = images[:s.cfg.MaxPages]
	}
	return images, nil
}

func (s *OCRStrategy) recognize(ctx context.Context, img ports.PageImage) (ports.OCRPage, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
	defer cancel()
	return s.ocr.RecognizePage(pageCtx, ports.OCRPageRequest{Image: img.Data, MIME: img.MIME, Language: s.cfg.Language})
}
