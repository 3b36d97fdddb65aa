// Package llm holds provider-agnostic decorators for the text generation and OCR ports.
package llm

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

// Paced spaces provider calls with a shared token bucket so classification, metadata and OCR
// together stay under the provider quota.
type Paced struct {
	gen     ports.TextGenerator
	ocr     ports.PageOCR
	limiter *rate.Limiter
}

// NewPaced wraps gen and ocr (either may be nil). rps <= 0 returns an unthrottled decorator.
func NewPaced(gen ports.TextGenerator, ocr ports.PageOCR, rps float64, burst int) *Paced {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst <= 0 {
			burst = int(math.Max(1, math.Ceil(rps)))
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Paced{gen: gen, ocr: ocr, limiter: limiter}
}

func (p *Paced) Generate(ctx context.Context, req ports.GenerateRequest) (ports.Generation, error) {
	if p.gen == nil {
		return ports.Generation{}, domain.WrapError(domain.ErrInvalidInput, "generate", fmt.Errorf("text generator is not configured"))
	}
	if err := p.wait(ctx, "generate"); err != nil {
		return ports.Generation{}, err
	}
	return p.gen.Generate(ctx, req)
}

func (p *Paced) RecognizePage(ctx context.Context, req ports.OCRPageRequest) (ports.OCRPage, error) {
	if p.ocr == nil {
		return ports.OCRPage{}, domain.WrapError(domain.ErrOCRUnavailable, "recognize page", fmt.Errorf("ocr provider is not configured"))
	}
	if err := p.wait(ctx, "recognize page"); err != nil {
		return ports.OCRPage{}, err
	}
	return p.ocr.RecognizePage(ctx, req)
}

// Generator and OCR expose the decorator through a single port each, keeping nil providers nil.
func (p *Paced) Generator() ports.TextGenerator {
	if p.gen == nil {
		return nil
	}
	return generatorOnly{p}
}

func (p *Paced) OCR() ports.PageOCR {
	if p.ocr == nil {
		return nil
	}
	return ocrOnly{p}
}

func (p *Paced) wait(ctx context.Context, op string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.WrapError(domain.ErrTemporary, op, fmt.Errorf("ai pacing: %w", err))
	}
	return nil
}

type generatorOnly struct{ p *Paced }

func (g generatorOnly) Generate(ctx context.Context, req ports.GenerateRequest) (ports.Generation, error) {
	return g.p.Generate(ctx, req)
}

type ocrOnly struct{ p *Paced }

func (o ocrOnly) RecognizePage(ctx context.Context, req ports.OCRPageRequest) (ports.OCRPage, error) {
	return o.p.RecognizePage(ctx, req)
}
