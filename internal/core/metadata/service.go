package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

var specs = map[domain.DocumentType]typeSpec{
	domain.TypeActa:        actaSpec,
	domain.TypeFactura:     facturaSpec,
	domain.TypeComunicado:  comunicadoSpec,
	domain.TypeContrato:    contratoSpec,
	domain.TypeEscritura:   escrituraSpec,
	domain.TypeAlbaran:     albaranSpec,
	domain.TypePresupuesto: presupuestoSpec,
}

type Config struct {
	SampleChars     int
	MaxOutputTokens int
	Temperature     float32
	CostPer1KTokens float64
}

func (c Config) normalize() Config {
	if c.SampleChars <= 0 {
		c.SampleChars = 12000
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 2048
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	return c
}

// Outcome is one metadata extraction. Fields is nil when the answer held no parsable object.
type Outcome struct {
	Fields domain.ExtractedFields
	Usage  domain.AIUsage
	Raw    string
}

type Extractor struct {
	gen    ports.TextGenerator
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(gen ports.TextGenerator, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, cfg: cfg.normalize(), logger: logger}
}

// Extract asks the model for the fields of docType. Transport errors are returned;
// an unparsable answer is not an error and yields an Outcome without fields.
func (e *Extractor) Extract(ctx context.Context, docType domain.DocumentType, filename, text string) (Outcome, error) {
	spec, ok := specs[docType]
	if !ok {
		return Outcome{}, domain.WrapError(domain.ErrInvalidInput, "extract metadata", fmt.Errorf("unknown document type %q", docType))
	}
	if e.gen == nil {
		return Outcome{}, domain.WrapError(domain.ErrInvalidInput, "extract metadata", errors.New("text generator is not configured"))
	}

	gen, err := e.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:          spec.prompt(filename, textquality.Sample(text, e.cfg.SampleChars)),
		Temperature:     e.cfg.Temperature,
		MaxOutputTokens: e.cfg.MaxOutputTokens,
		JSON:            true,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("generate %s metadata: %w", docType, err)
	}

	out := Outcome{
		Usage: domain.NewAIUsage(gen.PromptTokens, gen.OutputTokens, e.cfg.CostPer1KTokens),
		Raw:   gen.Text,
	}
	raw := ParseResponse(gen)
	if raw == nil {
		e.logger.Warn("metadata_parse_failed",
			slog.String("document_type", string(docType)),
			slog.Int("answer_chars", len(gen.Text)),
		)
		return out, nil
	}
	out.Fields = spec.convert(spec.canonicalize(raw))
	return out, nil
}

// Convert coerces an already decoded object into the typed record of docType.
func Convert(docType domain.DocumentType, raw map[string]any) (domain.ExtractedFields, error) {
	spec, ok := specs[docType]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "convert metadata", fmt.Errorf("unknown document type %q", docType))
	}
	return spec.convert(spec.canonicalize(raw)), nil
}

// Empty returns the record of docType with every field absent.
func Empty(docType domain.DocumentType) domain.ExtractedFields {
	fields, err := Convert(docType, map[string]any{})
	if err != nil {
		return nil
	}
	return fields
}
