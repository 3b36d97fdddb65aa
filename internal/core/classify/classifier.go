package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

type Config struct {
	SampleChars     int
	MaxOutputTokens int
	DefaultType     domain.DocumentType
	CostPer1KTokens float64
	CacheSize       int
	CacheTTL        time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleChars:     2000,
		MaxOutputTokens: 10,
		DefaultType:     domain.TypeComunicado,
		CacheSize:       1024,
		CacheTTL:        24 * time.Hour,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.SampleChars <= 0 {
		c.SampleChars = def.SampleChars
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = def.MaxOutputTokens
	}
	if !c.DefaultType.Valid() {
		c.DefaultType = def.DefaultType
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	return c
}

// Request describes the document to classify. ContentHash keys the result cache and may be empty.
type Request struct {
	Filename    string
	Text        string
	ContentHash string
}

type Outcome struct {
	Result domain.ClassificationResult
	Usage  domain.AIUsage
	Cached bool
}

// strategy is one step of the fallback chain; ok=false passes control to the next step.
type strategy interface {
	name() domain.ClassificationMethod
	attempt(ctx context.Context, req Request) (Outcome, bool, error)
}

type Classifier struct {
	chain  []strategy
	logger *slog.Logger
}

// New builds the AI -> filename -> default chain. A nil generator skips the AI step.
func New(gen ports.TextGenerator, cfg Config, logger *slog.Logger) *Classifier {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}

	chain := make([]strategy, 0, 3)
	if gen != nil {
		ai := &aiStrategy{gen: gen, cfg: cfg}
		if cfg.CacheSize > 0 {
			ai.cache = expirable.NewLRU[string, domain.ClassificationResult](cfg.CacheSize, nil, cfg.CacheTTL)
		}
		chain = append(chain, ai)
	}
	chain = append(chain, filenameStrategy{}, defaultStrategy{docType: cfg.DefaultType})
	return &Classifier{chain: chain, logger: logger}
}

// Classify always yields a member of the canonical set.
func (c *Classifier) Classify(ctx context.Context, req Request) Outcome {
	var usage domain.AIUsage
	for _, s := range c.chain {
		out, ok, err := s.attempt(ctx, req)
		usage.Add(out.Usage)
		if ok {
			out.Usage = usage
			return out
		}
		attrs := []any{slog.String("method", string(s.name())), slog.String("filename", req.Filename)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		c.logger.Info("classification_fallback", attrs...)
	}
	// defaultStrategy always succeeds; this is reached only with an empty chain.
	return Outcome{Result: domain.NewClassificationResult(domain.TypeComunicado, domain.ClassifiedByDefault), Usage: usage}
}

type aiStrategy struct {
	gen   ports.TextGenerator
	cfg   Config
	cache *expirable.LRU[string, domain.ClassificationResult]
}

func (s *aiStrategy) name() domain.ClassificationMethod { return domain.ClassifiedByAI }

func (s *aiStrategy) attempt(ctx context.Context, req Request) (Outcome, bool, error) {
	if s.cache != nil && req.ContentHash != "" {
		if res, ok := s.cache.Get(req.ContentHash); ok {
			return Outcome{Result: res, Cached: true}, true, nil
		}
	}
	if strings.TrimSpace(req.Text) == "" {
		return Outcome{}, false, errors.New("no text to classify")
	}

	gen, err := s.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:          Prompt(req.Filename, textquality.Sample(req.Text, s.cfg.SampleChars)),
		Temperature:     0,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
	})
	if err != nil {
		return Outcome{}, false, err
	}
	out := Outcome{Usage: domain.NewAIUsage(gen.PromptTokens, gen.OutputTokens, s.cfg.CostPer1KTokens)}

	docType, ok := NormalizeAnswer(gen.Text)
	if !ok {
		return out, false, domain.WrapError(domain.ErrClassificationUncertain, "classify", fmt.Errorf("answer %q is not a document type", truncate(gen.Text, 40)))
	}
	out.Result = domain.NewClassificationResult(docType, domain.ClassifiedByAI)
	out.Result.RawAnswer = gen.Text
	if s.cache != nil && req.ContentHash != "" {
		s.cache.Add(req.ContentHash, out.Result)
	}
	return out, true, nil
}

type filenameStrategy struct{}

func (filenameStrategy) name() domain.ClassificationMethod { return domain.ClassifiedByFilename }

func (filenameStrategy) attempt(_ context.Context, req Request) (Outcome, bool, error) {
	docType, ok := TypeFromFilename(req.Filename)
	if !ok {
		return Outcome{}, false, nil
	}
	return Outcome{Result: domain.NewClassificationResult(docType, domain.ClassifiedByFilename)}, true, nil
}

type defaultStrategy struct {
	docType domain.DocumentType
}

func (defaultStrategy) name() domain.ClassificationMethod { return domain.ClassifiedByDefault }

func (s defaultStrategy) attempt(context.Context, Request) (Outcome, bool, error) {
	return Outcome{Result: domain.NewClassificationResult(s.docType, domain.ClassifiedByDefault)}, true, nil
}

// NormalizeAnswer keeps only letters, lowercases and folds accents, then checks the canonical set.
func NormalizeAnswer(answer string) (domain.DocumentType, bool) {
	folded := textquality.Fold(strings.TrimSpace(answer))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, folded)
	t := domain.DocumentType(cleaned)
	return t, t.Valid()
}

func Prompt(filename, sample string) string {
	types := domain.DocumentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	var b strings.Builder
	b.WriteString("Clasifica este documento de una administración de fincas en UNO de estos tipos: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nResponde únicamente con el tipo en minúsculas, sin explicación.\n\n")
	b.WriteString("Archivo: ")
	b.WriteString(filename)
	b.WriteString("\n\nTexto:\n")
	b.WriteString(sample)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
