package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/classify"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/extraction"
	"github.com/kirillkom/fincadocs/internal/core/metadata"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/validation"
	"github.com/kirillkom/fincadocs/internal/infrastructure/chunking"
	"github.com/kirillkom/fincadocs/internal/infrastructure/cmdrunner"
	"github.com/kirillkom/fincadocs/internal/infrastructure/llm"
	"github.com/kirillkom/fincadocs/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/fincadocs/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/fincadocs/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/fincadocs/internal/infrastructure/raster/pdftoppm"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

// Pipeline holds the stage components shared by the api, the worker and docctl.
type Pipeline struct {
	Generator  ports.TextGenerator
	Extractor  *extraction.Service
	Classifier *classify.Classifier
	Metadata   *metadata.Extractor
	Registry   *validation.Registry
	Chunker    *chunking.Splitter
}

func NewPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := validation.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("load validation schemas: %w", err)
	}

	gen, ocr, err := newProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	paced := llm.NewPaced(gen, ocr, cfg.AIRateLimitRPS, 0)
	gen, ocr = paced.Generator(), paced.OCR()

	runner := cmdrunner.ExecRunner{}
	var raster ports.PageRasterizer
	if ocr != nil {
		raster = pdftoppm.New(runner, cfg.PdftoppmBin, logger)
	}

	extractor := extraction.NewService(
		extraction.Config{Timeout: cfg.ExtractionTimeout, AcceptConfidence: cfg.ExtractionAcceptConfidence},
		logger,
		extraction.NewNativeStrategy(runner, cfg.PdftotextBin, logger),
		extraction.NewOCRStrategy(raster, ocr, extraction.OCRConfig{
			Language:    cfg.OCRLanguage,
			DPI:         cfg.OCRDPI,
			MaxPages:    cfg.OCRMaxPages,
			PageTimeout: cfg.OCRPageTimeout,
		}, logger),
	)

	defaultType, err := domain.ParseDocumentType(cfg.ClassifierDefaultType)
	if err != nil {
		return nil, fmt.Errorf("classifier default type: %w", err)
	}
	classifier := classify.New(gen, classify.Config{
		SampleChars:     cfg.ClassifierSampleChars,
		MaxOutputTokens: cfg.ClassifierMaxTokens,
		DefaultType:     defaultType,
		CostPer1KTokens: cfg.AICostPer1KTokens,
		CacheSize:       cfg.ClassifierCacheSize,
		CacheTTL:        cfg.ClassifierCacheTTL,
	}, logger)

	meta := metadata.NewExtractor(gen, metadata.Config{
		SampleChars:     cfg.MetadataSampleChars,
		MaxOutputTokens: cfg.MetadataMaxTokens,
		Temperature:     float32(cfg.AITemperature),
		CostPer1KTokens: cfg.AICostPer1KTokens,
	}, logger)

	logger.Info("pipeline_configured",
		slog.String("ai_provider", cfg.AIProvider),
		slog.String("ocr_provider", cfg.OCRProvider),
		slog.Any("extraction_strategies", extractor.Strategies()),
		slog.Any("schemas", registry.Types()),
	)

	return &Pipeline{
		Generator:  gen,
		Extractor:  extractor,
		Classifier: classifier,
		Metadata:   meta,
		Registry:   registry,
		Chunker:    chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
	}, nil
}

func newAIExecutor(cfg config.Config, logger *slog.Logger) *resilience.Executor {
	return resilience.NewExecutor(resilience.AIPolicy(
		cfg.ResilienceRetryAttempts,
		cfg.ResilienceRetryBackoff,
		cfg.AITimeout,
		cfg.ResilienceBreakerEnabled,
		logger,
	))
}

// newProviders returns the text generator and page recognizer selected by config; either may be nil.
func newProviders(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.TextGenerator, ports.PageOCR, error) {
	if logger == nil {
		logger = slog.Default()
	}
	executor := newAIExecutor(cfg, logger)

	var (
		ollamaClient *ollama.Client
		geminiClient *gemini.Client
	)
	ollamaFor := func() *ollama.Client {
		if ollamaClient == nil {
			ollamaClient = ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
				HTTPTimeout:        cfg.AITimeout,
				ResilienceExecutor: executor,
			})
		}
		return ollamaClient
	}
	geminiFor := func() (*gemini.Client, error) {
		if geminiClient == nil {
			client, err := gemini.New(ctx, gemini.Options{
				APIKey:             cfg.GeminiAPIKey,
				Model:              cfg.GeminiModel,
				ResilienceExecutor: executor,
			})
			if err != nil {
				return nil, err
			}
			geminiClient = client
		}
		return geminiClient, nil
	}

	var gen ports.TextGenerator
	switch cfg.AIProvider {
	case "ollama":
		gen = ollamaFor()
	case "gemini":
		client, err := geminiFor()
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini generator: %w", err)
		}
		gen = client
	case "none", "":
		logger.Warn("ai_disabled", slog.String("effect", "classification falls back to filename keywords"))
	default:
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "select ai provider", fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider))
	}

	var ocr ports.PageOCR
	switch cfg.OCRProvider {
	case "tesseract":
		if !cmdrunner.Available(cfg.TesseractBin) {
			logger.Warn("ocr_binary_missing", slog.String("binary", cfg.TesseractBin))
		}
		ocr = tesseract.New(cmdrunner.ExecRunner{}, cfg.TesseractBin, logger)
	case "gemini":
		client, err := geminiFor()
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini ocr: %w", err)
		}
		ocr = gemini.NewOCR(client)
	case "ollama":
		ocr = ollama.NewOCR(ollamaFor())
	case "none", "":
	default:
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "select ocr provider", fmt.Errorf("unknown OCR_PROVIDER %q", cfg.OCRProvider))
	}
	return gen, ocr, nil
}
