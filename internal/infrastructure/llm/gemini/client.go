package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint; used by tests.
	BaseURL            string
	ResilienceExecutor *resilience.Executor
}

type Client struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
}

func New(ctx context.Context, options Options) (*Client, error) {
	apiKey := strings.TrimSpace(options.APIKey)
	if apiKey == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini client", errors.New("api key is required"))
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if options.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: options.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := options.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{client: client, model: model, executor: options.ResilienceExecutor}, nil
}

// Generate implements ports.TextGenerator. Attachments (page images or a PDF) are sent inline.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (ports.Generation, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if len(req.Document) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: req.DocumentMIME, Data: req.Document}})
	}
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var resp *genai.GenerateContentResponse
	call := func(callCtx context.Context) error {
		var err error
		resp, err = c.client.Models.GenerateContent(callCtx, c.model, []*genai.Content{{Role: "user", Parts: parts}}, config)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return ports.Generation{}, mapGeminiError(err)
	}

	out := ports.Generation{Text: strings.TrimSpace(resp.Text()), Model: resp.ModelVersion}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

const ocrPrompt = "Transcribe literally all text visible in this scanned document page. " +
	"Keep line breaks. Do not translate, summarize or comment. Document language: %s."

// OCR uses Gemini vision as a page recognizer.
type OCR struct {
	client *Client
}

func NewOCR(client *Client) *OCR {
	return &OCR{client: client}
}

func (o *OCR) RecognizePage(ctx context.Context, req ports.OCRPageRequest) (ports.OCRPage, error) {
	gen, err := o.client.Generate(ctx, ports.GenerateRequest{
		Prompt:       fmt.Sprintf(ocrPrompt, req.Language),
		Document:     req.Image,
		DocumentMIME: req.MIME,
		Temperature:  0,
	})
	if err != nil {
		return ports.OCRPage{}, err
	}
	return ports.OCRPage{Text: gen.Text}, nil
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		var apiErr genai.APIError
		if !errors.As(err, &apiErr) {
			return resilience.ErrorClassification{}, false
		}
		return resilience.StatusClassification(apiErr.Code), true
	})
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusBadRequest) {
		return domain.WrapError(domain.ErrInvalidInput, "gemini generate", err)
	}
	if mapped := resilience.AsTemporary("gemini generate", err, classifyGeminiError); domain.IsKind(mapped, domain.ErrTemporary) {
		return mapped
	}
	return fmt.Errorf("gemini generate: %w", err)
}
