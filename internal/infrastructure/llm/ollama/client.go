package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Images  []string       `json:"images,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generate implements ports.TextGenerator against /api/generate.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (ports.Generation, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.MaxOutputTokens > 0 {
		body.Options["num_predict"] = req.MaxOutputTokens
	}
	if req.JSON {
		body.Format = "json"
	}
	if len(req.Document) > 0 {
		if !strings.HasPrefix(req.DocumentMIME, "image/") {
			return ports.Generation{}, domain.WrapError(domain.ErrInvalidInput, "ollama generate",
				fmt.Errorf("unsupported attachment type %q", req.DocumentMIME))
		}
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Document)}
	}

	var response generateResponse
	call := func(callCtx context.Context) error {
		response = generateResponse{}
		return c.post(callCtx, "generate", "/api/generate", body, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return ports.Generation{}, mapError("ollama generate", err)
	}

	return ports.Generation{
		Text:         strings.TrimSpace(response.Response),
		PromptTokens: response.PromptEvalCount,
		OutputTokens: response.EvalCount,
		Model:        response.Model,
	}, nil
}

const ocrPrompt = "Transcribe literalmente todo el texto visible en esta imagen de un documento. " +
	"Conserva saltos de línea. No añadas comentarios ni traducciones. Idioma principal: %s."

// OCR recognizes page images with a vision-capable model.
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
