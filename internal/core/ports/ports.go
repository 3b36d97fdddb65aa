package ports

import "context"

// GenerateRequest is a single prompt sent to a text model.
type GenerateRequest struct {
	Prompt string
	// Document optionally carries raw bytes (page image or PDF) for multimodal models.
	Document        []byte
	DocumentMIME    string
	Temperature     float32
	MaxOutputTokens int
	JSON            bool
}

// Generation is the model answer. Structured is set when the provider already returned a JSON object.
type Generation struct {
	Text         string
	Structured   map[string]any
	PromptTokens int
	OutputTokens int
	Model        string
}

// TextGenerator is the AI text service used by classification and metadata extraction.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (Generation, error)
}

type OCRPageRequest struct {
	Image    []byte
	MIME     string
	Language string
}

// OCRPage is the recognized text of one page; Confidence is 0 when the provider has none.
type OCRPage struct {
	Text       string
	Confidence float64
}

// PageOCR recognizes text on a single raster page.
type PageOCR interface {
	RecognizePage(ctx context.Context, req OCRPageRequest) (OCRPage, error)
}

type RasterOptions struct {
	DPI      int
	MaxPages int
}

// PageImage is one rendered page.
type PageImage struct {
	Number int
	Data   []byte
	MIME   string
}

// PageRasterizer renders PDF pages to images.
type PageRasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, opts RasterOptions) ([]PageImage, error)
}
