package domain

import "time"

type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native"
	MethodOCR    ExtractionMethod = "ocr"
	MethodError  ExtractionMethod = "error"
)

// ExtractionResult is produced and consumed within one pipeline run.
type ExtractionResult struct {
	Text       string           `json:"-"`
	Method     ExtractionMethod `json:"method"`
	Strategy   string           `json:"strategy,omitempty"`
	Confidence float64          `json:"confidence"`
	Pages      int              `json:"pages"`
	SizeBytes  int64            `json:"size_bytes"`
	Error      string           `json:"error,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
	Duration   time.Duration    `json:"duration"`
}

func (r ExtractionResult) OK() bool {
	return r.Method != MethodError && r.Text != ""
}
