package domain

// FieldDetail is the per-field outcome of validating a record against its schema.
type FieldDetail struct {
	Present bool   `json:"present"`
	Valid   bool   `json:"valid"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

type RuleResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// ValidationResult is derived from ExtractedFields and a schema; it is never stored as truth.
type ValidationResult struct {
	DocumentType  DocumentType           `json:"document_type"`
	Score         float64                `json:"score"`
	Valid         bool                   `json:"valid"`
	PresentFields []string               `json:"present_fields"`
	MissingFields []string               `json:"missing_fields"`
	InvalidFields []string               `json:"invalid_fields"`
	Details       map[string]FieldDetail `json:"details"`
	Rules         []RuleResult           `json:"rules,omitempty"`
}

// MissingRequired reports whether any required field is absent.
func (v ValidationResult) MissingRequired() bool {
	return len(v.MissingFields) > 0
}
