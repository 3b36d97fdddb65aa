package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Adapters wrap their failures with one of these so transport layers can map
// them without knowing which backend produced them.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	ErrExtractionFailure       = errors.New("extraction failed")
	ErrOCRUnavailable          = errors.New("ocr unavailable")
	ErrClassificationUncertain = errors.New("classification uncertain")
	ErrParseFailure            = errors.New("model response parse failure")
	ErrValidationFailure       = errors.New("validation failed")
	ErrPersistenceFailure      = errors.New("persistence failed")
)

var kindNames = []struct {
	kind error
	name string
}{
	{ErrDocumentNotFound, "not_found"},
	{ErrInvalidInput, "invalid_input"},
	{ErrTemporary, "temporary"},
	{ErrOCRUnavailable, "ocr_unavailable"},
	{ErrExtractionFailure, "extraction"},
	{ErrClassificationUncertain, "classification"},
	{ErrParseFailure, "parse"},
	{ErrValidationFailure, "validation"},
	{ErrPersistenceFailure, "persistence"},
}

// WrapError renders "operation: kind: cause" and keeps both kind and cause matchable.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindName is a short label for the first kind err carries, "unknown" when it carries none.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return "unknown"
}
