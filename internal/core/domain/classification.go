package domain

import "fmt"

// DocumentType is the closed set of document kinds handled by the pipeline.
type DocumentType string

const (
	TypeActa        DocumentType = "acta"
	TypeFactura     DocumentType = "factura"
	TypeComunicado  DocumentType = "comunicado"
	TypeContrato    DocumentType = "contrato"
	TypeEscritura   DocumentType = "escritura"
	TypeAlbaran     DocumentType = "albaran"
	TypePresupuesto DocumentType = "presupuesto"
)

var documentTypes = []DocumentType{
	TypeActa,
	TypeFactura,
	TypeComunicado,
	TypeContrato,
	TypeEscritura,
	TypeAlbaran,
	TypePresupuesto,
}

// DocumentTypes returns the canonical members in a stable order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypes))
	copy(out, documentTypes)
	return out
}

func (t DocumentType) Valid() bool {
	for _, known := range documentTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(raw)
	if !t.Valid() {
		return "", WrapError(ErrInvalidInput, "parse document type", fmt.Errorf("unknown type %q", raw))
	}
	return t, nil
}

type ClassificationMethod string

const (
	ClassifiedByAI       ClassificationMethod = "ai"
	ClassifiedByFilename ClassificationMethod = "filename-fallback"
	ClassifiedByDefault  ClassificationMethod = "default"
)

// Confidence is fixed per method rather than derived from model output.
func (m ClassificationMethod) Confidence() float64 {
	switch m {
	case ClassifiedByAI:
		return 0.9
	case ClassifiedByFilename:
		return 0.7
	default:
		return 0.5
	}
}

type ClassificationResult struct {
	Type       DocumentType         `json:"type"`
	Confidence float64              `json:"confidence"`
	Method     ClassificationMethod `json:"method"`
	RawAnswer  string               `json:"raw_answer,omitempty"`
}

func NewClassificationResult(t DocumentType, method ClassificationMethod) ClassificationResult {
	return ClassificationResult{
		Type:       t,
		Confidence: method.Confidence(),
		Method:     method,
	}
}
