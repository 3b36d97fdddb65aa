package domain

import "encoding/json"

// ExtractedFields is the closed union of per-type metadata records.
// Only the record types declared in this package implement it.
type ExtractedFields interface {
	DocumentType() DocumentType
	// Fields returns the canonical name -> value view with absent fields omitted.
	Fields() map[string]any
	sealed()
}

// LineItem is one row of an invoice, delivery note or budget.
type LineItem struct {
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// FieldsRecord is the persisted form of an ExtractedFields value.
type FieldsRecord struct {
	DocumentID   string         `json:"document_id"`
	TenantID     string         `json:"tenant_id"`
	DocumentType DocumentType   `json:"document_type"`
	Values       map[string]any `json:"values"`
}

// NewFieldsRecord snapshots fields for persistence.
func NewFieldsRecord(documentID, tenantID string, fields ExtractedFields) FieldsRecord {
	return FieldsRecord{
		DocumentID:   documentID,
		TenantID:     tenantID,
		DocumentType: fields.DocumentType(),
		Values:       fields.Fields(),
	}
}

func fieldMap(record any) map[string]any {
	raw, err := json.Marshal(record)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
