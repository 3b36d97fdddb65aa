package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

// ValuesValidator is satisfied by *validation.Registry.
type ValuesValidator interface {
	ValidateValues(docType domain.DocumentType, values map[string]any) (domain.ValidationResult, error)
}

// ValidateFieldsUseCase re-derives validation from stored records; results are never persisted.
type ValidateFieldsUseCase struct {
	fields    ports.ExtractedFieldsRepository
	validator ValuesValidator
}

func NewValidateFieldsUseCase(fields ports.ExtractedFieldsRepository, validator ValuesValidator) *ValidateFieldsUseCase {
	return &ValidateFieldsUseCase{fields: fields, validator: validator}
}

func (uc *ValidateFieldsUseCase) ValidateDocument(ctx context.Context, tenantID, documentID string) (*domain.FieldsRecord, domain.ValidationResult, error) {
	record, err := uc.fields.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, domain.ValidationResult{}, fmt.Errorf("load extracted fields: %w", err)
	}
	res, err := uc.validator.ValidateValues(record.DocumentType, record.Values)
	if err != nil {
		return nil, domain.ValidationResult{}, err
	}
	return record, res, nil
}

func (uc *ValidateFieldsUseCase) ValidateValues(docType domain.DocumentType, values map[string]any) (domain.ValidationResult, error) {
	if !docType.Valid() {
		return domain.ValidationResult{}, domain.WrapError(domain.ErrInvalidInput, "validate values", fmt.Errorf("unknown document type %q", docType))
	}
	if values == nil {
		values = map[string]any{}
	}
	return uc.validator.ValidateValues(docType, values)
}

// ValidationReport validates every stored record of docType; an empty type covers all types.
func (uc *ValidateFieldsUseCase) ValidationReport(ctx context.Context, tenantID string, docType domain.DocumentType, limit int) ([]ports.ReportRow, error) {
	if docType != "" && !docType.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validation report", fmt.Errorf("unknown document type %q", docType))
	}
	records, err := uc.fields.ListByType(ctx, tenantID, docType, limit)
	if err != nil {
		return nil, fmt.Errorf("list extracted fields: %w", err)
	}
	rows := make([]ports.ReportRow, 0, len(records))
	for _, record := range records {
		res, err := uc.validator.ValidateValues(record.DocumentType, record.Values)
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", record.DocumentID, err)
		}
		rows = append(rows, ports.ReportRow{Record: record, Validation: res})
	}
	return rows, nil
}
