package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/metadata"
)

const (
	requiredWeight = 60.0
	validWeight    = 40.0
	ValidThreshold = 70.0
)

// Validate scores fields against the schema of their document type.
func (r *Registry) Validate(fields domain.ExtractedFields) (domain.ValidationResult, error) {
	if fields == nil {
		return domain.ValidationResult{}, domain.WrapError(domain.ErrInvalidInput, "validate fields", errors.New("nil fields"))
	}
	return r.ValidateValues(fields.DocumentType(), fields.Fields())
}

// ValidateValues scores a canonical name -> value map against the schema of t.
func (r *Registry) ValidateValues(t domain.DocumentType, values map[string]any) (domain.ValidationResult, error) {
	schema, err := r.Schema(t)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return schema.Validate(values), nil
}

// Validate is pure: it never mutates values and depends only on its inputs.
func (s *Schema) Validate(values map[string]any) domain.ValidationResult {
	result := domain.ValidationResult{
		DocumentType:  s.DocumentType,
		PresentFields: []string{},
		MissingFields: []string{},
		InvalidFields: []string{},
		Details:       make(map[string]domain.FieldDetail, len(s.Fields)),
	}

	normalized := make(map[string]any, len(s.Fields))
	requiredTotal, requiredPresent, validCount := 0, 0, 0
	for _, def := range s.Fields {
		value := normalize(def, values[def.Name])
		normalized[def.Name] = value
		detail := domain.FieldDetail{Present: isPresent(value)}

		if def.Required {
			requiredTotal++
		}
		switch {
		case detail.Present:
			detail.Value = value
			if err := checkField(def, value); err != nil {
				detail.Error = err.Error()
				result.InvalidFields = append(result.InvalidFields, def.Name)
			} else {
				detail.Valid = true
				validCount++
			}
			result.PresentFields = append(result.PresentFields, def.Name)
			if def.Required {
				requiredPresent++
			}
		case def.Required:
			detail.Error = "required field missing"
			result.MissingFields = append(result.MissingFields, def.Name)
		default:
			// Absent optional fields count as valid.
			detail.Valid = true
			validCount++
		}
		result.Details[def.Name] = detail
	}

	requiredScore := requiredWeight
	if requiredTotal > 0 {
		requiredScore = float64(requiredPresent) / float64(requiredTotal) * requiredWeight
	}
	validScore := 0.0
	if len(s.Fields) > 0 {
		validScore = float64(validCount) / float64(len(s.Fields)) * validWeight
	}
	result.Score = math.Round((requiredScore+validScore)*100) / 100

	rulesPass := true
	for _, rule := range s.Rules {
		outcome := evaluateRule(rule, normalized)
		if !outcome.Passed {
			rulesPass = false
		}
		result.Rules = append(result.Rules, outcome)
	}

	result.Valid = result.Score >= ValidThreshold && len(result.MissingFields) == 0 && rulesPass
	return result
}

// isPresent treats nil, blank strings and empty collections as absent.
func isPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// normalize converts a delimited string into an array, a JSON string into an object and any
// date form the extractors accept into YYYY-MM-DD. Unparseable dates are left for checkType.
func normalize(def FieldDef, v any) any {
	switch def.Type {
	case TypeArray:
		switch val := v.(type) {
		case string:
			return splitList(val)
		case []string:
			out := make([]any, 0, len(val))
			for _, s := range val {
				out = append(out, s)
			}
			return out
		}
	case TypeObject:
		if s, ok := v.(string); ok {
			var obj map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err == nil {
				return obj
			}
		}
	case TypeDate:
		if iso := metadata.Date(v); iso != nil {
			return *iso
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return v
}

func splitList(s string) []any {
	sep := ","
	switch {
	case strings.Contains(s, "\n"):
		sep = "\n"
	case strings.Contains(s, ";"):
		sep = ";"
	}
	out := []any{}
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-•*"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func checkField(def FieldDef, v any) error {
	if err := checkType(def, v); err != nil {
		return err
	}
	if len(def.Enum) > 0 {
		s, _ := v.(string)
		if !containsFold(def.Enum, s) {
			return fmt.Errorf("%q is not one of %s", s, strings.Join(def.Enum, ", "))
		}
	}
	if def.Validator != "" {
		if err := namedValidators[def.Validator](v); err != nil {
			return err
		}
	}
	return nil
}

func checkType(def FieldDef, v any) error {
	switch def.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		n := utf8.RuneCountInString(s)
		if def.MinLength > 0 && n < def.MinLength {
			return fmt.Errorf("shorter than %d characters", def.MinLength)
		}
		if def.MaxLength > 0 && n > def.MaxLength {
			return fmt.Errorf("longer than %d characters", def.MaxLength)
		}
	case TypeNumber:
		n, ok := asNumber(v)
		if !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return errors.New("not a finite number")
		}
	case TypeDate:
		if _, ok := parseISODate(v); !ok {
			return fmt.Errorf("expected YYYY-MM-DD date, got %v", v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", v)
		}
		if def.MinItems > 0 && len(items) < def.MinItems {
			return fmt.Errorf("fewer than %d items", def.MinItems)
		}
		if def.MaxItems > 0 && len(items) > def.MaxItems {
			return fmt.Errorf("more than %d items", def.MaxItems)
		}
		for i, item := range items {
			if err := checkItem(def.ItemType, item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	case TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", v)
		}
	default:
		return fmt.Errorf("unsupported field type %q", def.Type)
	}
	return nil
}

func checkItem(t FieldType, item any) error {
	switch t {
	case "":
		return nil
	case TypeString:
		if s, ok := item.(string); !ok || strings.TrimSpace(s) == "" {
			return errors.New("expected non-empty string")
		}
	case TypeObject:
		if obj, ok := item.(map[string]any); !ok || len(obj) == 0 {
			return errors.New("expected non-empty object")
		}
	case TypeNumber:
		if _, ok := asNumber(item); !ok {
			return errors.New("expected number")
		}
	default:
		return checkType(FieldDef{Type: t}, item)
	}
	return nil
}

func containsFold(options []string, s string) bool {
	for _, o := range options {
		if strings.EqualFold(o, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
