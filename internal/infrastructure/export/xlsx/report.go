// Package xlsx renders validation reports as Excel workbooks.
package xlsx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/fincadocs/internal/core/ports"
)

const (
	summarySheet = "Validation"
	fieldsSheet  = "Fields"
)

var summaryHeaders = []string{
	"Document ID", "Document Type", "Score", "Valid", "Missing Fields", "Invalid Fields", "Failed Rules",
}

var fieldsHeaders = []string{
	"Document ID", "Document Type", "Field", "Value", "Valid", "Error",
}

// ValidationReport returns a workbook with one summary row per record and one row per present field.
func ValidationReport(rows []ports.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, fmt.Errorf("create fields sheet: %w", err)
	}
	writeRow(f, summarySheet, 1, toCells(summaryHeaders))
	writeRow(f, fieldsSheet, 1, toCells(fieldsHeaders))

	fieldRow := 2
	for i, row := range rows {
		res := row.Validation
		writeRow(f, summarySheet, i+2, []any{
			row.Record.DocumentID,
			string(row.Record.DocumentType),
			res.Score,
			res.Valid,
			strings.Join(res.MissingFields, ", "),
			strings.Join(res.InvalidFields, ", "),
			strings.Join(failedRules(row), ", "),
		})

		names := make([]string, 0, len(res.Details))
		for name, detail := range res.Details {
			if detail.Present {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			detail := res.Details[name]
			writeRow(f, fieldsSheet, fieldRow, []any{
				row.Record.DocumentID,
				string(row.Record.DocumentType),
				name,
				cellValue(detail.Value),
				detail.Valid,
				detail.Error,
			})
			fieldRow++
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 38)
	_ = f.SetColWidth(summarySheet, "B", "D", 14)
	_ = f.SetColWidth(summarySheet, "E", "G", 40)
	_ = f.SetColWidth(fieldsSheet, "A", "A", 38)
	_ = f.SetColWidth(fieldsSheet, "B", "C", 22)
	_ = f.SetColWidth(fieldsSheet, "D", "D", 48)
	_ = f.SetColWidth(fieldsSheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func failedRules(row ports.ReportRow) []string {
	var out []string
	for _, rule := range row.Validation.Rules {
		if !rule.Passed {
			out = append(out, rule.Name)
		}
	}
	return out
}

// cellValue flattens lists and objects; excelize only renders scalars.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool, float64, float32, int, int64:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(val)
	}
}
