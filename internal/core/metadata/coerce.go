package metadata

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

const (
	shortText = 300
	longText  = 4000
	maxItems  = 200
	maxList   = 50
)

var nullish = map[string]struct{}{
	"": {}, "null": {}, "none": {}, "n/a": {}, "na": {}, "-": {}, "--": {}, "desconocido": {}, "no consta": {},
}

// String trims v and truncates it to max runes. Placeholders such as "null" or "n/a" become nil.
func String(v any, max int) *string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	default:
		return nil
	}
	s = strings.Join(strings.Fields(s), " ")
	if _, ok := nullish[strings.ToLower(s)]; ok {
		return nil
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return &s
}

// Keyword lowercases and strips accents so "Único" matches the enum value "unico".
func Keyword(v any) *string {
	s := String(v, shortText)
	if s == nil {
		return nil
	}
	folded := textquality.Fold(*s)
	return &folded
}

// Upper is used for identifiers such as tax ids and currency codes.
func Upper(v any, max int) *string {
	s := String(v, max)
	if s == nil {
		return nil
	}
	up := strings.ToUpper(*s)
	return &up
}

// Number accepts JSON numbers and locale-formatted strings such as "1.234,56 €" or "1,234.56".
func Number(v any) *float64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return &val
	case int:
		f := float64(val)
		return &f
	case string:
		f, ok := ParseLocaleNumber(val)
		if !ok {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ParseLocaleNumber reads Spanish and English number formats.
// With both separators present the last one is the decimal mark; a single comma is
// decimal; a single dot followed by exactly three digits is a thousands separator.
func ParseLocaleNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == ' ', r == '+', r == '%', r == '€', r == '$', r == '£':
		case unicode.IsLetter(r):
			// currency codes such as EUR are dropped
		default:
			return 0, false
		}
	}
	s := b.String()
	if s == "" || strings.Count(s, "-") > 1 || (strings.Contains(s, "-") && !strings.HasPrefix(s, "-")) {
		return 0, false
	}

	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1:
		idx := strings.Index(s, ".")
		if len(s)-idx-1 == 3 && strings.TrimLeft(s[:idx], "-") != "0" {
			s = strings.Replace(s, ".", "", 1)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/1/2",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March, "abril": time.April,
	"mayo": time.May, "junio": time.June, "julio": time.July, "agosto": time.August,
	"septiembre": time.September, "setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

var reSpanishDate = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóú]+)\s+(?:de|del)\s+(\d{4})`)

// Date normalizes v to YYYY-MM-DD, or nil when it is not a recognizable date.
func Date(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, ok := ParseDate(s)
	if !ok {
		return nil
	}
	out := t.Format(time.DateOnly)
	return &out
}

func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, plausibleYear(t)
		}
	}
	if m := reSpanishDate.FindStringSubmatch(s); m != nil {
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day {
			return time.Time{}, false
		}
		return t, plausibleYear(t)
	}
	return time.Time{}, false
}

func plausibleYear(t time.Time) bool {
	return t.Year() >= 1900 && t.Year() <= 2100
}

var (
	truthy = map[string]struct{}{"sí": {}, "si": {}, "s": {}, "yes": {}, "y": {}, "true": {}, "1": {}, "x": {}, "verdadero": {}, "✓": {}}
	falsy  = map[string]struct{}{"no": {}, "n": {}, "false": {}, "0": {}, "falso": {}}
)

// Bool maps the heterogeneous truthy values models emit to a boolean.
func Bool(v any) *bool {
	var out bool
	switch val := v.(type) {
	case bool:
		out = val
	case float64:
		if val != 0 && val != 1 {
			return nil
		}
		out = val == 1
	case string:
		key := strings.ToLower(strings.TrimSpace(val))
		if _, ok := truthy[key]; ok {
			out = true
		} else if _, ok := falsy[key]; !ok {
			return nil
		}
	default:
		return nil
	}
	return &out
}

// StringList keeps up to max non-empty strings. A delimited string is split.
func StringList(v any, max int) []string {
	var raw []any
	switch val := v.(type) {
	case []any:
		raw = val
	case string:
		sep := ","
		switch {
		case strings.Contains(val, "\n"):
			sep = "\n"
		case strings.Contains(val, ";"):
			sep = ";"
		}
		for _, part := range strings.Split(val, sep) {
			raw = append(raw, strings.TrimLeft(strings.TrimSpace(part), "-•* "))
		}
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if len(out) == max {
			break
		}
		if s := String(item, shortText); s != nil {
			out = append(out, *s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Object returns v as a non-empty JSON object.
func Object(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil
	}
	return obj
}

// Items converts an array of objects into line items, dropping entries with no usable field.
func Items(v any) []domain.LineItem {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.LineItem, 0, len(raw))
	for _, entry := range raw {
		if len(out) == maxItems {
			break
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := domain.LineItem{
			Description: String(first(obj, "description", "descripcion", "concepto", "concept"), shortText),
			Quantity:    Number(first(obj, "quantity", "cantidad", "units")),
			UnitPrice:   Number(first(obj, "unit_price", "precio_unitario", "price", "precio")),
			Amount:      Number(first(obj, "amount", "importe", "total")),
		}
		if item.Description == nil && item.Quantity == nil && item.UnitPrice == nil && item.Amount == nil {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Count coerces a declared count to a whole non-negative number.
func Count(v any) *float64 {
	n := Number(v)
	if n == nil || *n < 0 || *n != math.Trunc(*n) {
		return nil
	}
	return n
}

func first(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
