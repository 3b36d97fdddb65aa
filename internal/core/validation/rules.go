package validation

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

const defaultSumTolerance = 0.02

// evaluateRule passes when any input is absent; absence is reported by field checks instead.
func evaluateRule(rule RuleDef, values map[string]any) domain.RuleResult {
	out := domain.RuleResult{Name: rule.Name, Passed: true}
	for _, name := range rule.Fields {
		if !isPresent(values[name]) {
			out.Message = "skipped: " + name + " absent"
			return out
		}
	}

	switch rule.Kind {
	case RuleDateOrder:
		start, okStart := parseISODate(values[rule.Fields[0]])
		end, okEnd := parseISODate(values[rule.Fields[1]])
		if !okStart || !okEnd {
			out.Message = "skipped: unparseable date"
			return out
		}
		if end.Before(start) {
			out.Passed = false
			out.Message = fmt.Sprintf("%s precedes %s", rule.Fields[1], rule.Fields[0])
		}
	case RuleCountMatches:
		count, okCount := asNumber(values[rule.Fields[0]])
		items, okItems := values[rule.Fields[1]].([]any)
		if !okCount || !okItems {
			out.Message = "skipped: wrong input types"
			return out
		}
		if int(count) != len(items) || count != math.Trunc(count) {
			out.Passed = false
			out.Message = fmt.Sprintf("%s=%v but %s has %d items", rule.Fields[0], count, rule.Fields[1], len(items))
		}
	case RuleMinLength:
		s, ok := values[rule.Fields[0]].(string)
		if !ok {
			out.Message = "skipped: not a string"
			return out
		}
		if n := utf8.RuneCountInString(s); n < rule.Min {
			out.Passed = false
			out.Message = fmt.Sprintf("%s has %d characters, minimum %d", rule.Fields[0], n, rule.Min)
		}
	case RuleSumMatches:
		parts := rule.Fields[:len(rule.Fields)-1]
		totalName := rule.Fields[len(rule.Fields)-1]
		total, ok := asNumber(values[totalName])
		if !ok {
			out.Message = "skipped: total not numeric"
			return out
		}
		sum := 0.0
		for _, name := range parts {
			n, ok := asNumber(values[name])
			if !ok {
				out.Message = "skipped: part not numeric"
				return out
			}
			sum += n
		}
		tolerance := rule.Tolerance
		if tolerance <= 0 {
			tolerance = defaultSumTolerance
		}
		if math.Abs(sum-total) > tolerance {
			out.Passed = false
			out.Message = fmt.Sprintf("parts sum to %.2f, %s is %.2f", sum, totalName, total)
		}
	default:
		out.Passed = false
		out.Message = fmt.Sprintf("unknown rule kind %q", rule.Kind)
	}
	return out
}
