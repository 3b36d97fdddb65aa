package metadata

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/ports"
)

var reFencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ParseResponse turns a model answer into a JSON object, or nil when none can be recovered.
func ParseResponse(gen ports.Generation) map[string]any {
	if len(gen.Structured) > 0 {
		return gen.Structured
	}
	text := strings.TrimSpace(gen.Text)
	if text == "" {
		return nil
	}
	if obj := decodeObject(text); obj != nil {
		return obj
	}
	if m := reFencedJSON.FindStringSubmatch(text); m != nil {
		if obj := decodeObject(m[1]); obj != nil {
			return obj
		}
	}
	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := balancedEnd(text, start)
		if end < 0 {
			return nil
		}
		if obj := decodeObject(text[start : end+1]); obj != nil {
			return obj
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil
}

func decodeObject(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil
	}
	return obj
}

// balancedEnd returns the index of the brace closing the one at start, honoring JSON strings.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
