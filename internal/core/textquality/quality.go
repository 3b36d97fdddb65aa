// Package textquality scores extracted text for "reads like real text" versus
// "garbage that needs OCR". Everything here is pure and safe for concurrent use.
package textquality

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MinTextLength      = 100
	MaxArtifactRatio   = 0.05
	MinWordRatio       = 0.60
	MinWhitespaceRatio = 0.05
	MaxWhitespaceRatio = 0.45
	MaxMeanTokenLength = 25.0
)

var lookalikeRun = regexp.MustCompile(`[Il1|]{3,}`)

// Single-letter tokens that are real words in Spanish or English.
var oneLetterWords = map[string]struct{}{
	"a": {}, "y": {}, "o": {}, "e": {}, "u": {}, "i": {},
}

// Report explains the decision taken by NeedsOCR.
type Report struct {
	Length          int      `json:"length"`
	ArtifactRatio   float64  `json:"artifact_ratio"`
	WordRatio       float64  `json:"word_ratio"`
	WhitespaceRatio float64  `json:"whitespace_ratio"`
	MeanTokenLength float64  `json:"mean_token_length"`
	HasPunctuation  bool     `json:"has_punctuation"`
	Reasons         []string `json:"reasons,omitempty"`
}

// NeedsOCR returns true when natively extracted text fails any quality check.
func NeedsOCR(text string) (bool, Report) {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	report := Report{Length: len(runes)}

	if len(runes) < MinTextLength {
		report.Reasons = append(report.Reasons, "too_short")
		return true, report
	}

	tokens := strings.Fields(trimmed)
	report.ArtifactRatio = float64(countArtifacts(trimmed, tokens)) / float64(len(runes))
	report.WordRatio = wordRatio(tokens)
	report.WhitespaceRatio = whitespaceRatio(runes)
	report.MeanTokenLength = meanTokenLength(tokens)
	report.HasPunctuation = strings.ContainsAny(trimmed, ".,;:")

	if report.ArtifactRatio > MaxArtifactRatio {
		report.Reasons = append(report.Reasons, "artifacts")
	}
	if report.WordRatio < MinWordRatio {
		report.Reasons = append(report.Reasons, "few_words")
	}
	if !report.HasPunctuation {
		report.Reasons = append(report.Reasons, "no_punctuation")
	}
	if report.WhitespaceRatio < MinWhitespaceRatio || report.WhitespaceRatio > MaxWhitespaceRatio {
		report.Reasons = append(report.Reasons, "whitespace")
	}
	if report.MeanTokenLength > MaxMeanTokenLength {
		report.Reasons = append(report.Reasons, "long_tokens")
	}
	return len(report.Reasons) > 0, report
}

func countArtifacts(text string, tokens []string) int {
	count := 0
	for _, run := range lookalikeRun.FindAllString(text, -1) {
		// "111" and roman numerals are legitimate.
		if strings.Trim(run, "1") == "" || strings.Trim(run, "I") == "" {
			continue
		}
		count += len(run)
	}
	for _, tok := range tokens {
		core := trimEdgePunct(tok)
		if len([]rune(core)) != 1 {
			continue
		}
		r := []rune(core)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		if _, ok := oneLetterWords[strings.ToLower(core)]; !ok {
			count++
		}
	}
	for _, r := range text {
		if IsGarbageRune(r) {
			count++
		}
	}
	return count
}

// IsGarbageRune reports runes that never appear in linguistic text.
func IsGarbageRune(r rune) bool {
	switch {
	case r == unicode.ReplacementChar:
		return true
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r >= 0x2500 && r <= 0x259F:
		return true
	case unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' && r != '\f':
		return true
	}
	return false
}

func wordRatio(tokens []string) float64 {
	words, counted := 0, 0
	for _, tok := range tokens {
		core := trimEdgePunct(tok)
		if isNumeric(core) {
			continue
		}
		counted++
		if isNormalWord(core) {
			words++
		}
	}
	if counted == 0 {
		return 0
	}
	return float64(words) / float64(counted)
}

func isNormalWord(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
		n++
	}
	return n >= 3
}

// isNumeric matches amounts, dates and references such as 1.234,56 or 19/05/2022.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(".,/-:%€$", r):
		default:
			return false
		}
	}
	return digits > 0
}

// whitespaceRatio counts each whitespace run once, so column padding from layout
// extraction reads the same as single spacing.
func whitespaceRatio(runes []rune) float64 {
	runs, visible := 0, 0
	inSpace := false
	for _, r := range runes {
		if unicode.IsSpace(r) {
			if !inSpace {
				runs++
			}
			inSpace = true
			continue
		}
		inSpace = false
		visible++
	}
	if runs+visible == 0 {
		return 0
	}
	return float64(runs) / float64(runs+visible)
}

func meanTokenLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, tok := range tokens {
		total += len([]rune(tok))
	}
	return float64(total) / float64(len(tokens))
}

func trimEdgePunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
