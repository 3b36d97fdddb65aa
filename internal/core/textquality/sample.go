package textquality

import "strings"

const sampleSeparator = "\n...\n"

// Sample returns at most budget runes of text: the first half of the budget
// from the start, the rest from a disjoint slice around the middle.
func Sample(text string, budget int) string {
	runes := []rune(text)
	if budget <= 0 || len(runes) <= budget {
		return text
	}

	head := budget / 2
	rest := budget - head
	start := len(runes)/2 - rest/2
	if start < head {
		start = head
	}
	end := start + rest
	if end > len(runes) {
		end = len(runes)
		start = end - rest
	}

	var b strings.Builder
	b.WriteString(string(runes[:head]))
	b.WriteString(sampleSeparator)
	b.WriteString(string(runes[start:end]))
	return b.String()
}
