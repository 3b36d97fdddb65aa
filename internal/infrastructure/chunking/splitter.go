package chunking

import "strings"

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// breakMarks are tried in order when looking for a cut point in the tail of a window.
var breakMarks = []string{"\n\n", "\f", ".\n", ". ", "\n", "; ", " "}

// Split cuts text into windows of at most ChunkSize runes. A window ends at the
// strongest boundary found in its last third (paragraph, page, sentence, word),
// and the next window starts Overlap runes before that cut.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cut(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func (s *Splitter) cut(runes []rune, start, end int) int {
	floor := end - s.ChunkSize/3
	if floor <= start {
		floor = start + 1
	}
	window := string(runes[floor:end])
	for _, mark := range breakMarks {
		idx := strings.LastIndex(window, mark)
		if idx < 0 {
			continue
		}
		return floor + len([]rune(window[:idx+len(mark)]))
	}
	return end
}
