package textquality

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	weightStopwords  = 0.35
	weightAlpha      = 0.25
	weightNoGarbage  = 0.25
	weightVocabulary = 0.15

	// Typical prose has roughly a third of stop words; a quarter already reads as language.
	stopwordSaturation  = 0.25
	vocabularySaturated = 3
)

var stopwords = map[string]map[string]struct{}{
	"es": setOf("de", "la", "el", "en", "y", "a", "los", "las", "del", "que", "por", "con", "para",
		"se", "un", "una", "al", "lo", "su", "sus", "es", "no", "como", "o", "este", "esta", "le", "son"),
	"en": setOf("the", "of", "and", "to", "in", "a", "is", "for", "on", "that", "with", "by", "as",
		"at", "from", "this", "be", "are", "or", "an", "it", "was", "not"),
}

var domainVocabulary = setOf(
	"comunidad", "propietarios", "presidente", "administrador", "administradora", "secretario",
	"junta", "acta", "asamblea", "reunión", "reunion", "orden", "acuerdo", "acuerdos",
	"factura", "importe", "total", "iva", "base", "cif", "nif", "fecha", "vencimiento",
	"contrato", "partes", "cláusula", "clausula", "notario", "escritura", "registro",
	"albarán", "albaran", "entrega", "presupuesto", "euros", "eur", "portal", "vecinos",
	"derrama", "cuota", "mantenimiento", "ascensor", "piscina", "comunicado",
)

// Runs of glyphs outside letters, digits and ordinary punctuation. Rotated or
// upside-down pages produce these in bulk.
var garbageCluster = regexp.MustCompile(`[^\p{L}\p{N}\s.,;:()¿?¡!'"/%€$ºª\-]{2,}`)

// ScoreOCRText rates OCR output of a single page in [0,1].
func ScoreOCRText(text, lang string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}

	score := weightStopwords*stopwordScore(tokens, lang) +
		weightAlpha*alphaRatio(text) +
		weightNoGarbage*noGarbageScore(text, len(tokens)) +
		weightVocabulary*vocabularyScore(tokens)
	return clamp01(score)
}

// BlendConfidence mixes the heuristic page score with a provider confidence when one exists.
func BlendConfidence(heuristic, provider float64) float64 {
	if provider <= 0 {
		return clamp01(heuristic)
	}
	return clamp01(0.7*heuristic + 0.3*provider)
}

func stopwordScore(tokens []string, lang string) float64 {
	set, ok := stopwords[strings.ToLower(lang)]
	if !ok {
		set = stopwords["es"]
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := set[trimEdgePunct(tok)]; ok {
			hits++
		}
	}
	ratio := float64(hits) / float64(len(tokens))
	return clamp01(ratio / stopwordSaturation)
}

func alphaRatio(text string) float64 {
	letters, visible := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if visible == 0 {
		return 0
	}
	return float64(letters) / float64(visible)
}

func noGarbageScore(text string, tokenCount int) float64 {
	clusters := len(garbageCluster.FindAllString(text, -1))
	for _, r := range text {
		if IsGarbageRune(r) {
			clusters++
		}
	}
	penalty := float64(clusters) * 5 / float64(tokenCount)
	return clamp01(1 - penalty)
}

func vocabularyScore(tokens []string) float64 {
	seen := map[string]struct{}{}
	for _, tok := range tokens {
		core := trimEdgePunct(tok)
		if _, ok := domainVocabulary[core]; ok {
			seen[core] = struct{}{}
		}
	}
	return clamp01(float64(len(seen)) / vocabularySaturated)
}

func setOf(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
