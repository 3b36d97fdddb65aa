package metadata

import (
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

type promptKey struct {
	Name string
	Hint string
}

// typeSpec binds one document type to its prompt, key aliases and conversion.
type typeSpec struct {
	docType domain.DocumentType
	intro   string
	keys    []promptKey
	aliases map[string]string
	convert func(raw map[string]any) domain.ExtractedFields
}

func (s typeSpec) prompt(filename, sample string) string {
	var b strings.Builder
	b.WriteString(s.intro)
	b.WriteString("\n\nDevuelve SOLO un objeto JSON con exactamente estas claves. ")
	b.WriteString("Usa null si el dato no aparece en el documento; no inventes valores.\n{\n")
	for i, k := range s.keys {
		b.WriteString(`  "`)
		b.WriteString(k.Name)
		b.WriteString(`": `)
		b.WriteString(k.Hint)
		b.WriteString(" o null")
		if i < len(s.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n\nFechas en formato YYYY-MM-DD. Importes como número sin símbolo de moneda.\n")
	if filename != "" {
		b.WriteString("\nArchivo: ")
		b.WriteString(filename)
		b.WriteByte('\n')
	}
	b.WriteString("\nDocumento:\n")
	b.WriteString(sample)
	return b.String()
}

// canonicalize renames alias keys. A canonical key already present wins over its alias.
func (s typeSpec) canonicalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if canonical, ok := s.aliases[key]; ok {
			if _, exists := raw[canonical]; exists {
				continue
			}
			key = canonical
		}
		out[key] = v
	}
	return out
}

func topicKeys(names ...string) []promptKey {
	out := make([]promptKey, 0, len(names))
	for _, n := range names {
		out = append(out, promptKey{Name: "topic_" + n, Hint: "true/false si se trata el tema " + n})
	}
	return out
}

// topicAliases maps the hyphenated spelling models tend to emit to the canonical key.
func topicAliases(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out["topic-"+n] = "topic_" + n
	}
	return out
}

func mergeAliases(sets ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
