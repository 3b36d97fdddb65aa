package classify

import (
	"path/filepath"
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/textquality"
)

type keywordRule struct {
	docType domain.DocumentType
	words   []string
}

// filenameKeywords is checked in order; the first rule with a matching word wins.
var filenameKeywords = []keywordRule{
	{domain.TypeActa, []string{"acta", "junta", "asamblea", "reunion"}},
	{domain.TypeFactura, []string{"factura", "invoice"}},
	{domain.TypeComunicado, []string{"comunicado", "circular", "aviso", "notificacion", "convocatoria"}},
	{domain.TypeContrato, []string{"contrato", "contract", "acuerdo"}},
	{domain.TypeEscritura, []string{"escritura", "notaria", "notarial", "deed"}},
	{domain.TypeAlbaran, []string{"albaran", "delivery", "entrega"}},
	{domain.TypePresupuesto, []string{"presupuesto", "budget", "cotizacion", "oferta", "quote"}},
}

// TypeFromFilename matches the base name against the keyword dictionary, ignoring case and accents.
func TypeFromFilename(filename string) (domain.DocumentType, bool) {
	name := textquality.Fold(filepath.Base(strings.TrimSpace(filename)))
	if name == "" || name == "." {
		return "", false
	}
	for _, rule := range filenameKeywords {
		for _, w := range rule.words {
			if strings.Contains(name, w) {
				return rule.docType, true
			}
		}
	}
	return "", false
}
