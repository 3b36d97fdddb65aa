package textquality

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const goodInvoiceText = `Comunidad Propietarios Residencial Jardines. Factura emitida por Limpiezas Brillantes,
servicio mensual limpieza portales escaleras garajes. Importe total pendiente abono mediante
transferencia bancaria antes del vencimiento indicado. Gracias por confiar nuestros servicios profesionales.`

func TestNeedsOCRShortText(t *testing.T) {
	for _, text := range []string{"", "   ", "Factura 12", strings.Repeat("palabra ", 11)} {
		needs, report := NeedsOCR(text)
		if !needs {
			t.Fatalf("expected short text %q to need OCR, report=%+v", text, report)
		}
		if len(report.Reasons) == 0 || report.Reasons[0] != "too_short" {
			t.Fatalf("expected too_short reason, got %+v", report.Reasons)
		}
	}
}

func TestNeedsOCRAcceptsLongLinguisticText(t *testing.T) {
	needs, report := NeedsOCR(goodInvoiceText)
	if needs {
		t.Fatalf("expected good text to avoid OCR, report=%+v", report)
	}
	if report.WordRatio < MinWordRatio {
		t.Fatalf("unexpected word ratio %.2f", report.WordRatio)
	}
}

func TestNeedsOCRIgnoresNumericTokens(t *testing.T) {
	text := goodInvoiceText + " Total 1.234,56 € 19/05/2022 21% 1.020,30 214,26"
	needs, report := NeedsOCR(text)
	if needs {
		t.Fatalf("numbers should not push text to OCR, report=%+v", report)
	}
}

func TestNeedsOCRFlagsLookalikeGlyphs(t *testing.T) {
	text := goodInvoiceText + " " + strings.Repeat("lll|I1l ", 6)
	needs, report := NeedsOCR(text)
	if !needs {
		t.Fatalf("expected artifact-heavy text to need OCR, report=%+v", report)
	}
	if !containsReason(report, "artifacts") {
		t.Fatalf("expected artifacts reason, got %+v", report.Reasons)
	}
}

func TestNeedsOCRFlagsStrayLetters(t *testing.T) {
	text := strings.Repeat("C o m u n i d a d p r o p i e t a r i o s . ", 6)
	needs, report := NeedsOCR(text)
	if !needs {
		t.Fatalf("expected spaced-out letters to need OCR, report=%+v", report)
	}
}

func TestNeedsOCRFlagsMissingWhitespace(t *testing.T) {
	text := strings.Repeat("ComunidadPropietariosResidencialJardines.", 4)
	needs, report := NeedsOCR(text)
	if !needs {
		t.Fatalf("expected text without whitespace to need OCR, report=%+v", report)
	}
	if !containsReason(report, "whitespace") {
		t.Fatalf("expected whitespace reason, got %+v", report.Reasons)
	}
}

func TestNeedsOCRAcceptsColumnPaddedLayoutText(t *testing.T) {
	line := strings.Join(strings.Fields("Factura emitida para comunidad propietarios portal."), "          ")
	text := strings.Repeat(line+"\n", 20)
	if utf8.RuneCountInString(text) < 1000 {
		t.Fatalf("fixture too short: %d runes", utf8.RuneCountInString(text))
	}

	needs, report := NeedsOCR(text)
	if needs {
		t.Fatalf("expected padded layout text to avoid OCR, report=%+v", report)
	}
	if report.WhitespaceRatio > MaxWhitespaceRatio {
		t.Fatalf("padding inflated whitespace ratio to %.2f", report.WhitespaceRatio)
	}
}

func TestNeedsOCRFlagsGarbageRunes(t *testing.T) {
	text := goodInvoiceText + " " + strings.Repeat("\uFFFD\uE001", 15)
	needs, _ := NeedsOCR(text)
	if !needs {
		t.Fatalf("expected replacement/private-use runes to need OCR")
	}
}

func TestNeedsOCRRequiresPunctuation(t *testing.T) {
	text := strings.NewReplacer(".", "", ",", "").Replace(goodInvoiceText)
	needs, report := NeedsOCR(text)
	if !needs || !containsReason(report, "no_punctuation") {
		t.Fatalf("expected no_punctuation, got needs=%v report=%+v", needs, report)
	}
}

func TestSampleKeepsShortTextWhole(t *testing.T) {
	if got := Sample("hola mundo", 100); got != "hola mundo" {
		t.Fatalf("unexpected sample %q", got)
	}
}

func TestSampleTakesHeadAndDisjointMiddle(t *testing.T) {
	text := strings.Repeat("a", 500) + strings.Repeat("b", 500) + strings.Repeat("c", 500)
	got := Sample(text, 200)

	parts := strings.Split(got, sampleSeparator)
	if len(parts) != 2 {
		t.Fatalf("expected head and middle, got %d parts", len(parts))
	}
	if parts[0] != strings.Repeat("a", 100) {
		t.Fatalf("unexpected head %q", parts[0])
	}
	if parts[1] != strings.Repeat("b", 100) {
		t.Fatalf("unexpected middle %q", parts[1])
	}
}

func TestSampleIsRuneSafe(t *testing.T) {
	text := strings.Repeat("ñá", 300)
	got := Sample(text, 101)
	if !utf8.ValidString(got) {
		t.Fatalf("sample split a multi-byte rune")
	}
	if n := utf8.RuneCountInString(strings.Replace(got, sampleSeparator, "", 1)); n != 101 {
		t.Fatalf("expected 101 runes, got %d", n)
	}
}

func containsReason(report Report, reason string) bool {
	for _, r := range report.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}
