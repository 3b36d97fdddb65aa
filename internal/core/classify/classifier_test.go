package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  int
	last   ports.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req ports.GenerateRequest) (ports.Generation, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return ports.Generation{}, f.err
	}
	return ports.Generation{Text: f.answer, PromptTokens: 400, OutputTokens: 2}, nil
}

func TestClassifyAcceptsNormalizedAIAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: "  Albarán.\n"}
	out := New(gen, Config{}, nil).Classify(context.Background(), Request{Filename: "doc.pdf", Text: "texto"})

	if out.Result.Type != domain.TypeAlbaran || out.Result.Method != domain.ClassifiedByAI || out.Result.Confidence != 0.9 {
		t.Fatalf("unexpected result %+v", out.Result)
	}
	if out.Usage.Calls != 1 || out.Usage.PromptTokens != 400 {
		t.Fatalf("unexpected usage %+v", out.Usage)
	}
	if gen.last.Temperature != 0 || gen.last.MaxOutputTokens != 10 || gen.last.JSON {
		t.Fatalf("unexpected request settings %+v", gen.last)
	}
}

func TestClassifyFallsBackToFilename(t *testing.T) {
	gen := &fakeGenerator{answer: "recibo"}
	out := New(gen, Config{}, nil).Classify(context.Background(), Request{Filename: "Factura_0042.pdf", Text: "texto"})

	if out.Result.Type != domain.TypeFactura || out.Result.Method != domain.ClassifiedByFilename || out.Result.Confidence != 0.7 {
		t.Fatalf("unexpected result %+v", out.Result)
	}
	if out.Usage.Calls != 1 {
		t.Fatalf("failed AI call must still be accounted, got %+v", out.Usage)
	}
}

func TestClassifyFallsBackToDefault(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	out := New(gen, Config{}, nil).Classify(context.Background(), Request{Filename: "scan0001.pdf", Text: "texto"})

	if out.Result.Type != domain.TypeComunicado || out.Result.Method != domain.ClassifiedByDefault || out.Result.Confidence != 0.5 {
		t.Fatalf("unexpected result %+v", out.Result)
	}
}

func TestClassifyConfiguredDefault(t *testing.T) {
	out := New(nil, Config{DefaultType: domain.TypeActa}, nil).Classify(context.Background(), Request{Filename: "x.pdf"})
	if out.Result.Type != domain.TypeActa || out.Result.Method != domain.ClassifiedByDefault {
		t.Fatalf("unexpected result %+v", out.Result)
	}
}

func TestClassifySkipsAIWithoutText(t *testing.T) {
	gen := &fakeGenerator{answer: "factura"}
	out := New(gen, Config{}, nil).Classify(context.Background(), Request{Filename: "presupuesto.pdf", Text: "  "})
	if gen.calls != 0 || out.Result.Type != domain.TypePresupuesto {
		t.Fatalf("expected filename classification without an AI call, got %+v calls=%d", out.Result, gen.calls)
	}
}

func TestClassifyCachesByContentHash(t *testing.T) {
	gen := &fakeGenerator{answer: "contrato"}
	c := New(gen, Config{CacheSize: 8}, nil)
	req := Request{Filename: "a.pdf", Text: "texto", ContentHash: "abc"}

	first := c.Classify(context.Background(), req)
	second := c.Classify(context.Background(), req)
	if gen.calls != 1 {
		t.Fatalf("expected one AI call, got %d", gen.calls)
	}
	if first.Cached || !second.Cached || second.Result.Type != domain.TypeContrato || second.Usage.Calls != 0 {
		t.Fatalf("unexpected cache behavior first=%+v second=%+v", first, second)
	}
}

func TestClassifyDoesNotCacheFallbacks(t *testing.T) {
	gen := &fakeGenerator{answer: "no lo sé"}
	c := New(gen, Config{CacheSize: 8}, nil)
	req := Request{Filename: "acta.pdf", Text: "texto", ContentHash: "abc"}
	c.Classify(context.Background(), req)
	c.Classify(context.Background(), req)
	if gen.calls != 2 {
		t.Fatalf("fallback results must not be cached, got %d calls", gen.calls)
	}
}

func TestPromptSamplesLongText(t *testing.T) {
	gen := &fakeGenerator{answer: "acta"}
	text := strings.Repeat("inicio ", 200) + strings.Repeat("medio ", 2000) + strings.Repeat("final ", 2000)
	New(gen, Config{SampleChars: 1000}, nil).Classify(context.Background(), Request{Filename: "a.pdf", Text: text})

	if !strings.Contains(gen.last.Prompt, "inicio") || !strings.Contains(gen.last.Prompt, "a.pdf") {
		t.Fatalf("prompt lacks the head sample or filename")
	}
	if len([]rune(gen.last.Prompt)) > 1500 {
		t.Fatalf("prompt should carry a bounded sample, got %d runes", len([]rune(gen.last.Prompt)))
	}
}

func TestTypeFromFilename(t *testing.T) {
	cases := map[string]domain.DocumentType{
		"ACTA_junta_2024.pdf":      domain.TypeActa,
		"/tmp/uploads/Reunión.pdf": domain.TypeActa,
		"invoice-123.pdf":          domain.TypeFactura,
		"Notificación vecinos.pdf": domain.TypeComunicado,
		"contrato_ascensor.pdf":    domain.TypeContrato,
		"Escritura división.pdf":   domain.TypeEscritura,
		"albarán 77.pdf":           domain.TypeAlbaran,
		"Cotización pintura.pdf":   domain.TypePresupuesto,
		"acta_y_factura.pdf":       domain.TypeActa,
	}
	for name, want := range cases {
		got, ok := TypeFromFilename(name)
		if !ok || got != want {
			t.Fatalf("TypeFromFilename(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	if _, ok := TypeFromFilename("scan_0001.pdf"); ok {
		t.Fatalf("expected no match for a neutral filename")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	for in, want := range map[string]domain.DocumentType{
		"factura":       domain.TypeFactura,
		"PRESUPUESTO":   domain.TypePresupuesto,
		"'escritura'\n": domain.TypeEscritura,
	} {
		if got, ok := NormalizeAnswer(in); !ok || got != want {
			t.Fatalf("NormalizeAnswer(%q) = %q, %v", in, got, ok)
		}
	}
	for _, in := range []string{"", "recibo", "tipo: factura"} {
		if _, ok := NormalizeAnswer(in); ok {
			t.Fatalf("NormalizeAnswer(%q) should be rejected", in)
		}
	}
}
