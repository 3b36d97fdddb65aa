package extraction

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/ports"
)

const spanishMinutes = `Comunidad Propietarios Residencial Jardines. Reunida junta ordinaria presidida por Juan Pérez,
administrador Fincas Levante, aprobadas cuentas ejercicio anterior, presupuesto mantenimiento ascensor,
derrama extraordinaria para reparación fachada principal. Próxima convocatoria anunciada oportunamente.`

const ocrPageText = "La comunidad de propietarios aprobó en la junta el presupuesto de mantenimiento del ascensor y la factura de limpieza."

type fakeRunner struct {
	mu     sync.Mutex
	stdout []byte
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("Syntax Error: broken"), f.err
	}
	return f.stdout, nil, nil
}

type fakeRaster struct {
	pages int
	err   error
	opts  ports.RasterOptions
}

func (f *fakeRaster) Rasterize(_ context.Context, _ []byte, opts ports.RasterOptions) ([]ports.PageImage, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ports.PageImage, f.pages)
	for i := range out {
		out[i] = ports.PageImage{Number: i + 1, Data: []byte{byte(i)}, MIME: "image/png"}
	}
	return out, nil
}

// fakeOCR answers the n-th call with texts[n-1]; a missing entry is an empty page.
type fakeOCR struct {
	mu         sync.Mutex
	texts      []string
	confidence float64
	err        error
	block      bool
	delay      time.Duration
	calls      int
	langs      []string
}

func (f *fakeOCR) RecognizePage(ctx context.Context, req ports.OCRPageRequest) (ports.OCRPage, error) {
	f.mu.Lock()
	f.calls++
	idx := f.calls - 1
	f.langs = append(f.langs, req.Language)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return ports.OCRPage{}, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ports.OCRPage{}, ctx.Err()
		}
	}
	if f.err != nil {
		return ports.OCRPage{}, f.err
	}
	if idx >= len(f.texts) {
		return ports.OCRPage{}, nil
	}
	return ports.OCRPage{Text: f.texts[idx], Confidence: f.confidence}, nil
}

var errBoom = errors.New("boom")
