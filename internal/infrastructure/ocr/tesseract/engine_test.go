package tesseract

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t2480\t3508\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t100\t200\t40\t96.5\tACTA\n" +
	"5\t1\t1\t1\t1\t2\t320\t100\t80\t40\t93.5\tDE\n" +
	"5\t1\t1\t1\t2\t1\t100\t150\t300\t40\t90\tJUNTA\n" +
	"5\t1\t2\t1\t1\t1\t100\t300\t400\t40\t80\tComunidad\n"

type stubRunner struct {
	stdout string
	err    error
	args   []string
}

func (s *stubRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.args = append([]string{name}, args...)
	if s.err != nil {
		return nil, []byte("Error opening data file"), s.err
	}
	return []byte(s.stdout), nil, nil
}

func TestParseTSVRebuildsLayout(t *testing.T) {
	text, conf := ParseTSV(sampleTSV)
	if text != "ACTA DE\nJUNTA\n\nComunidad" {
		t.Fatalf("unexpected text %q", text)
	}
	if math.Abs(conf-0.9) > 1e-9 {
		t.Fatalf("expected confidence 0.9, got %v", conf)
	}
}

func TestParseTSVWithoutWords(t *testing.T) {
	text, conf := ParseTSV("level\tpage_num\n1\t1\t0\t0\t0\t0\t0\t0\t1\t1\t-1\t\n")
	if text != "" || conf != 0 {
		t.Fatalf("expected empty page, got %q %v", text, conf)
	}
}

func TestRecognizePageMapsLanguage(t *testing.T) {
	runner := &stubRunner{stdout: sampleTSV}
	engine := New(runner, "", nil)

	page, err := engine.RecognizePage(context.Background(), ports.OCRPageRequest{Image: []byte{1}, MIME: "image/png", Language: "es"})
	if err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if !strings.HasPrefix(page.Text, "ACTA") || page.Confidence == 0 {
		t.Fatalf("unexpected page %+v", page)
	}
	joined := strings.Join(runner.args, " ")
	if !strings.Contains(joined, "stdout -l spa tsv") || !strings.HasSuffix(runner.args[1], ".png") {
		t.Fatalf("unexpected args %v", runner.args)
	}
}

func TestRecognizePageFailureIsOCRUnavailable(t *testing.T) {
	engine := New(&stubRunner{err: errors.New("exit status 1")}, "", nil)

	_, err := engine.RecognizePage(context.Background(), ports.OCRPageRequest{Image: []byte{1}})
	if !domain.IsKind(err, domain.ErrOCRUnavailable) {
		t.Fatalf("expected ErrOCRUnavailable, got %v", err)
	}
}
