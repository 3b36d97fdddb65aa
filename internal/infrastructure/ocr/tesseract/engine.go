package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/cmdrunner"
)

// languages maps ISO codes to tesseract traineddata names.
var languages = map[string]string{
	"es": "spa",
	"en": "eng",
	"ca": "cat",
}

// Engine runs the tesseract CLI per page and reads word confidences from its TSV output.
type Engine struct {
	runner cmdrunner.Runner
	bin    string
	logger *slog.Logger
}

func New(runner cmdrunner.Runner, bin string, logger *slog.Logger) *Engine {
	if runner == nil {
		runner = cmdrunner.ExecRunner{}
	}
	if bin == "" {
		bin = "tesseract"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{runner: runner, bin: bin, logger: logger}
}

func (e *Engine) RecognizePage(ctx context.Context, req ports.OCRPageRequest) (ports.OCRPage, error) {
	if len(req.Image) == 0 {
		return ports.OCRPage{}, domain.WrapError(domain.ErrInvalidInput, "tesseract", fmt.Errorf("empty image"))
	}
	path, cleanup, err := cmdrunner.TempFile("fincadocs-ocr-*"+imageExt(req.MIME), req.Image)
	if err != nil {
		return ports.OCRPage{}, err
	}
	defer cleanup()

	stdout, stderr, err := e.runner.Run(ctx, e.bin, e.logger, path, "stdout", "-l", language(req.Language), "tsv")
	if err != nil {
		if ctx.Err() != nil {
			return ports.OCRPage{}, err
		}
		return ports.OCRPage{}, domain.WrapError(domain.ErrOCRUnavailable, "tesseract",
			fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(stderr)), 512)))
	}
	text, confidence := ParseTSV(string(stdout))
	return ports.OCRPage{Text: text, Confidence: confidence}, nil
}

func language(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "spa"
	}
	if mapped, ok := languages[code]; ok {
		return mapped
	}
	return code
}

func imageExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/tiff":
		return ".tif"
	default:
		return ".png"
	}
}

// ParseTSV rebuilds page text from tesseract TSV rows and returns the mean word
// confidence scaled to [0,1]. Rows with conf -1 are layout rows, not words.
func ParseTSV(tsv string) (string, float64) {
	var (
		b        strings.Builder
		lastLine string
		lastPar  string
		sum      float64
		words    int
	)
	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 && strings.HasPrefix(row, "level") {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		word := strings.TrimSpace(cols[11])
		if err != nil || conf < 0 || word == "" {
			continue
		}
		par := cols[2] + "." + cols[3]
		line := par + "." + cols[4]
		switch {
		case words == 0:
		case par != lastPar:
			b.WriteString("\n\n")
		case line != lastLine:
			b.WriteByte('\n')
		default:
			b.WriteByte(' ')
		}
		b.WriteString(word)
		lastPar, lastLine = par, line
		sum += conf
		words++
	}
	if words == 0 {
		return "", 0
	}
	return b.String(), sum / float64(words) / 100
}
