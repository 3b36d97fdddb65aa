package pdftoppm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/cmdrunner"
)

const (
	defaultDPI = 300
	minDPI     = 200
)

// Rasterizer renders PDF pages to PNG through poppler's pdftoppm.
type Rasterizer struct {
	runner cmdrunner.Runner
	bin    string
	logger *slog.Logger
}

func New(runner cmdrunner.Runner, bin string, logger *slog.Logger) *Rasterizer {
	if runner == nil {
		runner = cmdrunner.ExecRunner{}
	}
	if bin == "" {
		bin = "pdftoppm"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{runner: runner, bin: bin, logger: logger}
}

func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte, opts ports.RasterOptions) ([]ports.PageImage, error) {
	if len(pdf) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rasterize", fmt.Errorf("empty pdf"))
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	if dpi < minDPI {
		dpi = minDPI
	}

	dir, err := os.MkdirTemp("", "fincadocs-raster-")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write raster input: %w", err)
	}
	prefix := filepath.Join(dir, "page")

	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if opts.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(opts.MaxPages))
	}
	args = append(args, input, prefix)
	if _, stderr, err := r.runner.Run(ctx, r.bin, r.logger, args...); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrOCRUnavailable, "rasterize",
			fmt.Errorf("%w: %s", err, cmdrunner.Truncate(strings.TrimSpace(string(stderr)), 512)))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list raster pages: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return pageNumber(files[i]) < pageNumber(files[j]) })
	if opts.MaxPages > 0 && len(files) > opts.MaxPages {
		files = files[:opts.MaxPages]
	}

	pages := make([]ports.PageImage, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read raster page: %w", err)
		}
		pages = append(pages, ports.PageImage{Number: pageNumber(file), Data: data, MIME: "image/png"})
	}
	r.logger.Debug("rasterize_done", slog.Int("pages", len(pages)), slog.Int("dpi", dpi))
	return pages, nil
}

// pageNumber reads N from ".../page-N.png"; pdftoppm zero-pads N to the width of the page count.
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, _ := strconv.Atoi(base[idx+1:])
	return n
}
