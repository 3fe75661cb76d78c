package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// PdftoppmRenderer rasterizes PDF pages with poppler's pdftoppm.
type PdftoppmRenderer struct {
	bin       string
	tempDir   string
	runner    Runner
	available bool
	logger    *slog.Logger
}

// NewPdftoppmRenderer probes for the binary once; Available reports the result.
func NewPdftoppmRenderer(cfg Config, runner Runner, logger *slog.Logger) *PdftoppmRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &PdftoppmRenderer{
		bin:       cfg.Pdftoppm,
		tempDir:   cfg.TempDir,
		runner:    runner,
		available: binaryAvailable(cfg.Pdftoppm),
		logger:    logger,
	}
}

func (r *PdftoppmRenderer) Available() bool { return r.available }

// RenderPage renders page pageIndex (0-based) at dpi and decodes it into
// memory. The intermediate PNG never outlives the call.
func (r *PdftoppmRenderer) RenderPage(ctx context.Context, docPath string, pageIndex, dpi int) (image.Image, error) {
	dir, err := os.MkdirTemp(r.tempDir, "pp-render-*")
	if err != nil {
		return nil, fmt.Errorf("render temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	page := strconv.Itoa(pageIndex + 1)
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r <dpi> -f <n> -l <n> -png -singlefile <in> <prefix>
	_, errb, err := r.runner.Run(ctx, r.bin, "-r", strconv.Itoa(dpi), "-f", page, "-l", page, "-png", "-singlefile", docPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %s: %w: %s", page, err, truncate(string(errb), 512))
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %s produced no image: %w", page, err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode page %s: %w", page, err)
	}
	return img, nil
}
