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
	"strings"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// TesseractCLI recognizes text by shelling out to the tesseract binary in
// TSV mode, which reports a box and confidence per word.
type TesseractCLI struct {
	bin         string
	tessdataDir string
	tempDir     string
	runner      Runner
	available   bool
	logger      *slog.Logger
}

// NewTesseractCLI probes for the binary once; Available reports the result.
func NewTesseractCLI(cfg Config, runner Runner, logger *slog.Logger) *TesseractCLI {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &TesseractCLI{
		bin:         cfg.Tesseract,
		tessdataDir: cfg.TessdataDir,
		tempDir:     cfg.TempDir,
		runner:      runner,
		available:   binaryAvailable(cfg.Tesseract),
		logger:      logger,
	}
}

func (t *TesseractCLI) Name() string    { return "tesseract-cli" }
func (t *TesseractCLI) Available() bool { return t.available }

// Recognize writes img to a scratch PNG, runs one tesseract pass and groups
// the words into line fragments. The scratch directory is always removed.
func (t *TesseractCLI) Recognize(ctx context.Context, img image.Image, cfg RecognizeConfig) ([]entity.TextFragment, error) {
	dir, err := os.MkdirTemp(t.tempDir, "pp-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("tesseract temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "input.png")
	if err := writePNG(in, img); err != nil {
		return nil, err
	}

	args := []string{in, "stdout", "-l", cfg.Lang}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	if cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(cfg.OEM))
	}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract psm=%d: %w: %s", cfg.PSM, err, truncate(string(errb), 512))
	}
	return ParseTSV(string(out), cfg.MinConfidence), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

type tsvLine struct {
	words          []string
	x0, y0, x1, y1 int
	confSum, maxH  float64
}

// ParseTSV groups tesseract TSV word rows into line fragments. Words at or
// below minConf are dropped; a line's confidence is the mean of its kept
// words and its font size is the tallest word.
func ParseTSV(tsv string, minConf float64) []entity.TextFragment {
	var order []string
	lines := map[string]*tsvLine{}

	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf <= minConf {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		w, _ := strconv.Atoi(cols[8])
		h, _ := strconv.Atoi(cols[9])

		key := strings.Join(cols[1:5], ".")
		l, ok := lines[key]
		if !ok {
			l = &tsvLine{x0: left, y0: top, x1: left + w, y1: top + h}
			lines[key] = l
			order = append(order, key)
		}
		l.words = append(l.words, word)
		l.x0, l.y0 = min(l.x0, left), min(l.y0, top)
		l.x1, l.y1 = max(l.x1, left+w), max(l.y1, top+h)
		l.confSum += conf
		l.maxH = max(l.maxH, float64(h))
	}

	out := make([]entity.TextFragment, 0, len(order))
	for _, key := range order {
		l := lines[key]
		text := Normalize(strings.Join(l.words, " "))
		if !acceptText(text) {
			continue
		}
		width := float64(l.x1 - l.x0)
		out = append(out, entity.TextFragment{
			Text:       text,
			Box:        entity.BoundingBox{X0: l.x0, Y0: l.y0, X1: l.x1, Y1: l.y1},
			Confidence: l.confSum / float64(len(l.words)),
			FontSize:   max(l.maxH, width/float64(len([]rune(text)))),
			Source:     entity.SourceOCR,
		})
	}
	return out
}
