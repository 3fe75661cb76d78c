package ocr

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	MaxPages      int // pages rendered for recognition, default 6

	PSMs          []int // segmentation modes tried per variant
	OEM           int
	MinConfidence float64 // fragments at or below are dropped, default 30

	TryRotations bool
	VariantMode  string // "best" (highest-variance variant) or "all"

	NativeBackend string // "pdfreader" or "docconv"; the other is the fallback
	Backend       string // "tesseract" or "gosseract"
	TempDir       string
}

// Result is the corpus of one document.
type Result struct {
	Fragments  []entity.TextFragment
	Pages      int
	SourceType constants.FileFormat
	Method     string
	Rotation   int
	Duration   time.Duration
	Warnings   []string
}

// Builder merges native text and multi-pass recognition into one
// de-duplicated fragment sequence.
type Builder struct {
	cfg        Config
	recognizer Recognizer
	renderer   PageRenderer
	natives    []NativeTextSource
	logger     *slog.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithRecognizer swaps the recognition backend.
func WithRecognizer(r Recognizer) Option { return func(b *Builder) { b.recognizer = r } }

// WithRenderer swaps the page renderer.
func WithRenderer(r PageRenderer) Option { return func(b *Builder) { b.renderer = r } }

// WithNativeSources replaces the ordered native text sources.
func WithNativeSources(s ...NativeTextSource) Option {
	return func(b *Builder) { b.natives = s }
}

func NewBuilder(cfg Config, logger *slog.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 6
	}
	if len(cfg.PSMs) == 0 {
		cfg.PSMs = []int{6, 4, 8, 11, 12}
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 30
	}
	if cfg.VariantMode == "" {
		cfg.VariantMode = "best"
	}

	runner := execRunner{logger: logger}
	b := &Builder{cfg: cfg, logger: logger}
	if cfg.Backend == "gosseract" {
		b.recognizer = NewGosseract()
	} else {
		b.recognizer = NewTesseractCLI(cfg, runner, logger)
	}
	b.renderer = NewPdftoppmRenderer(cfg, runner, logger)
	if cfg.NativeBackend == "docconv" {
		b.natives = []NativeTextSource{DocconvSource{}, PDFReaderSource{}}
	} else {
		b.natives = []NativeTextSource{PDFReaderSource{}, DocconvSource{}}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecognitionAvailable reports whether optical recognition can run at all.
func (b *Builder) RecognitionAvailable() bool {
	return b.recognizer != nil && b.recognizer.Available()
}

// Build picks a path based on file extension. A missing recognition backend
// yields an empty (or native-only) corpus with a warning, not an error.
func (b *Builder) Build(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.MapExtToFormat(ext)
	if !ok {
		return Result{}, common.NewExtractionError(common.KindUnsupportedType, "ocr.build", fmt.Sprintf("extension %q", ext), nil)
	}
	b.logger.Debug("ocr.corpus.start", "path", path, "format", format)

	var res Result
	var err error
	switch format {
	case constants.FormatPDF:
		res, err = b.buildPDF(ctx, path)
	default:
		res, err = b.buildImage(ctx, path)
	}
	res.SourceType = format
	res.Fragments = Dedup(res.Fragments)
	res.Duration = time.Since(start)
	if err != nil {
		b.logger.Warn("ocr.corpus.failed", "path", path, "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return res, err
	}
	b.logger.Info("ocr.corpus.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"fragments", len(res.Fragments),
		"rotation", res.Rotation,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (b *Builder) buildPDF(ctx context.Context, path string) (Result, error) {
	res := Result{}
	pages, src, warns := b.nativePages(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	for i, page := range pages {
		for _, ln := range SplitLines(page) {
			if !acceptText(ln) {
				continue
			}
			res.Fragments = append(res.Fragments, entity.TextFragment{
				Text:       ln,
				Confidence: 100,
				Page:       i,
				Source:     entity.SourceNative,
			})
		}
	}
	nativeCount := len(res.Fragments)
	if nativeCount > 0 {
		res.Method = "native"
	}

	res.Pages = PDFPageCount(path)
	if res.Pages == 0 && src != (DocconvSource{}).Name() {
		res.Pages = len(pages)
	}

	if !b.RecognitionAvailable() || b.renderer == nil || !b.renderer.Available() {
		res.Warnings = append(res.Warnings, "recognition or rendering backend unavailable; native text only")
		return res, nil
	}

	limit := b.cfg.MaxPages
	if res.Pages > 0 {
		limit = min(limit, res.Pages)
	}
	for p := 0; p < limit; p++ {
		if err := ctx.Err(); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("stopped before page %d: %v", p+1, err))
			break
		}
		img, err := b.renderer.RenderPage(ctx, path, p, b.cfg.DPI)
		if err != nil {
			// page count unknown: the first failing page ends the document
			res.Warnings = append(res.Warnings, fmt.Sprintf("render page %d: %v", p+1, err))
			if res.Pages == 0 {
				break
			}
			continue
		}
		if res.Pages == 0 {
			res.Pages = p + 1
		}
		res.Fragments = append(res.Fragments, b.recognizePage(ctx, toGray(img), p)...)
	}
	if len(res.Fragments) > nativeCount {
		if nativeCount > 0 {
			res.Method = "native+ocr"
		} else {
			res.Method = "ocr"
		}
	}
	return res, nil
}

// nativePages asks each native source in order and keeps the first that
// yields any non-blank text.
func (b *Builder) nativePages(ctx context.Context, path string) ([]string, string, []string) {
	var warns []string
	for _, src := range b.natives {
		pages, err := src.PageTexts(ctx, path)
		if err != nil {
			warns = append(warns, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		for _, p := range pages {
			if len(SplitLines(p)) > 0 {
				return pages, src.Name(), warns
			}
		}
	}
	return nil, "", warns
}

func (b *Builder) buildImage(ctx context.Context, path string) (Result, error) {
	res := Result{Pages: 1}
	if !b.RecognitionAvailable() {
		res.Warnings = append(res.Warnings, "recognition backend unavailable")
		return res, nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return res, err
	}
	gray := toGray(img)

	rotations := []int{0}
	if b.cfg.TryRotations {
		rotations = []int{0, 90, 180, 270}
	}
	best := -1
	for _, deg := range rotations {
		if err := ctx.Err(); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("stopped before rotation %d: %v", deg, err))
			break
		}
		frags := b.recognizePage(ctx, Rotate(gray, deg), 0)
		b.logger.Debug("ocr.rotation", "path", path, "rotation", deg, "fragments", len(frags))
		if len(frags) > best {
			best = len(frags)
			res.Fragments = frags
			res.Rotation = deg
		}
	}
	res.Method = "ocr"
	return res, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// recognizePage runs every configured segmentation mode over the selected
// variants. Failed passes are logged and skipped.
func (b *Builder) recognizePage(ctx context.Context, gray *image.Gray, page int) []entity.TextFragment {
	variants := Variants(gray)
	if b.cfg.VariantMode != "all" {
		variants = []Variant{BestVariant(variants)}
	}
	var out []entity.TextFragment
	for _, v := range variants {
		for _, psm := range b.cfg.PSMs {
			if ctx.Err() != nil {
				return out
			}
			frags, err := b.recognizer.Recognize(ctx, v.Img, RecognizeConfig{
				Lang:          b.cfg.TesseractLang,
				PSM:           psm,
				OEM:           b.cfg.OEM,
				MinConfidence: b.cfg.MinConfidence,
			})
			if err != nil {
				b.logger.Warn("ocr.pass.failed", "page", page+1, "variant", v.Name, "psm", psm, "error", err)
				continue
			}
			for _, f := range frags {
				f.Text = Normalize(f.Text)
				if f.Confidence <= b.cfg.MinConfidence || !acceptText(f.Text) {
					continue
				}
				f.Page = page
				out = append(out, f)
			}
		}
	}
	return out
}
