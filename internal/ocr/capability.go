package ocr

import (
	"context"
	"image"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// RecognizeConfig is one segmentation configuration for a recognition pass.
type RecognizeConfig struct {
	Lang          string
	PSM           int
	OEM           int
	MinConfidence float64
}

// Recognizer turns an image into text fragments. Callers must check
// Available before invoking Recognize.
type Recognizer interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, img image.Image, cfg RecognizeConfig) ([]entity.TextFragment, error)
}

// PageRenderer rasterizes one page (0-based) of a paged document.
type PageRenderer interface {
	Available() bool
	RenderPage(ctx context.Context, docPath string, pageIndex, dpi int) (image.Image, error)
}

// NativeTextSource extracts embedded text, one string per page.
type NativeTextSource interface {
	Name() string
	PageTexts(ctx context.Context, docPath string) ([]string, error)
}
