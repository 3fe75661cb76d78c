//go:build !gosseract

package ocr

import (
	"context"
	"image"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// Gosseract is unavailable in builds without the gosseract tag.
type Gosseract struct{}

// NewGosseract returns a recognizer that reports itself unavailable.
func NewGosseract() *Gosseract { return &Gosseract{} }

func (*Gosseract) Name() string    { return "gosseract" }
func (*Gosseract) Available() bool { return false }

func (*Gosseract) Recognize(context.Context, image.Image, RecognizeConfig) ([]entity.TextFragment, error) {
	return nil, common.NewExtractionError(common.KindRecognitionUnavailable, "gosseract", "built without -tags gosseract", nil)
}
