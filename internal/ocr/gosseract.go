//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes text in-process through the tesseract C API.
type Gosseract struct{}

// NewGosseract returns the cgo backend; built only with -tags gosseract.
func NewGosseract() *Gosseract { return &Gosseract{} }

func (*Gosseract) Name() string    { return "gosseract" }
func (*Gosseract) Available() bool { return true }

func (*Gosseract) Recognize(ctx context.Context, img image.Image, cfg RecognizeConfig) ([]entity.TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(cfg.Lang); err != nil {
		return nil, fmt.Errorf("gosseract language: %w", err)
	}
	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			return nil, fmt.Errorf("gosseract psm=%d: %w", cfg.PSM, err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("gosseract image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("gosseract boxes: %w", err)
	}

	out := make([]entity.TextFragment, 0, len(boxes))
	for _, bb := range boxes {
		text := Normalize(bb.Word)
		if bb.Confidence <= cfg.MinConfidence || !acceptText(text) {
			continue
		}
		r := bb.Box
		out = append(out, entity.TextFragment{
			Text:       text,
			Box:        entity.BoundingBox{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y},
			Confidence: bb.Confidence,
			FontSize:   max(float64(r.Dy()), float64(r.Dx())/float64(len([]rune(text)))),
			Source:     entity.SourceOCR,
		})
	}
	return out, nil
}
