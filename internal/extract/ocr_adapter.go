package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/plan-parser/internal/ocr"
)

// OCRAdapter exposes an ocr.Builder as a CorpusBuilder.
type OCRAdapter struct {
	builder *ocr.Builder
	logger  *slog.Logger
}

func NewOCRAdapter(b *ocr.Builder, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		builder: b,
		logger:  l,
	}
}

func (a *OCRAdapter) Build(ctx context.Context, path string) (Corpus, error) {
	r, err := a.builder.Build(ctx, path)
	if err != nil {
		return Corpus{}, err
	}
	if len(r.Fragments) == 0 && !a.builder.RecognitionAvailable() {
		a.logger.Warn("ocr.corpus.empty", "path", path, "reason", "no recognition backend")
	}
	return Corpus{
		Fragments:  r.Fragments,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Rotation:   r.Rotation,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
	}, nil
}
