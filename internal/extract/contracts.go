package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// CorpusBuilder is stage 1: file -> ordered, de-duplicated text fragments.
type CorpusBuilder interface {
	Build(ctx context.Context, path string) (Corpus, error)
}

// Corpus is the text recovered from one document.
type Corpus struct {
	Fragments  []entity.TextFragment
	Pages      int
	SourceType constants.FileFormat
	Method     string // "native" | "ocr" | "native+ocr"
	Rotation   int
	Duration   time.Duration
	Warnings   []string
}

// Texts returns the fragment texts in corpus order.
func (c Corpus) Texts() []string {
	out := make([]string, len(c.Fragments))
	for i, f := range c.Fragments {
		out[i] = f.Text
	}
	return out
}

// Strategy is one self-contained extraction approach producing the shared
// result contract.
type Strategy interface {
	Name() constants.AnalysisMethod
	Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error)
}
