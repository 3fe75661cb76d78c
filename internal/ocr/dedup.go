package ocr

import (
	"strings"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

const (
	positionBucket = 10 // px
	fontSizeBucket = 5  // px
)

type signature struct {
	text     string
	page     int
	x, y     int
	fontSize int
}

func signatureOf(f entity.TextFragment) signature {
	return signature{
		text:     strings.ToLower(f.Text),
		page:     f.Page,
		x:        f.Box.X0 / positionBucket,
		y:        f.Box.Y0 / positionBucket,
		fontSize: int(f.FontSize) / fontSizeBucket,
	}
}

// Dedup drops fragments whose (text, grid cell, font-size bucket) signature
// was already seen. First occurrence wins and order is preserved.
func Dedup(frags []entity.TextFragment) []entity.TextFragment {
	seen := make(map[signature]struct{}, len(frags))
	out := make([]entity.TextFragment, 0, len(frags))
	for _, f := range frags {
		sig := signatureOf(f)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, f)
	}
	return out
}
