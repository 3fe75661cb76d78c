package ocr

import (
	"testing"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

func frag(text string, x, y int, size float64) entity.TextFragment {
	return entity.TextFragment{Text: text, Box: entity.BoundingBox{X0: x, Y0: y, X1: x + 50, Y1: y + 10}, FontSize: size}
}

func TestDedup(t *testing.T) {
	in := []entity.TextFragment{
		frag("KITCHEN", 100, 100, 20),
		frag("kitchen", 104, 103, 21), // same cell, same size bucket
		frag("KITCHEN", 300, 100, 20), // elsewhere on the sheet
		frag("4.5 x 3.6", 100, 130, 12),
		frag("KITCHEN", 100, 100, 40), // different size bucket
	}
	got := Dedup(in)
	if len(got) != 4 {
		t.Fatalf("got %d fragments, want 4: %+v", len(got), got)
	}
	if got[0].Text != "KITCHEN" || got[1].Box.X0 != 300 || got[3].FontSize != 40 {
		t.Errorf("unexpected order or survivors: %+v", got)
	}
}

func TestDedupSeparatesPages(t *testing.T) {
	a := frag("HALL", 10, 10, 10)
	b := a
	b.Page = 1
	if got := Dedup([]entity.TextFragment{a, b}); len(got) != 2 {
		t.Errorf("got %d fragments, want 2", len(got))
	}
}
