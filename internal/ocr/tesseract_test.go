package ocr

import (
	"strings"
	"testing"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRows(rows ...string) string {
	return tsvHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestParseTSV(t *testing.T) {
	tsv := tsvRows(
		"1\t1\t0\t0\t0\t0\t0\t0\t2000\t1000\t-1\t",
		"5\t1\t1\t1\t1\t1\t100\t200\t120\t30\t91.5\tMASTER",
		"5\t1\t1\t1\t1\t2\t230\t198\t160\t34\t88.5\tBEDROOM",
		"5\t1\t1\t1\t1\t3\t400\t200\t20\t30\t12\t~",
		"5\t1\t2\t1\t1\t1\t100\t400\t140\t28\t95\t4.5x3.6",
		"5\t1\t3\t1\t1\t1\t900\t900\t10\t10\t90\t|",
	)
	frags := ParseTSV(tsv, 30)
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2: %+v", len(frags), frags)
	}

	f := frags[0]
	if f.Text != "MASTER BEDROOM" {
		t.Errorf("text = %q", f.Text)
	}
	if f.Box.X0 != 100 || f.Box.Y0 != 198 || f.Box.X1 != 390 || f.Box.Y1 != 232 {
		t.Errorf("box = %+v", f.Box)
	}
	if f.Confidence != 90 {
		t.Errorf("confidence = %v, want 90", f.Confidence)
	}
	if f.FontSize != 34 {
		t.Errorf("font size = %v, want 34", f.FontSize)
	}
	if frags[1].Text != "4.5x3.6" {
		t.Errorf("second text = %q", frags[1].Text)
	}
}

func TestParseTSVIgnoresMalformedRows(t *testing.T) {
	tsv := tsvRows("5\t1\t1", "5\t1\t1\t1\t1\t1\t0\t0\t10\t10\tbad\tWORD")
	if frags := ParseTSV(tsv, 30); len(frags) != 0 {
		t.Errorf("got %+v, want none", frags)
	}
}
