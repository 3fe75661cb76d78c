package ocr

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// PDFReaderSource reads embedded text with the pure-Go ledongthuc/pdf
// reader, one string per page with one line per text row.
type PDFReaderSource struct{}

func (PDFReaderSource) Name() string { return "pdfreader" }

func (PDFReaderSource) PageTexts(ctx context.Context, docPath string) (pages []string, err error) {
	f, r, err := pdf.Open(docPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()
	// the reader panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("read pdf: %v", rec)
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(joinRow(row.Content))
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

// joinRow orders the text runs of a row left to right and inserts a space
// where the gap between runs is wider than a quarter of the font size.
func joinRow(runs pdf.TextHorizontal) string {
	sorted := append(pdf.TextHorizontal(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	var prevEnd float64
	for i, t := range sorted {
		if i > 0 && t.X-prevEnd > t.FontSize*0.25 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}

// PDFPageCount returns the number of pages or 0 when the file cannot be read.
func PDFPageCount(docPath string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	f, r, err := pdf.Open(docPath)
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()
	return r.NumPage()
}

// DocconvSource extracts text through docconv (pdftotext underneath). It
// does not keep page breaks, so the whole document is reported as one page.
type DocconvSource struct{}

func (DocconvSource) Name() string { return "docconv" }

func (DocconvSource) PageTexts(ctx context.Context, docPath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(docPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	body, _, err := docconv.ConvertPDF(f)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	return []string{body}, nil
}
