package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRecognizer struct {
	available bool
	calls     int
	// portrait is returned for images taller than wide, landscape otherwise
	portrait, landscape []entity.TextFragment
}

func (f *fakeRecognizer) Name() string    { return "fake" }
func (f *fakeRecognizer) Available() bool { return f.available }
func (f *fakeRecognizer) Recognize(_ context.Context, img image.Image, _ RecognizeConfig) ([]entity.TextFragment, error) {
	f.calls++
	b := img.Bounds()
	if b.Dy() > b.Dx() {
		return f.portrait, nil
	}
	return f.landscape, nil
}

type fakeRenderer struct{ available bool }

func (r fakeRenderer) Available() bool { return r.available }
func (r fakeRenderer) RenderPage(context.Context, string, int, int) (image.Image, error) {
	return nil, errors.New("not rendered")
}

type fakeNative struct {
	pages []string
	err   error
}

func (n fakeNative) Name() string { return "fake-native" }
func (n fakeNative) PageTexts(context.Context, string) ([]string, error) {
	return n.pages, n.err
}

func writePNGFile(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildImagePicksRotationAndDedups(t *testing.T) {
	rec := &fakeRecognizer{
		available: true,
		landscape: []entity.TextFragment{{Text: "KITCHEN", Confidence: 90}},
		portrait: []entity.TextFragment{
			{Text: "LIVING", Confidence: 90},
			{Text: "4.5 x 3.6", Confidence: 80},
			{Text: "noise", Confidence: 10},
			{Text: "x", Confidence: 95},
		},
	}
	b := NewBuilder(Config{PSMs: []int{6, 11}, TryRotations: true}, quietLogger(), WithRecognizer(rec))

	res, err := b.Build(context.Background(), writePNGFile(t, 40, 20))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Rotation != 90 {
		t.Errorf("rotation = %d, want 90", res.Rotation)
	}
	if len(res.Fragments) != 2 || res.Fragments[0].Text != "LIVING" || res.Fragments[1].Text != "4.5 x 3.6" {
		t.Errorf("fragments = %+v", res.Fragments)
	}
	if res.Method != "ocr" || res.Pages != 1 {
		t.Errorf("method = %q pages = %d", res.Method, res.Pages)
	}
	// 4 rotations x 2 segmentation modes on the best variant
	if rec.calls != 8 {
		t.Errorf("recognizer calls = %d, want 8", rec.calls)
	}
}

func TestBuildImageWithoutRecognition(t *testing.T) {
	b := NewBuilder(Config{}, quietLogger(), WithRecognizer(&fakeRecognizer{}))
	res, err := b.Build(context.Background(), writePNGFile(t, 10, 10))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Fragments) != 0 || len(res.Warnings) == 0 {
		t.Errorf("want empty corpus with warning, got %+v", res)
	}
}

func TestBuildPDFNativeOnly(t *testing.T) {
	b := NewBuilder(Config{}, quietLogger(),
		WithRecognizer(&fakeRecognizer{available: true}),
		WithRenderer(fakeRenderer{}),
		WithNativeSources(
			fakeNative{err: errors.New("broken xref")},
			fakeNative{pages: []string{"GROUND FLOOR PLAN\nKITCHEN\n4.5 x 3.6", "-----\nKITCHEN"}},
		),
	)
	res, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "plan.pdf"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Method != "native" || res.Pages != 2 {
		t.Errorf("method = %q pages = %d", res.Method, res.Pages)
	}
	want := []string{"GROUND FLOOR PLAN", "KITCHEN", "4.5 x 3.6", "KITCHEN"}
	if len(res.Fragments) != len(want) {
		t.Fatalf("fragments = %+v", res.Fragments)
	}
	for i, f := range res.Fragments {
		if f.Text != want[i] || f.Source != entity.SourceNative || f.Confidence != 100 {
			t.Errorf("fragment %d = %+v", i, f)
		}
	}
	if res.Fragments[3].Page != 1 {
		t.Errorf("page of last fragment = %d, want 1", res.Fragments[3].Page)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %q", res.Warnings)
	}
}

func TestBuildRejectsUnknownExtension(t *testing.T) {
	b := NewBuilder(Config{}, quietLogger())
	_, err := b.Build(context.Background(), "plan.dwg")
	if !errors.Is(err, common.ErrUnsupportedType) {
		t.Errorf("err = %v, want unsupported type", err)
	}
}
