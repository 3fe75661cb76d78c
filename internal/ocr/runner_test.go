package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"testing"
)

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d scratch entries left in %s", len(entries), dir)
	}
}

func TestTesseractCLICleansScratchDir(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		wantErr bool
	}{
		{name: "success", out: tsvRows("5\t1\t1\t1\t1\t1\t10\t10\t80\t20\t90\tKITCHEN")},
		{name: "failure", err: errors.New("exit status 1"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var sawInput bool
			runner := runnerFunc(func(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
				_, err := os.Stat(args[0])
				sawInput = err == nil
				return []byte(tt.out), []byte("tesseract: boom"), tt.err
			})
			tc := NewTesseractCLI(Config{Tesseract: "tesseract", TempDir: dir}, runner, quietLogger())

			frags, err := tc.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 40, 20)), RecognizeConfig{Lang: "eng", PSM: 6, MinConfidence: 30})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !sawInput {
				t.Error("input image missing while tesseract ran")
			}
			if !tt.wantErr && (len(frags) != 1 || frags[0].Text != "KITCHEN") {
				t.Errorf("frags = %+v", frags)
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestPdftoppmRendererCleansScratchDir(t *testing.T) {
	tests := []struct {
		name    string
		write   bool
		err     error
		wantErr bool
	}{
		{name: "success", write: true},
		{name: "command fails", err: errors.New("exit status 99"), wantErr: true},
		{name: "no output", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			runner := runnerFunc(func(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
				if tt.write {
					f, err := os.Create(args[len(args)-1] + ".png")
					if err != nil {
						return nil, nil, err
					}
					defer f.Close()
					if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 30, 50))); err != nil {
						return nil, nil, err
					}
				}
				return nil, []byte("Syntax Error"), tt.err
			})
			r := NewPdftoppmRenderer(Config{Pdftoppm: "pdftoppm", TempDir: dir}, runner, quietLogger())

			img, err := r.RenderPage(context.Background(), "plan.pdf", 1, 300)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && img.Bounds().Dy() != 50 {
				t.Errorf("bounds = %v", img.Bounds())
			}
			assertEmptyDir(t, dir)
		})
	}
}
