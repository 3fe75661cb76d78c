package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeGenerator struct {
	replies []string
	errs    []error
	calls   int
	last    DocumentRequest
}

func (f *fakeGenerator) Model() string { return "fake-vision" }

func (f *fakeGenerator) Generate(_ context.Context, req DocumentRequest) (string, error) {
	i := f.calls
	f.calls++
	f.last = req
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return f.replies[len(f.replies)-1], nil
}

func writeDrawing(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newStrategy(t *testing.T, gen DocumentGenerator, mode string) *RemoteStrategy {
	t.Helper()
	s, err := NewRemoteStrategy(gen, RemoteConfig{
		Enabled: true,
		Mode:    mode,
		Retry:   RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond},
	}, quietLogger())
	if err != nil {
		t.Fatalf("NewRemoteStrategy: %v", err)
	}
	return s
}

func TestRemoteAnalyzeAccepts(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"```json\n" +
		`{"rooms":[{"room_type":"Kitchen","length":"4500mm","width":3.6,"doors":[{"sizeType":"standard","count":"1"}]}],` +
		`"floors":"2","roofing":{"type":"hip"},"plumbing":null}` + "\n```"}}
	s := newStrategy(t, gen, "rooms")

	res, err := s.Analyze(context.Background(), writeDrawing(t, "plan.pdf"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.AnalysisMethod != constants.MethodGemini {
		t.Errorf("method = %q", res.AnalysisMethod)
	}
	if res.Floors != 2 || len(res.Rooms) != 1 {
		t.Fatalf("result = %+v", res)
	}
	r := res.Rooms[0]
	if r.RoomType != "Kitchen" || r.Length != "4.5" || r.Width != "3.6" || len(r.Doors) != 1 || r.Doors[0].Count != 1 {
		t.Errorf("room = %+v", r)
	}
	if _, ok := res.Extra["roofing"]; !ok {
		t.Error("extra section dropped")
	}
	if _, ok := res.Extra["plumbing"]; ok {
		t.Error("null section kept")
	}
	if gen.last.MIMEType != "application/pdf" || gen.last.Instruction == "" {
		t.Errorf("request = %+v", gen.last)
	}
}

func TestRemoteAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *fakeGenerator
		kind    common.ErrorKind
		message string
		calls   int
	}{
		{
			name:    "error key",
			gen:     &fakeGenerator{replies: []string{`{"error":"Document is not an architectural drawing"}`}},
			kind:    common.KindUpstreamFailure,
			message: "Document is not an architectural drawing",
			calls:   1,
		},
		{
			name:  "empty rooms",
			gen:   &fakeGenerator{replies: []string{`{"rooms":[],"floors":1}`}},
			kind:  common.KindSchemaViolation,
			calls: 1,
		},
		{
			name:  "no json",
			gen:   &fakeGenerator{replies: []string{"I cannot read this drawing."}},
			kind:  common.KindSchemaViolation,
			calls: 1,
		},
		{
			name:  "permanent upstream error",
			gen:   &fakeGenerator{errs: []error{status.Error(codes.PermissionDenied, "bad key")}, replies: []string{""}},
			kind:  common.KindUpstreamFailure,
			calls: 1,
		},
		{
			name: "transient exhausted",
			gen: &fakeGenerator{errs: []error{
				status.Error(codes.Unavailable, "busy"),
				status.Error(codes.Unavailable, "busy"),
				status.Error(codes.Unavailable, "busy"),
			}, replies: []string{""}},
			kind:  common.KindUpstreamFailure,
			calls: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStrategy(t, tt.gen, "rooms")
			res, err := s.Analyze(context.Background(), writeDrawing(t, "plan.png"))
			if res != nil {
				t.Errorf("res = %+v, want nil", res)
			}
			if common.KindOf(err) != tt.kind {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
			var ee *common.ExtractionError
			if tt.message != "" && (!errors.As(err, &ee) || ee.Message != tt.message) {
				t.Errorf("message = %q, want %q", ee.Message, tt.message)
			}
			if tt.gen.calls != tt.calls {
				t.Errorf("calls = %d, want %d", tt.gen.calls, tt.calls)
			}
		})
	}
}

func TestRemoteAnalyzeRetriesTransient(t *testing.T) {
	gen := &fakeGenerator{
		errs:    []error{status.Error(codes.ResourceExhausted, "quota")},
		replies: []string{"", `{"rooms":[{"roomType":"Hall","length":"4","width":"2"}],"floors":1}`},
	}
	res, err := newStrategy(t, gen, "rooms").Analyze(context.Background(), writeDrawing(t, "plan.jpg"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if gen.calls != 2 || res.Rooms[0].RoomType != "Hall" {
		t.Errorf("calls = %d result = %+v", gen.calls, res)
	}
	if gen.last.MIMEType != "image/jpeg" {
		t.Errorf("mime = %q", gen.last.MIMEType)
	}
}

func TestRemoteAnalyzeWallsMode(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"rooms":[{"roomType":"Hall","length":"4","width":"2"}],"floors":1,` +
		`"wallDimensions":{"externalWallPerimiter":"12.0","externalWallHeight":"3"},"wallProperties":{"blockType":"Standard Block","thickness":"0.2"}}`}}
	res, err := newStrategy(t, gen, "walls").Analyze(context.Background(), writeDrawing(t, "plan.pdf"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.WallDimensions == nil || res.WallDimensions.ExternalWallPerimeter != 12 || res.WallProperties.Thickness != 0.2 {
		t.Errorf("walls = %+v %+v", res.WallDimensions, res.WallProperties)
	}
}

func TestRemoteDisabled(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"{}"}}
	s, err := NewRemoteStrategy(gen, RemoteConfig{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Analyze(context.Background(), writeDrawing(t, "plan.pdf"))
	if !errors.Is(err, ErrRemoteDisabled) || gen.calls != 0 {
		t.Errorf("err = %v calls = %d", err, gen.calls)
	}
	if s.Name() != constants.MethodGemini {
		t.Errorf("Name = %q", s.Name())
	}
}

func TestRemoteMissingFile(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"{}"}}
	_, err := newStrategy(t, gen, "rooms").Analyze(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	if common.KindOf(err) != common.KindUpstreamFailure || gen.calls != 0 {
		t.Errorf("err = %v calls = %d", err, gen.calls)
	}
}
