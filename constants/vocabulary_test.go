package constants

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVocabularyOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	body := `{"ground_floor_floors": 2, "fallback_room_name": "Open Plan",
		"room_types": [{"label": "Studio", "keywords": ["studio"], "default_length": 6, "default_width": 5, "max_doors": 2, "max_windows": 3}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.GroundFloorFloors != 2 || v.FallbackRoomName != "Open Plan" || len(v.RoomTypes) != 1 {
		t.Errorf("v = %+v", v)
	}
	if v.StandardDoor.Standard() != "0.9 × 2.1 m" {
		t.Errorf("unset fields lost their defaults: %q", v.StandardDoor.Standard())
	}
	if l, w := v.DefaultSize("Studio"); l != 6 || w != 5 {
		t.Errorf("DefaultSize = %v x %v", l, w)
	}
	if l, w := v.DefaultSize("Cellar"); l != 4 || w != 3.5 {
		t.Errorf("unknown DefaultSize = %v x %v", l, w)
	}
	if d, w := v.OpeningAllowance("Studio"); d != 2 || w != 3 {
		t.Errorf("allowance = %d, %d", d, w)
	}
}

func TestLoadVocabularyErrors(t *testing.T) {
	if v, err := LoadVocabulary(""); err != nil || len(v.RoomTypes) == 0 {
		t.Errorf("empty path: %v", err)
	}
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	empty := filepath.Join(dir, "empty.json")
	_ = os.WriteFile(bad, []byte("{"), 0o600)
	_ = os.WriteFile(empty, []byte(`{"room_types": []}`), 0o600)
	for _, p := range []string{filepath.Join(dir, "missing.json"), bad, empty} {
		if _, err := LoadVocabulary(p); err == nil {
			t.Errorf("LoadVocabulary(%s) succeeded", filepath.Base(p))
		}
	}
}

func TestFormatMeters(t *testing.T) {
	tests := map[float64]string{4.5: "4.5", 4: "4", 3.3528: "3.353", 0.9: "0.9", 2.0004: "2"}
	for in, want := range tests {
		if got := FormatMeters(in); got != want {
			t.Errorf("FormatMeters(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFileHelpers(t *testing.T) {
	tests := []struct {
		path    string
		allowed bool
		format  FileFormat
		mime    string
	}{
		{"plan.PDF", true, FormatPDF, "application/pdf"},
		{"scan.jpeg", true, FormatImage, "image/jpeg"},
		{"scan.png", true, FormatImage, "image/png"},
		{"model.dwg", false, "", "image/jpeg"},
	}
	for _, tt := range tests {
		ext := filepath.Ext(tt.path)
		if IsAllowedPath(tt.path) != tt.allowed {
			t.Errorf("IsAllowedPath(%s) != %v", tt.path, tt.allowed)
		}
		if f, _ := MapExtToFormat(ext); f != tt.format {
			t.Errorf("MapExtToFormat(%s) = %q", ext, f)
		}
		if m := MimeTypeForExt(ext); m != tt.mime {
			t.Errorf("MimeTypeForExt(%s) = %q", ext, m)
		}
	}
	if StatusForMethod(MethodMinimalFallback) != JobStatusDegraded || StatusForMethod(MethodGemini) != JobStatusSucceeded {
		t.Error("StatusForMethod")
	}
}
