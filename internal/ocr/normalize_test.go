package ocr

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  KITCHEN\t\t3.6  x 3.0 ", "KITCHEN 3.6 x 3.0"},
		{"ＢＥＤ　１", "BED 1"},
		{"line\r\nbreak", "line break"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("GROUND FLOOR PLAN\r\n\r\nKITCHEN  \n  4.5 x 3.6\n")
	want := []string{"GROUND FLOOR PLAN", "KITCHEN", "4.5 x 3.6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %q, want %q", got, want)
	}
}

func TestAcceptText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"WC", true},
		{"3.6", true},
		{"x", false},
		{"-----", false},
		{"!!", false},
	}
	for _, tt := range tests {
		if got := acceptText(tt.in); got != tt.want {
			t.Errorf("acceptText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
