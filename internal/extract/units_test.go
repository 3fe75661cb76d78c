package extract

import "testing"

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3500mm", 3.5, true},
		{"350cm", 3.5, true},
		{"3,5m", 3.5, true},
		{"3.5 m", 3.5, true},
		{"11ft", 3.353, true},
		{"12'", 3.658, true},
		{"10 in", 0.254, true},
		{"12″", 0.305, true},
		{"12′′", 0.305, true},
		{"12′", 3.658, true},
		{"4.5", 4.5, true},
		{"2700", 2.7, true},
		{"450", 4.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"3.5 x 4", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseLength(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLength(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
