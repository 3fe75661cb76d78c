package extract

import (
	"fmt"
	"testing"
)

func TestExplicit(t *testing.T) {
	e := NewDimensionExtractor()
	tests := []struct {
		in   string
		want Dimension
		ok   bool
	}{
		{"4.5 x 3.6", Dimension{4.5, 3.6}, true},
		{"3.6 X 4.5", Dimension{4.5, 3.6}, true},
		{"(4.5 × 3.6)", Dimension{4.5, 3.6}, true},
		{"3600 x 4500", Dimension{4.5, 3.6}, true},
		{"3600mm x 4500mm", Dimension{4.5, 3.6}, true},
		{"12' x 10'", Dimension{3.658, 3.048}, true},
		{"4 by 3", Dimension{4, 3}, true},
		{"L=5.2 W=3.4", Dimension{5.2, 3.4}, true},
		{"width: 3.4 length: 5.2", Dimension{5.2, 3.4}, true},
		{"30 x 40", Dimension{}, false},
		{"0.5 x 0.4", Dimension{}, false},
		{"BEDROOM", Dimension{}, false},
	}
	for _, tt := range tests {
		got, ok := e.Explicit(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Explicit(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExplicitOrdersLongerSideFirst(t *testing.T) {
	e := NewDimensionExtractor()
	for a := 1; a <= 25; a++ {
		for b := 1; b <= 25; b++ {
			in := fmt.Sprintf("%d x %d", a, b)
			got, ok := e.Explicit(in)
			if !ok {
				t.Fatalf("Explicit(%q) found nothing", in)
			}
			want := Dimension{Length: float64(max(a, b)), Width: float64(min(a, b))}
			if got != want {
				t.Fatalf("Explicit(%q) = %+v, want %+v", in, got, want)
			}
		}
	}
}

func TestNumberPair(t *testing.T) {
	e := NewDimensionExtractor()
	tests := []struct {
		in   string
		want Dimension
		ok   bool
	}{
		{"3.6 4.5", Dimension{4.5, 3.6}, true},
		{"area 0.2 then 3.0 and 2.5", Dimension{3.0, 2.5}, true},
		{"12 0.8 4.5 3.2", Dimension{12, 4.5}, true},
		{"2.5 2.0 3.1", Dimension{3.1, 2.5}, true},
		{"room 28 0.8", Dimension{28, 0.8}, true},
		{"4.5", Dimension{}, false},
		{"no numbers", Dimension{}, false},
	}
	for _, tt := range tests {
		got, ok := e.NumberPair(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NumberPair(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLooseOnlyRejectsOutOfRange(t *testing.T) {
	e := NewDimensionExtractor()
	if _, ok := e.Explicit("30 x 40"); ok {
		t.Error("Explicit accepted values outside the strict range")
	}
	if _, ok := e.NumberPair("30 x 40 0.1"); ok {
		t.Error("NumberPair accepted values outside the loose range")
	}
}

func TestDimensionStrings(t *testing.T) {
	l, w := Dimension{Length: 4.5, Width: 3.3528}.Strings()
	if l != "4.5" || w != "3.353" {
		t.Errorf("Strings() = %q, %q", l, w)
	}
}
