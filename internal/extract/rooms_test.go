package extract

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/plan-parser/constants"
)

func TestClassify(t *testing.T) {
	c := NewRoomClassifier(constants.DefaultVocabulary())
	tests := []struct {
		in    string
		label string
		ok    bool
	}{
		{"MASTER BEDROOM", "Master Bedroom", true},
		{"Bedroom 1", "Bedroom", true},
		{"KITCHEN 3.6 x 3.0", "Kitchen", true},
		{"Living", "Living Room", true},
		{"TOILET / WC", "Toilet", true},
		{"Walk-in", "Wardrobe", true},
		{"3.5m x 4m", "", false},
		{"12 M", "", false},
		{"Hello world", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		label, ok := c.Classify(tt.in)
		if ok != tt.ok || label != tt.label {
			t.Errorf("Classify(%q) = %q, %v; want %q, %v", tt.in, label, ok, tt.label, tt.ok)
		}
	}
}

func TestRoomName(t *testing.T) {
	c := NewRoomClassifier(constants.DefaultVocabulary())
	tests := []struct {
		text, label, want string
	}{
		{"BEDROOM 1", "Bedroom", "Bedroom 1"},
		{"KITCHEN 3.6 x 3.0", "Kitchen", "Kitchen"},
		{"master bedroom", "Master Bedroom", "Master Bedroom"},
		{strings.Repeat("LIVING ROOM ", 4), "Living Room", "Living Room"},
	}
	for _, tt := range tests {
		if got := c.RoomName(tt.text, tt.label); got != tt.want {
			t.Errorf("RoomName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestStripDimensions(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"KITCHEN 3.6 x 3.0", "KITCHEN"},
		{"BED 3000mm", "BED"},
		{"L=4 W=3 STORE", "STORE"},
		{"LOUNGE", "LOUNGE"},
	}
	for _, tt := range tests {
		if got := StripDimensions(tt.in); got != tt.want {
			t.Errorf("StripDimensions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
