package extract

import (
	"math"
	"regexp"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

var (
	// DoorWidthRange and DoorHeightRange bound plausible door leaves.
	DoorWidthRange  = Range{Min: 0.5, Max: 2.5}
	DoorHeightRange = Range{Min: 1.5, Max: 3.0}
	// WindowRange bounds both window axes.
	WindowRange = Range{Min: 0.3, Max: 3.0}
)

// Schedule tokens followed by width and height in millimeters. Per
// fragment the first pattern that yields a plausible opening wins.
var (
	doorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bDOOR?\s*[-#]?\s*\d{0,3}\s*[:\-]?\s*(\d{3,4})\s*(?:[×xX*]|\bby\b)?\s*(\d{3,4})`),
		regexp.MustCompile(`(?i)(\d{3,4})\s*[×xX*]\s*(\d{3,4})\s*(?:mm)?\s*\bDOOR`),
		regexp.MustCompile(`(?i)\bD\s*-\s*\d{1,3}\s+(\d{3,4})\s*[×xX*]?\s*(\d{3,4})`),
	}
	windowPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bW(?:D|INDOW)\s*[-#]?\s*\d{0,3}\s*[:\-]?\s*(\d{3,4})\s*(?:[×xX*]|\bby\b)?\s*(\d{3,4})`),
		regexp.MustCompile(`(?i)(\d{3,4})\s*[×xX*]\s*(\d{3,4})\s*(?:mm)?\s*\bWINDOW`),
		regexp.MustCompile(`(?i)\bW\s*-\s*\d{1,3}\s+(\d{3,4})\s*[×xX*]?\s*(\d{3,4})`),
	}
)

// OpeningExtractor reads door and window schedules.
type OpeningExtractor struct {
	vocab constants.Vocabulary
}

// NewOpeningExtractor returns an extractor that classifies sizes against the
// vocabulary's canonical door and window.
func NewOpeningExtractor(v constants.Vocabulary) *OpeningExtractor {
	return &OpeningExtractor{vocab: v}
}

// Doors returns every plausible door found in the corpus, in corpus order.
func (o *OpeningExtractor) Doors(texts []string) []entity.DoorRecord {
	var out []entity.DoorRecord
	for _, t := range texts {
		for _, sz := range scanOpenings(t, doorPatterns, validDoor) {
			out = append(out, o.door(sz))
		}
	}
	return out
}

// Windows returns every plausible window found in the corpus, in corpus order.
func (o *OpeningExtractor) Windows(texts []string) []entity.WindowRecord {
	var out []entity.WindowRecord
	for _, t := range texts {
		for _, sz := range scanOpenings(t, windowPatterns, validWindow) {
			out = append(out, o.window(sz))
		}
	}
	return out
}

// StandardDoor is the record used when a room has no scheduled door.
func (o *OpeningExtractor) StandardDoor() entity.DoorRecord {
	return o.door(o.vocab.StandardDoor)
}

// StandardWindow is the record used when a room has no scheduled window.
func (o *OpeningExtractor) StandardWindow() entity.WindowRecord {
	return o.window(o.vocab.StandardWindow)
}

func (o *OpeningExtractor) door(sz constants.OpeningSize) entity.DoorRecord {
	st, std, custom := classify(sz, o.vocab.StandardDoor)
	return entity.DoorRecord{
		SizeType:     st,
		StandardSize: std,
		Custom:       custom,
		Type:         o.vocab.Defaults.DoorType,
		Frame:        o.vocab.Defaults.DoorFrame,
		Count:        1,
	}
}

func (o *OpeningExtractor) window(sz constants.OpeningSize) entity.WindowRecord {
	st, std, custom := classify(sz, o.vocab.StandardWindow)
	return entity.WindowRecord{
		SizeType:     st,
		StandardSize: std,
		Custom:       custom,
		Glass:        o.vocab.Defaults.WindowGlass,
		Frame:        o.vocab.Defaults.WindowFrame,
		Count:        1,
	}
}

func classify(sz, canonical constants.OpeningSize) (entity.SizeType, string, entity.CustomSize) {
	if sameSize(sz, canonical) {
		return entity.SizeStandard, canonical.Standard(), entity.CustomSize{}
	}
	return entity.SizeCustom, sz.Standard(), entity.CustomSize{
		Height: constants.FormatMeters(sz.Height),
		Width:  constants.FormatMeters(sz.Width),
	}
}

func sameSize(a, b constants.OpeningSize) bool {
	return math.Abs(a.Width-b.Width) < 0.005 && math.Abs(a.Height-b.Height) < 0.005
}

func validDoor(s constants.OpeningSize) bool {
	return DoorWidthRange.Contains(s.Width) && DoorHeightRange.Contains(s.Height)
}

func validWindow(s constants.OpeningSize) bool {
	return WindowRange.Contains(s.Width) && WindowRange.Contains(s.Height)
}

// scanOpenings applies patterns in order and returns the sizes of the first
// pattern that produced any valid match. A pair that is only valid when
// read as height x width is swapped.
func scanOpenings(text string, patterns []*regexp.Regexp, valid func(constants.OpeningSize) bool) []constants.OpeningSize {
	for _, re := range patterns {
		var sizes []constants.OpeningSize
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			w, okW := mmToMeters(m[1])
			h, okH := mmToMeters(m[2])
			if !okW || !okH {
				continue
			}
			sz := constants.OpeningSize{Width: w, Height: h}
			switch {
			case valid(sz):
			case valid(constants.OpeningSize{Width: h, Height: w}):
				sz = constants.OpeningSize{Width: h, Height: w}
			default:
				continue
			}
			sizes = append(sizes, sz)
		}
		if len(sizes) > 0 {
			return sizes
		}
	}
	return nil
}

func mmToMeters(s string) (float64, bool) {
	v, ok := parseDecimal(s)
	if !ok {
		return 0, false
	}
	return constants.Round3(v / 1000), true
}
