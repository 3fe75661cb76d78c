package extract

import (
	"regexp"
	"sort"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// Dimension is a room size in meters with Length >= Width.
type Dimension struct {
	Length float64
	Width  float64
}

func newDimension(a, b float64) Dimension {
	if b > a {
		a, b = b, a
	}
	return Dimension{Length: constants.Round3(a), Width: constants.Round3(b)}
}

// Strings renders both sides as decimal strings.
func (d Dimension) Strings() (length, width string) {
	return constants.FormatMeters(d.Length), constants.FormatMeters(d.Width)
}

// Range is an inclusive validity interval in meters.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	// StrictRoomRange bounds explicit room dimensions.
	StrictRoomRange = Range{Min: 1.0, Max: 25.0}
	// LooseRoomRange bounds dimensions recovered from nearby number pairs.
	LooseRoomRange = Range{Min: 0.5, Max: 30.0}
)

// dimPattern captures two (number, unit, unit symbol) groups.
type dimPattern struct {
	name string
	re   *regexp.Regexp
}

// Explicit patterns, most specific first.
var explicitDimPatterns = []dimPattern{
	{
		name: "labeled_lw",
		re:   regexp.MustCompile(`(?i)\b(?:l|len|length)\s*[=:]\s*` + numberWithUnit + `.*?\b(?:w|wid|width)\s*[=:]\s*` + numberWithUnit),
	},
	{
		name: "labeled_wl",
		re:   regexp.MustCompile(`(?i)\b(?:w|wid|width)\s*[=:]\s*` + numberWithUnit + `.*?\b(?:l|len|length)\s*[=:]\s*` + numberWithUnit),
	},
	{
		name: "pair",
		re:   regexp.MustCompile(`(?i)[\(\[]?\s*` + numberWithUnit + `\s*(?:[×xX*]|\bby\b)\s*` + numberWithUnit + `\s*[\)\]]?`),
	},
}

var anyNumberRe = regexp.MustCompile(`(?i)` + numberWithUnit)

// DimensionExtractor finds room dimensions in free text.
type DimensionExtractor struct {
	Strict Range
	Loose  Range
}

// NewDimensionExtractor returns an extractor with the default ranges.
func NewDimensionExtractor() DimensionExtractor {
	return DimensionExtractor{Strict: StrictRoomRange, Loose: LooseRoomRange}
}

// Explicit matches "L x W", "L by W" and labeled Length=/Width= forms. The
// first pattern whose values both fall in the strict range wins.
func (e DimensionExtractor) Explicit(text string) (Dimension, bool) {
	for _, p := range explicitDimPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			a, b, ok := pairValues(m[1:4], m[4:7])
			if !ok {
				continue
			}
			if e.Strict.Contains(a) && e.Strict.Contains(b) {
				return newDimension(a, b), true
			}
		}
	}
	return Dimension{}, false
}

// NumberPair takes the two largest numbers in the loose range, larger as
// length.
func (e DimensionExtractor) NumberPair(text string) (Dimension, bool) {
	var vals []float64
	for _, m := range anyNumberRe.FindAllStringSubmatch(text, -1) {
		unit := m[2]
		if unit == "" {
			unit = m[3]
		}
		v, ok := toMeters(m[1], unit)
		if !ok || !e.Loose.Contains(v) {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) < 2 {
		return Dimension{}, false
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return newDimension(vals[0], vals[1]), true
}

// pairValues converts two (number, unit, symbol) groups; a unit given on one
// side only applies to both.
func pairValues(left, right []string) (float64, float64, bool) {
	lu, ru := unitOf(left), unitOf(right)
	if lu == "" {
		lu = ru
	}
	if ru == "" {
		ru = lu
	}
	a, okA := toMeters(left[0], lu)
	b, okB := toMeters(right[0], ru)
	return a, b, okA && okB
}

func unitOf(g []string) string {
	if g[1] != "" {
		return g[1]
	}
	return g[2]
}
