package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/plan-parser/constants"
)

type floorRule struct {
	re     *regexp.Regexp
	floors int
}

// FloorCounter infers the number of storeys from drawing text.
type FloorCounter struct {
	rules []floorRule
}

// NewFloorCounter compiles the floor phrases of the vocabulary.
func NewFloorCounter(v constants.Vocabulary) *FloorCounter {
	var rules []floorRule
	add := func(phrase string, floors int) {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" || floors < 1 {
			return
		}
		rules = append(rules, floorRule{
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`),
			floors: floors,
		})
	}
	for _, p := range v.MultiStoryPhrases {
		add(p, 2)
	}
	for _, fi := range v.FloorIndicators {
		add(fi.Phrase, fi.Floors)
	}
	add("ground floor", v.GroundFloorFloors)
	return &FloorCounter{rules: rules}
}

// Count returns the largest floor count implied by any phrase in the
// corpus, or 1.
func (f *FloorCounter) Count(texts []string) int {
	corpus := strings.ToLower(strings.Join(texts, "\n"))
	floors := 1
	for _, r := range f.rules {
		if r.floors > floors && r.re.MatchString(corpus) {
			floors = r.floors
		}
	}
	return floors
}
