package extract

import (
	"regexp"
	"strings"
)

var (
	sectionSheetRe  = regexp.MustCompile(`(?i)\bsection\b|\bS-\d`)
	sectionHeightRe = regexp.MustCompile(`(?i)(\d+[.,]\d{1,3})\s*(?:m\b)?\s*(?:high|height|room)`)
)

// SectionHeightRange bounds storey heights read from section sheets.
var SectionHeightRange = Range{Min: 2.0, Max: 6.0}

// SectionHeight reads a room height from section-sheet annotations such as
// "2.700 high". It only looks when the corpus carries a section marker.
func SectionHeight(texts []string) (float64, bool) {
	corpus := strings.Join(texts, "\n")
	if !sectionSheetRe.MatchString(corpus) {
		return 0, false
	}
	for _, m := range sectionHeightRe.FindAllStringSubmatch(corpus, -1) {
		v, ok := toMeters(m[1], "m")
		if ok && SectionHeightRange.Contains(v) {
			return v, true
		}
	}
	return 0, false
}
