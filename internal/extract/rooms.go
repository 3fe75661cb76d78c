package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/plan-parser/constants"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxRoomNameLen caps names derived from label text; longer lines are
// title blocks or notes rather than room labels.
const maxRoomNameLen = 32

var (
	dimPairStripRe = regexp.MustCompile(`(?i)[\(\[]?\s*\d+(?:[.,]\d+)?\s*(?:mm|cm|ft|in|m|'|")?\s*(?:[×xX*]|\bby\b)\s*\d+(?:[.,]\d+)?\s*(?:mm|cm|ft|in|m|'|")?\s*[\)\]]?`)
	unitNumStripRe = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:mm|cm|ft|in|m)\b`)
	labeledStripRe = regexp.MustCompile(`(?i)\b(?:l|len|length|w|wid|width)\s*[=:]\s*\d+(?:[.,]\d+)?`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// StripDimensions removes dimension-like tokens so unit letters next to
// numbers cannot be read as room keywords.
func StripDimensions(text string) string {
	s := dimPairStripRe.ReplaceAllString(text, " ")
	s = labeledStripRe.ReplaceAllString(s, " ")
	s = unitNumStripRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

type roomKeyword struct {
	keyword string
	label   string
	re      *regexp.Regexp
}

// RoomClassifier maps free text to a canonical room label.
type RoomClassifier struct {
	keywords []roomKeyword
}

// NewRoomClassifier builds the lookup table from the vocabulary. Keywords
// are checked longest first so "master bedroom" wins over "bedroom"; equal
// lengths keep vocabulary order.
func NewRoomClassifier(v constants.Vocabulary) *RoomClassifier {
	var kws []roomKeyword
	for _, rt := range v.RoomTypes {
		for _, k := range rt.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			kws = append(kws, roomKeyword{
				keyword: k,
				label:   rt.Label,
				re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
			})
		}
	}
	sort.SliceStable(kws, func(i, j int) bool {
		return len(kws[i].keyword) > len(kws[j].keyword)
	})
	return &RoomClassifier{keywords: kws}
}

// Classify returns the canonical label for text, if any keyword matches as
// a whole word once dimension tokens are stripped.
func (c *RoomClassifier) Classify(text string) (string, bool) {
	s := strings.ToLower(StripDimensions(text))
	if s == "" {
		return "", false
	}
	for _, k := range c.keywords {
		if k.re.MatchString(s) {
			return k.label, true
		}
	}
	return "", false
}

// RoomName derives a display name from the label text ("BEDROOM 1" ->
// "Bedroom 1"), falling back to the canonical label.
func (c *RoomClassifier) RoomName(text, label string) string {
	s := StripDimensions(text)
	if s == "" || len(s) > maxRoomNameLen {
		return label
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}
