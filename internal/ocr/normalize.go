package ocr

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`^[_\-=|.]{3,}$`)
)

// Normalize folds compatibility characters (full-width digits, ligatures)
// and collapses whitespace within one fragment.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitLines normalizes a page of native text into non-empty lines.
func SplitLines(page string) []string {
	page = reCRLF.ReplaceAllString(page, "\n")
	var out []string
	for _, ln := range strings.Split(page, "\n") {
		if ln = Normalize(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// acceptText rejects single characters, rule lines and strings made only
// of punctuation or symbols.
func acceptText(s string) bool {
	if len([]rune(s)) <= 1 || reBoxNoise.MatchString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
