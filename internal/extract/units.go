package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// numberWithUnit matches a decimal (dot or comma) and an optional length unit.
const numberWithUnit = `(\d+(?:[.,]\d+)?)\s*(?:(mm|cm|ft|in|m)\b|('|"|′′|′|″))?`

var lengthTokenRe = regexp.MustCompile(`(?i)^\s*` + numberWithUnit + `\s*$`)

// ParseLength converts a single length token ("3500mm", "3,5m", "11ft",
// "4.5") to meters rounded to 3 decimals. Unitless values are read as
// millimeters from 1000 up, centimeters from 100 up, otherwise meters.
func ParseLength(token string) (float64, bool) {
	m := lengthTokenRe.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	unit := m[2]
	if unit == "" {
		unit = m[3]
	}
	return toMeters(m[1], unit)
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func toMeters(num, unit string) (float64, bool) {
	v, ok := parseDecimal(num)
	if !ok {
		return 0, false
	}
	switch strings.ToLower(unit) {
	case "mm":
		v /= 1000
	case "cm":
		v /= 100
	case "m":
	case "ft", "'", "′":
		v *= 0.3048
	case "in", `"`, "″", "′′":
		v *= 0.0254
	default:
		switch {
		case v >= 1000:
			v /= 1000
		case v >= 100:
			v /= 100
		}
	}
	return constants.Round3(v), true
}
