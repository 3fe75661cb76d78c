package constants

import (
	"math"
	"strconv"
)

// Round3 rounds a meter value to millimeter precision.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatMeters renders a meter value as the shortest decimal string after
// rounding to 3 places ("4.5", "3.353", "4").
func FormatMeters(v float64) string {
	return strconv.FormatFloat(Round3(v), 'f', -1, 64)
}
