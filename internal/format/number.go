package format

import (
	"math"
	"strconv"
	"strings"
)

// Decimal formats v with a fixed number of places, "N/A" for nil or NaN.
func Decimal(v *float64, places int) string {
	if v == nil || math.IsNaN(*v) {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}

// WithUnit formats v followed by unit, e.g. "12.50 m".
func WithUnit(v *float64, unit string, places int) string {
	formatted := Decimal(v, places)
	if formatted == notAvailable {
		return formatted
	}
	return formatted + " " + unit
}

// ParseNumber parses a decimal string. Empty or malformed input reports false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IsValidNumber reports whether s parses and lies within [min, max]. Pass
// math.Inf to leave a side open.
func IsValidNumber(s string, min, max float64) bool {
	v, ok := ParseNumber(s)
	return ok && v >= min && v <= max
}

// Round rounds v half away from zero to the given number of places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
