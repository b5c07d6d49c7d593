package format

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Coordinate bounds in decimal degrees.
const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

var fieldValidator = validator.New()

// IsValidEmail reports whether s is a syntactically valid address.
func IsValidEmail(s string) bool {
	return fieldValidator.Var(s, "required,email") == nil
}

// IsValidLatitude reports whether lat lies within [-90, 90].
func IsValidLatitude(lat float64) bool {
	return lat >= LatitudeMin && lat <= LatitudeMax
}

// IsValidLongitude reports whether lng lies within [-180, 180].
func IsValidLongitude(lng float64) bool {
	return lng >= LongitudeMin && lng <= LongitudeMax
}

// ValidateRequired returns one message per missing field, in the order of
// required. Nil values, zero values and blank strings count as missing.
func ValidateRequired(values map[string]any, required []string) []string {
	var errs []string
	for _, field := range required {
		if isBlank(values[field]) {
			errs = append(errs, fmt.Sprintf("%s is required", SnakeToTitle(field)))
		}
	}
	return errs
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.IsNil()
	}
	return rv.IsZero()
}
