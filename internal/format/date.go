// Package format holds display and input helpers shared by the API layers.
package format

import (
	"math"
	"strings"
	"time"
)

// Layouts used for dates shown to users and exchanged through forms.
const (
	DisplayLayout  = "Jan 02, 2006"
	InputLayout    = "2006-01-02"
	DateTimeLayout = "Jan 02, 2006 15:04"
)

// RecentReadingDays is how old a reading may be and still count as recent.
const RecentReadingDays = 30

const (
	notAvailable = "N/A"
	invalidDate  = "Invalid date"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	InputLayout,
}

// ParseDate accepts ISO-8601 dates with or without a time component.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range parseLayouts {
		t, perr := time.Parse(layout, s)
		if perr == nil {
			return t, nil
		}
		err = perr
	}
	return time.Time{}, err
}

// DisplayDate renders an ISO date for humans, "N/A" when empty and
// "Invalid date" when unparseable.
func DisplayDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	t, err := ParseDate(s)
	if err != nil {
		return invalidDate
	}
	return t.Format(DisplayLayout)
}

// DisplayDateTime is DisplayDate with the time of day.
func DisplayDateTime(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	t, err := ParseDate(s)
	if err != nil {
		return invalidDate
	}
	return t.Format(DateTimeLayout)
}

// InputDate renders an ISO date in form-input layout, or "" when it cannot.
func InputDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	t, err := ParseDate(s)
	if err != nil {
		return ""
	}
	return t.Format(InputLayout)
}

// DaysBetween returns the absolute distance between two instants in days,
// rounded up. A partial day counts as one.
func DaysBetween(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// IsRecent reports whether t lies within withinDays of now.
func IsRecent(t, now time.Time, withinDays int) bool {
	return DaysBetween(t, now) <= withinDays
}
