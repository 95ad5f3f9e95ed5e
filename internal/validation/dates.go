package validation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const tagISO8601 = "iso8601"

// isoLayouts are the ISO 8601 shapes accepted for date fields, most specific first.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102",
	"2006-01",
	"2006",
}

// ParseISODate parses the ISO 8601 forms we accept. Values without a zone are UTC.
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatISODate renders a date the way the pipeline stores it: a bare calendar
// date at midnight, otherwise a full RFC 3339 timestamp.
func FormatISODate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

func validateISO8601(fl validator.FieldLevel) bool {
	_, ok := ParseISODate(fl.Field().String())
	return ok
}
