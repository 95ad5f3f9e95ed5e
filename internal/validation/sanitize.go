package validation

import (
	"strings"

	"golang.org/x/net/html"
)

// sanitizeText trims and, for escaped fields, HTML-escapes a value. Escaping
// decodes existing entities first so that running it twice is a no-op.
func sanitizeText(s string, escape bool) string {
	s = strings.TrimSpace(s)
	if !escape {
		return s
	}
	return html.EscapeString(strings.TrimSpace(html.UnescapeString(s)))
}

// sanitizeDate coerces a date field. Input that does not parse becomes "no date"
// rather than an error; the date rule reports invalid input separately.
func sanitizeDate(s string) Value {
	t, ok := ParseISODate(s)
	if !ok {
		return Value{}
	}
	return Value{Text: FormatISODate(t), Date: &t}
}

func sanitizeList(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, s := range vs {
		if s = sanitizeText(s, true); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Escape applies the text sanitizer used for escaped form fields.
func Escape(s string) string {
	return sanitizeText(s, true)
}
