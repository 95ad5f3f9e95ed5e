package validation

import (
	"strconv"
	"strings"
	"time"
)

// Input is raw submitted form data keyed by field name. A missing key is an
// absent field; a key with several values is a multi-valued field. It has the
// same shape as url.Values.
type Input map[string][]string

// Get returns the first value for the field, or "" when absent.
func (in Input) Get(name string) string {
	if vs := in[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Has reports whether the field was submitted at all.
func (in Input) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// Set replaces the field with a single value.
func (in Input) Set(name, value string) {
	in[name] = []string{value}
}

// NormalizeSet coerces a possibly-multi-valued field into a set: absent becomes
// an empty set, a single value a one-element set, and several values pass
// through unchanged. It runs before the pipeline so list rules see one shape.
func NormalizeSet(in Input, name string) []string {
	vs, ok := in[name]
	if !ok || vs == nil {
		in[name] = []string{}
		return in[name]
	}
	return vs
}

// FieldType selects how a field is read and sanitized.
type FieldType int

const (
	// TypeText is a single trimmed string.
	TypeText FieldType = iota
	// TypeDate is an optional calendar date; unparseable input becomes "no date".
	TypeDate
	// TypeList is a set of strings, such as checkbox selections.
	TypeList
)

// Rule is one validation check with its user-facing message.
type Rule struct {
	Tag       string // validator/v10 tag
	Message   string
	SkipEmpty bool // absent or blank input passes without evaluating Tag
}

// Required fails when the value is blank after trimming.
func Required(msg string) Rule {
	return Rule{Tag: "required", Message: msg}
}

// Alphanumeric fails on any character outside ASCII letters and digits.
// Blank input is left to Required.
func Alphanumeric(msg string) Rule {
	return Rule{Tag: "alphanum", Message: msg, SkipEmpty: true}
}

// OptionalISODate fails on non-empty input that is not an ISO 8601 date.
func OptionalISODate(msg string) Rule {
	return Rule{Tag: tagISO8601, Message: msg, SkipEmpty: true}
}

// OneOf fails on non-empty input outside the allowed values.
func OneOf(msg string, values ...string) Rule {
	return Rule{Tag: "oneof=" + strings.Join(values, " "), Message: msg, SkipEmpty: true}
}

// MaxLength fails when the value is longer than n characters.
func MaxLength(msg string, n int) Rule {
	return Rule{Tag: "max=" + strconv.Itoa(n), Message: msg, SkipEmpty: true}
}

// Field declares how one form field is validated and sanitized.
type Field struct {
	Name   string
	Type   FieldType
	Escape bool
	Rules  []Rule
}

// Text declares a single-valued string field.
func Text(name string, escape bool, rules ...Rule) Field {
	return Field{Name: name, Type: TypeText, Escape: escape, Rules: rules}
}

// Date declares an optional date field.
func Date(name string, rules ...Rule) Field {
	return Field{Name: name, Type: TypeDate, Rules: rules}
}

// List declares a multi-valued field whose elements are escaped.
func List(name string, rules ...Rule) Field {
	return Field{Name: name, Type: TypeList, Escape: true, Rules: rules}
}

// Schema is the ordered set of fields accepted by one form.
type Schema struct {
	Name   string
	Fields []Field
}

// Value is the sanitized form of one field.
type Value struct {
	Text string     `json:"text"`
	Date *time.Time `json:"date,omitempty"`
	List []string   `json:"list,omitempty"`
}

// Values holds a sanitized value for every field declared by a schema.
type Values map[string]Value

// Text returns the sanitized string value of a field.
func (v Values) Text(name string) string {
	return v[name].Text
}

// Date returns the parsed date of a field, or nil for "no date".
func (v Values) Date(name string) *time.Time {
	return v[name].Date
}

// List returns the sanitized elements of a multi-valued field.
func (v Values) List(name string) []string {
	return v[name].List
}

// Flat returns the values as name -> display value, with list fields joined by commas.
func (v Values) Flat() map[string]string {
	out := make(map[string]string, len(v))
	for name, val := range v {
		if val.List != nil {
			out[name] = strings.Join(val.List, ",")
			continue
		}
		out[name] = val.Text
	}
	return out
}

// Input re-encodes the sanitized values as raw input, so that feeding them back
// through the pipeline can be compared with the first pass.
func (v Values) Input() Input {
	in := make(Input, len(v))
	for name, val := range v {
		if val.List != nil {
			in[name] = append([]string{}, val.List...)
			continue
		}
		in[name] = []string{val.Text}
	}
	return in
}

// Run validates and sanitizes input against a schema. Every rule of every field
// is evaluated; each failing rule contributes one error, in field then rule order.
// Sanitization always runs, so Values is complete even when errors are returned.
func (v *Validator) Run(schema Schema, in Input) (Values, FieldErrors) {
	values := make(Values, len(schema.Fields))
	var errs FieldErrors

	for _, f := range schema.Fields {
		switch f.Type {
		case TypeList:
			raw := trimAll(in[f.Name])
			for _, r := range f.Rules {
				if !v.checkList(raw, r) {
					errs = append(errs, FieldError{Field: f.Name, Message: r.Message, Value: strings.Join(raw, ",")})
				}
			}
			values[f.Name] = Value{List: sanitizeList(raw)}

		default:
			raw := strings.TrimSpace(in.Get(f.Name))
			for _, r := range f.Rules {
				if !v.checkText(raw, r) {
					errs = append(errs, FieldError{Field: f.Name, Message: r.Message, Value: raw})
				}
			}
			if f.Type == TypeDate {
				values[f.Name] = sanitizeDate(raw)
				continue
			}
			values[f.Name] = Value{Text: sanitizeText(raw, f.Escape)}
		}
	}

	return values, errs
}

func (v *Validator) checkText(raw string, r Rule) bool {
	if raw == "" && r.SkipEmpty {
		return true
	}
	return v.check(raw, r.Tag)
}

// checkList applies Required to the element count and every other rule to
// each element.
func (v *Validator) checkList(raw []string, r Rule) bool {
	if r.Tag == "required" {
		return len(raw) > 0
	}
	for _, item := range raw {
		if !v.checkText(item, r) {
			return false
		}
	}
	return true
}

func trimAll(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, s := range vs {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
