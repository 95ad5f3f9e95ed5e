package api

import (
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/validation"
)

// StringList is a JSON value that may be sent as a single string or an array
// of strings. Clients posting one checkbox send a string, several send an array.
type StringList []string

// UnmarshalJSON accepts "x", ["x", "y"] and null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or an array of strings: %w", err)
	}
	*l = many
	return nil
}

// Schema implements huma.SchemaProvider so request validation accepts both shapes.
func (StringList) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		OneOf: []*huma.Schema{
			{Type: huma.TypeString},
			{Type: huma.TypeArray, Items: &huma.Schema{Type: huma.TypeString}},
		},
	}
}

// formInput accumulates request fields in the shape the field pipeline reads.
type formInput validation.Input

func newFormInput() formInput {
	return formInput{}
}

// text records a single-valued field. Empty strings are kept: a blank field
// is still a submitted field.
func (f formInput) text(name, value string) formInput {
	f[name] = []string{value}
	return f
}

// list records a multi-valued field, leaving it absent when nil.
func (f formInput) list(name string, values []string) formInput {
	if values != nil {
		f[name] = append([]string(nil), values...)
	}
	return f
}

func (f formInput) input() validation.Input {
	return validation.Input(f)
}
