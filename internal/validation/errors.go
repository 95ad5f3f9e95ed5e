package validation

import (
	"strings"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

// FieldError is a user-correctable problem with one submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
	Value   string `json:"value"`
}

// FieldErrors is the ordered list of problems found in a submission.
type FieldErrors []FieldError

// Error joins the messages so FieldErrors can be returned as an error.
func (fe FieldErrors) Error() string {
	return strings.Join(fe.Messages(), "; ")
}

// Messages returns every message in order.
func (fe FieldErrors) Messages() []string {
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		out = append(out, e.Message)
	}
	return out
}

// For returns the messages reported against one field.
func (fe FieldErrors) For(field string) []string {
	var out []string
	for _, e := range fe {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}

// Has reports whether any error was reported against the field.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// AsError converts the list to a domain validation error, or nil when empty.
func (fe FieldErrors) AsError() error {
	if len(fe) == 0 {
		return nil
	}
	return domainerrors.ValidationWithDetails(fe.Error(), []FieldError(fe))
}
