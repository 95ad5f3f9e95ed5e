package service

import (
	"fmt"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// Form field names, shared by the schemas, the builders and the API.
const (
	FieldFirstName   = "first_name"
	FieldFamilyName  = "family_name"
	FieldDateOfBirth = "date_of_birth"
	FieldDateOfDeath = "date_of_death"

	FieldTitle   = "title"
	FieldAuthor  = "author"
	FieldSummary = "summary"
	FieldISBN    = "isbn"
	FieldGenre   = "genre"

	FieldName = "name"

	FieldBook    = "book"
	FieldImprint = "imprint"
	FieldStatus  = "status"
	FieldDueBack = "due_back"
)

var authorSchema = validation.Schema{
	Name: "author",
	Fields: []validation.Field{
		validation.Text(FieldFirstName, true,
			validation.Required("First name must be specified."),
			validation.Alphanumeric("First name has nonalphanumeric characters."),
		),
		validation.Text(FieldFamilyName, true,
			validation.Required("Family name must be specified"),
			validation.Alphanumeric("Family name has non-alphanumeric characters."),
		),
		validation.Date(FieldDateOfBirth, validation.OptionalISODate("Invalid date of birth")),
		validation.Date(FieldDateOfDeath, validation.OptionalISODate("Invalid date of death")),
	},
}

var bookSchema = validation.Schema{
	Name: "book",
	Fields: []validation.Field{
		validation.Text(FieldTitle, true, validation.Required("Title must not be empty.")),
		validation.Text(FieldAuthor, true, validation.Required("Author must not be empty.")),
		validation.Text(FieldSummary, true, validation.Required("Summary must not be empty.")),
		validation.Text(FieldISBN, true, validation.Required("ISBN must not be empty.")),
		validation.List(FieldGenre),
	},
}

var genreSchema = validation.Schema{
	Name: "genre",
	Fields: []validation.Field{
		validation.Text(FieldName, true,
			validation.Required("Genre name required"),
			validation.MaxLength("Genre name must be at most 100 characters.", 100),
		),
	},
}

var bookInstanceSchema = validation.Schema{
	Name: "bookinstance",
	Fields: []validation.Field{
		validation.Text(FieldBook, true, validation.Required("Book must be specified")),
		validation.Text(FieldImprint, true, validation.Required("Imprint must be specified")),
		validation.Text(FieldStatus, true, validation.OneOf("Invalid status", domain.StatusValues()...)),
		validation.Date(FieldDueBack, validation.OptionalISODate("Invalid date")),
	},
}

// Forms validates and sanitizes raw submissions for every entity kind.
type Forms struct {
	validator *validation.Validator
	schemas   map[domain.Kind]validation.Schema
}

// NewForms creates the form registry with the catalog schemas.
func NewForms() *Forms {
	return &Forms{
		validator: validation.New(),
		schemas: map[domain.Kind]validation.Schema{
			domain.KindAuthor:       authorSchema,
			domain.KindBook:         bookSchema,
			domain.KindGenre:        genreSchema,
			domain.KindBookInstance: bookInstanceSchema,
		},
	}
}

// Schema returns the field declarations for a kind.
func (f *Forms) Schema(kind domain.Kind) (validation.Schema, bool) {
	s, ok := f.schemas[kind]
	return s, ok
}

// ValidateAndSanitize runs the pipeline for one kind. The Book genre field is
// normalized to a set first. Values always holds every declared field; the
// error is reserved for an unknown kind.
func (f *Forms) ValidateAndSanitize(kind domain.Kind, in validation.Input) (validation.Values, validation.FieldErrors, error) {
	schema, ok := f.schemas[kind]
	if !ok {
		return nil, nil, fmt.Errorf("no form for kind %q", kind)
	}
	if in == nil {
		in = validation.Input{}
	}
	if kind == domain.KindBook {
		validation.NormalizeSet(in, FieldGenre)
	}

	values, errs := f.validator.Run(schema, in)
	return values, errs, nil
}
