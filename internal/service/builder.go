package service

import (
	"fmt"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// The builders turn sanitized values into candidate entities without touching
// the store. An empty id leaves the entity new; timestamps are the caller's.

// BuildAuthor builds an author from sanitized author form values.
func BuildAuthor(v validation.Values, id string) *domain.Author {
	return &domain.Author{
		Base:        domain.Base{ID: id},
		FirstName:   v.Text(FieldFirstName),
		FamilyName:  v.Text(FieldFamilyName),
		DateOfBirth: v.Date(FieldDateOfBirth),
		DateOfDeath: v.Date(FieldDateOfDeath),
	}
}

// BuildBook builds a book from sanitized book form values.
func BuildBook(v validation.Values, id string) *domain.Book {
	genres := v.List(FieldGenre)
	if genres == nil {
		genres = []string{}
	}
	return &domain.Book{
		Base:     domain.Base{ID: id},
		Title:    v.Text(FieldTitle),
		Summary:  v.Text(FieldSummary),
		ISBN:     v.Text(FieldISBN),
		AuthorID: v.Text(FieldAuthor),
		GenreIDs: genres,
	}
}

// BuildGenre builds a genre from sanitized genre form values.
func BuildGenre(v validation.Values, id string) *domain.Genre {
	return &domain.Genre{
		Base: domain.Base{ID: id},
		Name: v.Text(FieldName),
	}
}

// BuildBookInstance builds a copy from sanitized values. A blank status
// becomes the default.
func BuildBookInstance(v validation.Values, id string) *domain.BookInstance {
	return &domain.BookInstance{
		Base:    domain.Base{ID: id},
		BookID:  v.Text(FieldBook),
		Imprint: v.Text(FieldImprint),
		Status:  domain.ParseStatus(v.Text(FieldStatus)),
		DueBack: v.Date(FieldDueBack),
	}
}

// BuildEntity dispatches to the builder for kind.
func BuildEntity(kind domain.Kind, v validation.Values, id string) (any, error) {
	switch kind {
	case domain.KindAuthor:
		return BuildAuthor(v, id), nil
	case domain.KindBook:
		return BuildBook(v, id), nil
	case domain.KindGenre:
		return BuildGenre(v, id), nil
	case domain.KindBookInstance:
		return BuildBookInstance(v, id), nil
	default:
		return nil, fmt.Errorf("no builder for kind %q", kind)
	}
}
