package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
	"github.com/listenupapp/catalog-server/internal/view"
)

// AuthorDetail is an author with the books they wrote.
type AuthorDetail struct {
	Author *domain.Author `json:"author"`
	Books  []*domain.Book `json:"books"`
}

// AuthorForm is the result of showing or submitting the author form.
type AuthorForm struct {
	Submission
	Author *domain.Author `json:"author"`
}

// AuthorService orchestrates author operations.
type AuthorService struct {
	catalog
}

// NewAuthorService creates a new author service.
func NewAuthorService(s store.Store, index Indexer, logger *slog.Logger) *AuthorService {
	return &AuthorService{catalog: newCatalog(s, index, logger)}
}

// List returns every author ordered by family name.
func (s *AuthorService) List(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	view.SortAuthors(authors)
	return authors, nil
}

// withBooks fetches an author and their books concurrently.
func (s *AuthorService) withBooks(ctx context.Context, authorID string) (*domain.Author, []*domain.Book, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"author": optional(s.store.GetAuthor, authorID),
		"author_books": parallel.Typed(func(ctx context.Context) ([]*domain.Book, error) {
			return s.store.FindBooks(ctx, store.BookFilter{AuthorID: authorID})
		}),
	})
	if err != nil {
		return nil, nil, err
	}

	author := parallel.Value[*domain.Author](res, "author")
	if author == nil {
		return nil, nil, notFound(domain.KindAuthor, authorID)
	}
	books := parallel.Value[[]*domain.Book](res, "author_books")
	view.SortBooks(books)
	return author, books, nil
}

// Detail returns an author and their books.
func (s *AuthorService) Detail(ctx context.Context, authorID string) (*AuthorDetail, error) {
	author, books, err := s.withBooks(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return &AuthorDetail{Author: author, Books: books}, nil
}

// Create validates the submission and stores a new author. A failed form is
// returned with a nil error and nothing is written.
func (s *AuthorService) Create(ctx context.Context, in validation.Input) (*AuthorForm, error) {
	values, errs := s.validate(domain.KindAuthor, in)
	author := BuildAuthor(values, "")
	form := &AuthorForm{Submission: newSubmission(values, errs), Author: author}
	if form.Failed() {
		s.rejected(domain.KindAuthor, errs)
		return form, nil
	}

	authorID, err := id.New(domain.KindAuthor)
	if err != nil {
		return nil, err
	}
	author.ID = authorID
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, writeError(err, domain.KindAuthor, author.ID)
	}
	s.indexed(domain.KindAuthor, author.ID, s.index.IndexAuthor(ctx, author))

	s.logger.Info("author created", "id", author.ID, "name", author.Name())
	return form, nil
}

// EditForm returns the update form filled from the stored author.
func (s *AuthorService) EditForm(ctx context.Context, authorID string) (*AuthorForm, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, writeError(err, domain.KindAuthor, authorID)
	}
	return &AuthorForm{
		Submission: Submission{Values: authorValues(author), Errors: validation.FieldErrors{}},
		Author:     author,
	}, nil
}

// Update validates the submission and replaces the stored author. A missing
// author is NotFound whatever the submission holds. A failed form carries the
// submitted values, not the stored ones.
func (s *AuthorService) Update(ctx context.Context, authorID string, in validation.Input) (*AuthorForm, error) {
	existing, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, writeError(err, domain.KindAuthor, authorID)
	}

	values, errs := s.validate(domain.KindAuthor, in)
	author := BuildAuthor(values, authorID)
	form := &AuthorForm{Submission: newSubmission(values, errs), Author: author}
	if form.Failed() {
		s.rejected(domain.KindAuthor, errs)
		return form, nil
	}

	author.CreatedAt = existing.CreatedAt
	author.Touch()

	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, writeError(err, domain.KindAuthor, authorID)
	}
	s.indexed(domain.KindAuthor, author.ID, s.index.IndexAuthor(ctx, author))
	return form, nil
}

// DeleteView returns the author with the books that would block deleting it.
func (s *AuthorService) DeleteView(ctx context.Context, authorID string) (*DeleteView[*domain.Author], error) {
	author, books, err := s.withBooks(ctx, authorID)
	if err != nil {
		return nil, err
	}
	refs := bookRefs(books)
	return &DeleteView[*domain.Author]{Entity: author, Allowed: len(refs) == 0, Dependents: refs}, nil
}

// Delete removes an author that no book references.
func (s *AuthorService) Delete(ctx context.Context, authorID string) error {
	return s.remove(ctx, domain.KindAuthor, authorID, s.store.DeleteAuthor)
}

func authorValues(a *domain.Author) map[string]string {
	return map[string]string{
		FieldFirstName:   a.FirstName,
		FieldFamilyName:  a.FamilyName,
		FieldDateOfBirth: isoDate(a.DateOfBirth),
		FieldDateOfDeath: isoDate(a.DateOfDeath),
	}
}
