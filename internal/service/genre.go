package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
	"github.com/listenupapp/catalog-server/internal/view"
)

// GenreDetail is a genre with the books classified under it.
type GenreDetail struct {
	Genre *domain.Genre  `json:"genre"`
	Books []*domain.Book `json:"books"`
}

// GenreForm is the result of showing or submitting the genre form. Existing
// is set when a create named a genre that is already stored; Genre is then
// the stored genre and nothing new was written.
type GenreForm struct {
	Submission
	Genre    *domain.Genre `json:"genre"`
	Existing bool          `json:"existing"`
}

// GenreService orchestrates genre operations.
type GenreService struct {
	catalog
}

// NewGenreService creates a new genre service.
func NewGenreService(s store.Store, index Indexer, logger *slog.Logger) *GenreService {
	return &GenreService{catalog: newCatalog(s, index, logger)}
}

// List returns every genre ordered by name.
func (s *GenreService) List(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	view.SortGenres(genres)
	return genres, nil
}

func (s *GenreService) withBooks(ctx context.Context, genreID string) (*domain.Genre, []*domain.Book, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"genre": optional(s.store.GetGenre, genreID),
		"genre_books": parallel.Typed(func(ctx context.Context) ([]*domain.Book, error) {
			return s.store.FindBooks(ctx, store.BookFilter{GenreID: genreID})
		}),
	})
	if err != nil {
		return nil, nil, err
	}

	genre := parallel.Value[*domain.Genre](res, "genre")
	if genre == nil {
		return nil, nil, notFound(domain.KindGenre, genreID)
	}
	books := parallel.Value[[]*domain.Book](res, "genre_books")
	if books == nil {
		books = []*domain.Book{}
	}
	view.SortBooks(books)
	return genre, books, nil
}

// Detail returns a genre and its books.
func (s *GenreService) Detail(ctx context.Context, genreID string) (*GenreDetail, error) {
	genre, books, err := s.withBooks(ctx, genreID)
	if err != nil {
		return nil, err
	}
	return &GenreDetail{Genre: genre, Books: books}, nil
}

// Create stores a new genre unless one with the same name, ignoring case,
// already exists, in which case that genre is returned.
func (s *GenreService) Create(ctx context.Context, in validation.Input) (*GenreForm, error) {
	values, errs := s.validate(domain.KindGenre, in)
	genre := BuildGenre(values, "")
	form := &GenreForm{Submission: newSubmission(values, errs), Genre: genre}
	if form.Failed() {
		s.rejected(domain.KindGenre, errs)
		return form, nil
	}

	existing, err := s.byName(ctx, genre.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		form.Genre, form.Existing = existing, true
		return form, nil
	}

	genreID, err := id.New(domain.KindGenre)
	if err != nil {
		return nil, err
	}
	genre.ID = genreID
	genre.InitTimestamps()

	if err := s.store.CreateGenre(ctx, genre); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, writeError(err, domain.KindGenre, genreID)
		}
		// Created concurrently under the same name.
		existing, lookupErr := s.byName(ctx, genre.Name)
		if lookupErr != nil || existing == nil {
			return nil, writeError(err, domain.KindGenre, genreID)
		}
		form.Genre, form.Existing = existing, true
		return form, nil
	}
	s.indexed(domain.KindGenre, genreID, s.index.IndexGenre(ctx, genre))

	s.logger.Info("genre created", "id", genreID, "name", genre.Name)
	return form, nil
}

func (s *GenreService) byName(ctx context.Context, name string) (*domain.Genre, error) {
	g, err := s.store.GetGenreByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get genre by name: %w", err)
	}
	return g, nil
}

// EditForm returns the update form filled from the stored genre.
func (s *GenreService) EditForm(ctx context.Context, genreID string) (*GenreForm, error) {
	genre, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		return nil, writeError(err, domain.KindGenre, genreID)
	}
	return &GenreForm{
		Submission: Submission{Values: map[string]string{FieldName: genre.Name}, Errors: validation.FieldErrors{}},
		Genre:      genre,
	}, nil
}

// Update renames a genre. Taking the name of another genre fails the form.
func (s *GenreService) Update(ctx context.Context, genreID string, in validation.Input) (*GenreForm, error) {
	existing, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		return nil, writeError(err, domain.KindGenre, genreID)
	}

	values, errs := s.validate(domain.KindGenre, in)
	genre := BuildGenre(values, genreID)
	form := &GenreForm{Submission: newSubmission(values, errs), Genre: genre}
	if form.Failed() {
		s.rejected(domain.KindGenre, errs)
		return form, nil
	}

	genre.CreatedAt = existing.CreatedAt
	genre.Touch()

	if err := s.store.UpdateGenre(ctx, genre); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			form.Errors = append(form.Errors, validation.FieldError{
				Field:   FieldName,
				Message: "Genre name already exists.",
				Value:   genre.Name,
			})
			s.rejected(domain.KindGenre, form.Errors)
			return form, nil
		}
		return nil, writeError(err, domain.KindGenre, genreID)
	}
	s.indexed(domain.KindGenre, genreID, s.index.IndexGenre(ctx, genre))
	return form, nil
}

// DeleteView returns the genre with the books that would block deleting it.
func (s *GenreService) DeleteView(ctx context.Context, genreID string) (*DeleteView[*domain.Genre], error) {
	genre, books, err := s.withBooks(ctx, genreID)
	if err != nil {
		return nil, err
	}
	refs := bookRefs(books)
	return &DeleteView[*domain.Genre]{Entity: genre, Allowed: len(refs) == 0, Dependents: refs}, nil
}

// Delete removes a genre no book is classified under.
func (s *GenreService) Delete(ctx context.Context, genreID string) error {
	return s.remove(ctx, domain.KindGenre, genreID, s.store.DeleteGenre)
}
