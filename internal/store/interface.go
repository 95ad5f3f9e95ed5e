// Package store defines the persistence interface for the catalog and its
// Badger implementation. SQL implementations live in subpackages.
package store

import (
	"context"
	"slices"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Get, Update and Delete return ErrNotFound for a missing ID. Creates return
// ErrAlreadyExists for a duplicate ID and ErrInvalidReference when a related
// record is missing. DeleteAuthor, DeleteBook and DeleteGenre refuse with
// ErrHasDependents while other records reference the target; the check and
// the delete happen atomically.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Authors
	CreateAuthor(ctx context.Context, a *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	UpdateAuthor(ctx context.Context, a *domain.Author) error
	DeleteAuthor(ctx context.Context, id string) error
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	CountAuthors(ctx context.Context) (int, error)

	// Genres
	CreateGenre(ctx context.Context, g *domain.Genre) error
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*domain.Genre, error)
	GetGenres(ctx context.Context, ids []string) ([]*domain.Genre, error)
	UpdateGenre(ctx context.Context, g *domain.Genre) error
	DeleteGenre(ctx context.Context, id string) error
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	CountGenres(ctx context.Context) (int, error)

	// Books
	CreateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	FindBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	CountBooks(ctx context.Context, filter BookFilter) (int, error)

	// Book instances
	CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error
	GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error)
	UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error
	FindBookInstances(ctx context.Context, filter BookInstanceFilter) ([]*domain.BookInstance, error)
	CountBookInstances(ctx context.Context, filter BookInstanceFilter) (int, error)
}

// BookFilter selects books. Empty fields match everything.
type BookFilter struct {
	AuthorID string
	GenreID  string
}

// Match reports whether the book satisfies the filter.
func (f BookFilter) Match(b *domain.Book) bool {
	if f.AuthorID != "" && b.AuthorID != f.AuthorID {
		return false
	}
	if f.GenreID != "" && !slices.Contains(b.GenreIDs, f.GenreID) {
		return false
	}
	return true
}

// BookInstanceFilter selects book instances. Empty fields match everything.
type BookInstanceFilter struct {
	BookID string
	Status domain.Status
}

// Match reports whether the instance satisfies the filter.
func (f BookInstanceFilter) Match(bi *domain.BookInstance) bool {
	if f.BookID != "" && bi.BookID != f.BookID {
		return false
	}
	if f.Status != "" && bi.Status != f.Status {
		return false
	}
	return true
}
