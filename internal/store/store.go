package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/catalog-server/internal/domain"
)

// Key prefixes. Each entity's records and indexes live under its prefix.
const (
	authorPrefix   = "author:"
	genrePrefix    = "genre:"
	bookPrefix     = "book:"
	instancePrefix = "copy:"
)

// Badger implements Store on an embedded Badger database.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	authors   *Entity[domain.Author]
	genres    *Entity[domain.Genre]
	books     *Entity[domain.Book]
	instances *Entity[domain.BookInstance]
}

var _ Store = (*Badger)(nil)

// New opens a Badger store at path. An empty path opens an in-memory database.
func New(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Badger{
		db:     db,
		logger: logger,
	}
	s.initEntities()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

func (s *Badger) initEntities() {
	s.authors = NewEntity[domain.Author](s, authorPrefix)

	s.genres = NewEntity[domain.Genre](s, genrePrefix).
		WithIndexTransform("name",
			func(g *domain.Genre) []string { return []string{normalizeName(g.Name)} },
			normalizeName,
		)

	s.books = NewEntity[domain.Book](s, bookPrefix).
		WithGroupIndex("author", func(b *domain.Book) []string { return nonEmpty(b.AuthorID) }).
		WithGroupIndex("genre", func(b *domain.Book) []string { return b.GenreIDs }).
		WithReference("author", authorPrefix, func(b *domain.Book) []string { return nonEmpty(b.AuthorID) }).
		WithReference("genre", genrePrefix, func(b *domain.Book) []string { return b.GenreIDs })

	s.instances = NewEntity[domain.BookInstance](s, instancePrefix).
		WithGroupIndex("book", func(bi *domain.BookInstance) []string { return nonEmpty(bi.BookID) }).
		WithGroupIndex("status", func(bi *domain.BookInstance) []string { return nonEmpty(string(bi.Status)) }).
		WithReference("book", bookPrefix, func(bi *domain.BookInstance) []string { return nonEmpty(bi.BookID) })
}

// Close gracefully closes the database connection.
func (s *Badger) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping reports whether the database is open and readable.
func (s *Badger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// refuseIfReferenced builds a delete guard that fails with ErrHasDependents
// while any record of child carries id under its group index.
func refuseIfReferenced[C any](child *Entity[C], index, id string) Guard {
	return func(txn *badger.Txn) error {
		found, err := child.HasGroupMember(txn, index, id)
		if err != nil {
			return err
		}
		if found {
			return ErrHasDependents
		}
		return nil
	}
}

// Authors

// CreateAuthor stores a new author.
func (s *Badger) CreateAuthor(ctx context.Context, a *domain.Author) error {
	return s.authors.Create(ctx, a.ID, a)
}

// GetAuthor retrieves an author by ID.
func (s *Badger) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	return s.authors.Get(ctx, id)
}

// UpdateAuthor replaces a stored author.
func (s *Badger) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	return s.authors.Update(ctx, a.ID, a)
}

// DeleteAuthor removes an author that no book references.
func (s *Badger) DeleteAuthor(ctx context.Context, id string) error {
	return s.authors.Delete(ctx, id, refuseIfReferenced(s.books, "author", id))
}

// ListAuthors returns every author.
func (s *Badger) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	return collect(s.authors.List(ctx))
}

// CountAuthors returns the number of authors.
func (s *Badger) CountAuthors(ctx context.Context) (int, error) {
	return s.authors.Count(ctx)
}

// Genres

// CreateGenre stores a new genre. Names are unique ignoring case.
func (s *Badger) CreateGenre(ctx context.Context, g *domain.Genre) error {
	return s.genres.Create(ctx, g.ID, g)
}

// GetGenre retrieves a genre by ID.
func (s *Badger) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	return s.genres.Get(ctx, id)
}

// GetGenreByName retrieves a genre by name, ignoring case.
func (s *Badger) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	return s.genres.GetByIndex(ctx, "name", name)
}

// GetGenres retrieves the genres with the given IDs in the order requested.
// Missing IDs are skipped.
func (s *Badger) GetGenres(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	out := make([]*domain.Genre, 0, len(ids))
	for _, id := range ids {
		g, err := s.genres.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// UpdateGenre replaces a stored genre.
func (s *Badger) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	return s.genres.Update(ctx, g.ID, g)
}

// DeleteGenre removes a genre that no book is classified under.
func (s *Badger) DeleteGenre(ctx context.Context, id string) error {
	return s.genres.Delete(ctx, id, refuseIfReferenced(s.books, "genre", id))
}

// ListGenres returns every genre.
func (s *Badger) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return collect(s.genres.List(ctx))
}

// CountGenres returns the number of genres.
func (s *Badger) CountGenres(ctx context.Context) (int, error) {
	return s.genres.Count(ctx)
}

// Books

// CreateBook stores a new book. Its author and genres must exist.
func (s *Badger) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.books.Create(ctx, b.ID, b)
}

// GetBook retrieves a book by ID.
func (s *Badger) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.Get(ctx, id)
}

// UpdateBook replaces a stored book. Its author and genres must exist.
func (s *Badger) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.books.Update(ctx, b.ID, b)
}

// DeleteBook removes a book that has no instances.
func (s *Badger) DeleteBook(ctx context.Context, id string) error {
	return s.books.Delete(ctx, id, refuseIfReferenced(s.instances, "book", id))
}

// FindBooks returns the books matching the filter.
func (s *Badger) FindBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error) {
	var books []*domain.Book
	var err error

	switch {
	case filter.AuthorID != "":
		books, err = collect(s.books.ListByGroup(ctx, "author", filter.AuthorID))
	case filter.GenreID != "":
		books, err = collect(s.books.ListByGroup(ctx, "genre", filter.GenreID))
	default:
		books, err = collect(s.books.List(ctx))
	}
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(books, func(b *domain.Book) bool { return !filter.Match(b) }), nil
}

// CountBooks returns the number of books matching the filter.
func (s *Badger) CountBooks(ctx context.Context, filter BookFilter) (int, error) {
	switch {
	case filter.AuthorID != "" && filter.GenreID != "":
		books, err := s.FindBooks(ctx, filter)
		return len(books), err
	case filter.AuthorID != "":
		return s.books.CountGroup(ctx, "author", filter.AuthorID)
	case filter.GenreID != "":
		return s.books.CountGroup(ctx, "genre", filter.GenreID)
	default:
		return s.books.Count(ctx)
	}
}

// Book instances

// CreateBookInstance stores a new copy. Its book must exist.
func (s *Badger) CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	return s.instances.Create(ctx, bi.ID, bi)
}

// GetBookInstance retrieves a copy by ID.
func (s *Badger) GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error) {
	return s.instances.Get(ctx, id)
}

// UpdateBookInstance replaces a stored copy.
func (s *Badger) UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	return s.instances.Update(ctx, bi.ID, bi)
}

// DeleteBookInstance removes a copy. Nothing references copies.
func (s *Badger) DeleteBookInstance(ctx context.Context, id string) error {
	return s.instances.Delete(ctx, id)
}

// FindBookInstances returns the copies matching the filter.
func (s *Badger) FindBookInstances(ctx context.Context, filter BookInstanceFilter) ([]*domain.BookInstance, error) {
	var out []*domain.BookInstance
	var err error

	switch {
	case filter.BookID != "":
		out, err = collect(s.instances.ListByGroup(ctx, "book", filter.BookID))
	case filter.Status != "":
		out, err = collect(s.instances.ListByGroup(ctx, "status", string(filter.Status)))
	default:
		out, err = collect(s.instances.List(ctx))
	}
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(out, func(bi *domain.BookInstance) bool { return !filter.Match(bi) }), nil
}

// CountBookInstances returns the number of copies matching the filter.
func (s *Badger) CountBookInstances(ctx context.Context, filter BookInstanceFilter) (int, error) {
	switch {
	case filter.BookID != "" && filter.Status != "":
		out, err := s.FindBookInstances(ctx, filter)
		return len(out), err
	case filter.BookID != "":
		return s.instances.CountGroup(ctx, "book", filter.BookID)
	case filter.Status != "":
		return s.instances.CountGroup(ctx, "status", string(filter.Status))
	default:
		return s.instances.Count(ctx)
	}
}
