package search

import (
	"context"
	"fmt"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// IndexAuthor adds or replaces an author.
func (s *Index) IndexAuthor(_ context.Context, a *domain.Author) error {
	return s.IndexDocument(AuthorDocument(a))
}

// IndexBook adds or replaces a book.
func (s *Index) IndexBook(_ context.Context, b *domain.Book) error {
	return s.IndexDocument(BookDocument(b))
}

// IndexGenre adds or replaces a genre.
func (s *Index) IndexGenre(_ context.Context, g *domain.Genre) error {
	return s.IndexDocument(GenreDocument(g))
}

// Remove drops a document. Removing an ID that was never indexed is not an
// error, since copies are not indexed at all.
func (s *Index) Remove(_ context.Context, id string) error {
	return s.DeleteDocument(id)
}

// Source lists what Reindex loads. Every store.Store is a Source.
type Source interface {
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	FindBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error)
}

// Reindex rebuilds the index from the source and returns the number of
// documents written.
func (s *Index) Reindex(ctx context.Context, src Source) (int, error) {
	authors, err := src.ListAuthors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list authors: %w", err)
	}
	genres, err := src.ListGenres(ctx)
	if err != nil {
		return 0, fmt.Errorf("list genres: %w", err)
	}
	books, err := src.FindBooks(ctx, store.BookFilter{})
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	docs := make([]*Document, 0, len(authors)+len(genres)+len(books))
	for _, a := range authors {
		docs = append(docs, AuthorDocument(a))
	}
	for _, g := range genres {
		docs = append(docs, GenreDocument(g))
	}
	for _, b := range books {
		docs = append(docs, BookDocument(b))
	}

	if err := s.Rebuild(); err != nil {
		return 0, err
	}
	if err := s.IndexDocuments(docs); err != nil {
		return 0, err
	}

	s.logger.Info("search index loaded", "authors", len(authors), "genres", len(genres), "books", len(books))
	return len(docs), nil
}
