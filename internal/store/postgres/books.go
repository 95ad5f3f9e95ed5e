package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

const bookSelect = `
	SELECT b.id, b.created_at, b.updated_at, b.title, b.summary, b.isbn, b.author_id,
		COALESCE((SELECT array_agg(bg.genre_id ORDER BY bg.position) FROM book_genres bg WHERE bg.book_id = b.id), '{}')
	FROM books b
	`

// bookFilterWhere matches every book when a parameter is empty.
const bookFilterWhere = `
	WHERE ($1 = '' OR b.author_id = $1)
	AND ($2 = '' OR EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = $2))
	`

func scanBook(row scanner) (*domain.Book, error) {
	var b domain.Book
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.Title, &b.Summary, &b.ISBN, &b.AuthorID, &b.GenreIDs); err != nil {
		return nil, err
	}
	b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
	if b.GenreIDs == nil {
		b.GenreIDs = []string{}
	}
	return &b, nil
}

func collectBook(row pgx.CollectableRow) (*domain.Book, error) { return scanBook(row) }

// replaceGenres rewrites the genre links of a book. Duplicate IDs keep
// their first position.
func replaceGenres(ctx context.Context, tx pgx.Tx, b *domain.Book) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_genres WHERE book_id = $1`, b.ID); err != nil {
		return err
	}
	if len(b.GenreIDs) == 0 {
		return nil
	}

	const query = `
	INSERT INTO book_genres (book_id, genre_id, position)
	SELECT $1, req.id, MIN(req.ord)
	FROM unnest($2::text[]) WITH ORDINALITY AS req(id, ord)
	GROUP BY req.id
	`
	_, err := tx.Exec(ctx, query, b.ID, b.GenreIDs)
	return writeErr(err)
}

// CreateBook inserts a book and its genre links in one transaction.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO books (id, created_at, updated_at, title, summary, isbn, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.Exec(ctx, query, b.ID, b.CreatedAt, b.UpdatedAt, b.Title, b.Summary, b.ISBN, b.AuthorID); err != nil {
			return writeErr(err)
		}
		return replaceGenres(ctx, tx, b)
	})
}

func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(s.db.QueryRow(ctx, bookSelect+`WHERE b.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// UpdateBook replaces a book's columns and genre links in one transaction.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
		UPDATE books SET updated_at = $2, title = $3, summary = $4, isbn = $5, author_id = $6
		WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, b.ID, b.UpdatedAt, b.Title, b.Summary, b.ISBN, b.AuthorID)
		if err != nil {
			return writeErr(err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return replaceGenres(ctx, tx, b)
	})
}

// DeleteBook removes a book unless a copy of it still exists. Genre links
// cascade.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.exec(ctx, deleteErr, true, `DELETE FROM books WHERE id = $1`, id)
}

func (s *Store) FindBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, bookSelect+bookFilterWhere+`ORDER BY b.id`, filter.AuthorID, filter.GenreID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectBook)
}

func (s *Store) CountBooks(ctx context.Context, filter store.BookFilter) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM books b`+bookFilterWhere, filter.AuthorID, filter.GenreID).Scan(&n)
	return n, err
}
