package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.summary, b.isbn, b.author_id`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &createdAt, &updatedAt, &b.Title, &b.Summary, &b.ISBN, &b.AuthorID); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.GenreIDs = []string{}
	return &b, nil
}

// insertGenres writes the genre links of a book, ignoring duplicate IDs.
func insertGenres(ctx context.Context, tx *sql.Tx, b *domain.Book) error {
	seen := make(map[string]bool, len(b.GenreIDs))
	for i, genreID := range b.GenreIDs {
		if seen[genreID] {
			continue
		}
		seen[genreID] = true

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_genres (book_id, genre_id, position) VALUES (?, ?, ?)`,
			b.ID, genreID, i); err != nil {
			return writeErr(err)
		}
	}
	return nil
}

// CreateBook inserts a book and its genre links in one transaction.
// Returns store.ErrInvalidReference if the author or a genre does not exist.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, created_at, updated_at, title, summary, isbn, author_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, formatTime(b.CreatedAt), formatTime(b.UpdatedAt), b.Title, b.Summary, b.ISBN, b.AuthorID)
		if err != nil {
			return writeErr(err)
		}
		return insertGenres(ctx, tx, b)
	})
}

// GetBook retrieves a book with its genre IDs.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadGenres(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook replaces a book's columns and genre links in one transaction.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE books SET updated_at = ?, title = ?, summary = ?, isbn = ?, author_id = ?
			WHERE id = ?`,
			formatTime(b.UpdatedAt), b.Title, b.Summary, b.ISBN, b.AuthorID, b.ID)
		if err != nil {
			return writeErr(err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, b.ID); err != nil {
			return err
		}
		return insertGenres(ctx, tx, b)
	})
}

// DeleteBook removes a book and its genre links. The book_instances foreign
// key refuses the delete while copies of the book exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return deleteErr(err)
	}
	return requireAffected(res)
}

func bookWhere(f store.BookFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.AuthorID != "" {
		clauses = append(clauses, `b.author_id = ?`)
		args = append(args, f.AuthorID)
	}
	if f.GenreID != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = ?)`)
		args = append(args, f.GenreID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

// FindBooks returns the books matching the filter.
func (s *Store) FindBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	where, args := bookWhere(filter)

	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books b`+where+` ORDER BY b.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadGenres(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// CountBooks returns the number of books matching the filter.
func (s *Store) CountBooks(ctx context.Context, filter store.BookFilter) (int, error) {
	where, args := bookWhere(filter)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books b`+where, args...).Scan(&n)
	return n, err
}

// loadGenres fills GenreIDs for the given books in link order.
func (s *Store) loadGenres(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Book, len(books))
	args := make([]any, len(books))
	for i, b := range books {
		byID[b.ID] = b
		args[i] = b.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, genre_id FROM book_genres
		WHERE book_id IN (`+placeholders(len(books))+`)
		ORDER BY book_id, position`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, genreID string
		if err := rows.Scan(&bookID, &genreID); err != nil {
			return err
		}
		if b := byID[bookID]; b != nil {
			b.GenreIDs = append(b.GenreIDs, genreID)
		}
	}
	return rows.Err()
}
