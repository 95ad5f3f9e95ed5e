package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, created_at, updated_at, first_name, family_name, date_of_birth, date_of_death`

func scanAuthor(row scanner) (*domain.Author, error) {
	var (
		a                    domain.Author
		createdAt, updatedAt string
		born, died           sql.NullString
	)

	if err := row.Scan(&a.ID, &createdAt, &updatedAt, &a.FirstName, &a.FamilyName, &born, &died); err != nil {
		return nil, err
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if a.DateOfBirth, err = parseNullableTime(born); err != nil {
		return nil, err
	}
	if a.DateOfDeath, err = parseNullableTime(died); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAuthor inserts a new author.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, first_name, family_name, date_of_birth, date_of_death)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.FirstName,
		a.FamilyName,
		nullTimeString(a.DateOfBirth),
		nullTimeString(a.DateOfDeath),
	)
	return writeErr(err)
}

// GetAuthor retrieves an author by ID.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAuthor replaces every mutable column of an author.
func (s *Store) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE authors
		SET updated_at = ?, first_name = ?, family_name = ?, date_of_birth = ?, date_of_death = ?
		WHERE id = ?`,
		formatTime(a.UpdatedAt),
		a.FirstName,
		a.FamilyName,
		nullTimeString(a.DateOfBirth),
		nullTimeString(a.DateOfDeath),
		a.ID,
	)
	if err != nil {
		return writeErr(err)
	}
	return requireAffected(res)
}

// DeleteAuthor removes an author. The books foreign key refuses the delete
// while any book references the author.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return deleteErr(err)
	}
	return requireAffected(res)
}

// ListAuthors returns every author.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// CountAuthors returns the number of authors.
func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n)
	return n, err
}
