package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/listenupapp/catalog-server/internal/domain"
)

type scanner interface{ Scan(dest ...any) error }

const authorColumns = `id, created_at, updated_at, first_name, family_name, date_of_birth, date_of_death`

func scanAuthor(row scanner) (*domain.Author, error) {
	var a domain.Author
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.FirstName, &a.FamilyName, &a.DateOfBirth, &a.DateOfDeath); err != nil {
		return nil, err
	}
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	a.DateOfBirth, a.DateOfDeath = utc(a.DateOfBirth), utc(a.DateOfDeath)
	return &a, nil
}

func collectAuthor(row pgx.CollectableRow) (*domain.Author, error) { return scanAuthor(row) }

func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	const query = `
	INSERT INTO authors (id, created_at, updated_at, first_name, family_name, date_of_birth, date_of_death)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return s.exec(ctx, writeErr, false, query,
		a.ID, a.CreatedAt, a.UpdatedAt, a.FirstName, a.FamilyName, a.DateOfBirth, a.DateOfDeath)
}

func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := scanAuthor(s.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	const query = `
	UPDATE authors
	SET updated_at = $2, first_name = $3, family_name = $4, date_of_birth = $5, date_of_death = $6
	WHERE id = $1
	`
	return s.exec(ctx, writeErr, true, query,
		a.ID, a.UpdatedAt, a.FirstName, a.FamilyName, a.DateOfBirth, a.DateOfDeath)
}

// DeleteAuthor removes an author unless a book still references it.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	return s.exec(ctx, deleteErr, true, `DELETE FROM authors WHERE id = $1`, id)
}

func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectAuthor)
}

func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n)
	return n, err
}
