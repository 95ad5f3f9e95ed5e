package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/listenupapp/catalog-server/internal/domain"
)

const genreColumns = `id, created_at, updated_at, name`

func scanGenre(row scanner) (*domain.Genre, error) {
	var g domain.Genre
	if err := row.Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt, &g.Name); err != nil {
		return nil, err
	}
	g.CreatedAt, g.UpdatedAt = g.CreatedAt.UTC(), g.UpdatedAt.UTC()
	return &g, nil
}

func collectGenre(row pgx.CollectableRow) (*domain.Genre, error) { return scanGenre(row) }

func (s *Store) queryGenre(ctx context.Context, where string, arg any) (*domain.Genre, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g, err := scanGenre(s.db.QueryRow(ctx, `SELECT `+genreColumns+` FROM genres WHERE `+where, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// CreateGenre inserts a genre. The lower(name) index rejects names that
// differ only by case.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	return s.exec(ctx, writeErr, false,
		`INSERT INTO genres (id, created_at, updated_at, name) VALUES ($1, $2, $3, $4)`,
		g.ID, g.CreatedAt, g.UpdatedAt, g.Name)
}

func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	return s.queryGenre(ctx, `id = $1`, id)
}

func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	return s.queryGenre(ctx, `lower(name) = lower($1)`, name)
}

// GetGenres returns the genres with the given IDs in request order,
// skipping IDs that do not exist.
func (s *Store) GetGenres(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	if len(ids) == 0 {
		return []*domain.Genre{}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const query = `
	SELECT g.id, g.created_at, g.updated_at, g.name
	FROM unnest($1::text[]) WITH ORDINALITY AS req(id, ord)
	JOIN genres g ON g.id = req.id
	ORDER BY req.ord
	`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectGenre)
}

func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	return s.exec(ctx, writeErr, true,
		`UPDATE genres SET updated_at = $2, name = $3 WHERE id = $1`,
		g.ID, g.UpdatedAt, g.Name)
}

func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	return s.exec(ctx, deleteErr, true, `DELETE FROM genres WHERE id = $1`, id)
}

func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectGenre)
}

func (s *Store) CountGenres(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&n)
	return n, err
}
