package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

const genreColumns = `id, created_at, updated_at, name`

func scanGenre(row scanner) (*domain.Genre, error) {
	var (
		g                    domain.Genre
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &createdAt, &updatedAt, &g.Name); err != nil {
		return nil, err
	}

	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) queryGenre(ctx context.Context, where string, arg any) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE `+where, arg)

	g, err := scanGenre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGenre inserts a new genre.
// Returns store.ErrAlreadyExists if the ID or the name (ignoring case) is taken.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (id, created_at, updated_at, name) VALUES (?, ?, ?, ?)`,
		g.ID, formatTime(g.CreatedAt), formatTime(g.UpdatedAt), g.Name)
	return writeErr(err)
}

// GetGenre retrieves a genre by ID.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	return s.queryGenre(ctx, `id = ?`, id)
}

// GetGenreByName retrieves a genre by name, ignoring case.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	return s.queryGenre(ctx, `lower(name) = lower(?)`, name)
}

// GetGenres retrieves the genres with the given IDs in the order requested.
// Missing IDs are skipped.
func (s *Store) GetGenres(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	if len(ids) == 0 {
		return []*domain.Genre{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Genre, len(ids))
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Genre, 0, len(byID))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// UpdateGenre renames a genre.
func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE genres SET updated_at = ?, name = ? WHERE id = ?`,
		formatTime(g.UpdatedAt), g.Name, g.ID)
	if err != nil {
		return writeErr(err)
	}
	return requireAffected(res)
}

// DeleteGenre removes a genre. The book_genres foreign key refuses the
// delete while any book is classified under it.
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return deleteErr(err)
	}
	return requireAffected(res)
}

// ListGenres returns every genre.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CountGenres returns the number of genres.
func (s *Store) CountGenres(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genres`).Scan(&n)
	return n, err
}
