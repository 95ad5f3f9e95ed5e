package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

const instanceColumns = `id, created_at, updated_at, book_id, imprint, status, due_back`

func scanInstance(row scanner) (*domain.BookInstance, error) {
	var (
		bi                   domain.BookInstance
		createdAt, updatedAt string
		status               string
		dueBack              sql.NullString
	)
	if err := row.Scan(&bi.ID, &createdAt, &updatedAt, &bi.BookID, &bi.Imprint, &status, &dueBack); err != nil {
		return nil, err
	}
	bi.Status = domain.Status(status)

	var err error
	if bi.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if bi.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if bi.DueBack, err = parseNullableTime(dueBack); err != nil {
		return nil, err
	}
	return &bi, nil
}

// CreateBookInstance inserts a new copy.
// Returns store.ErrInvalidReference if the book does not exist.
func (s *Store) CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_instances (id, created_at, updated_at, book_id, imprint, status, due_back)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bi.ID, formatTime(bi.CreatedAt), formatTime(bi.UpdatedAt),
		bi.BookID, bi.Imprint, string(bi.Status), nullTimeString(bi.DueBack))
	return writeErr(err)
}

// GetBookInstance retrieves a copy by ID.
func (s *Store) GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM book_instances WHERE id = ?`, id)

	bi, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bi, nil
}

// UpdateBookInstance replaces every mutable column of a copy.
func (s *Store) UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE book_instances SET updated_at = ?, book_id = ?, imprint = ?, status = ?, due_back = ?
		WHERE id = ?`,
		formatTime(bi.UpdatedAt), bi.BookID, bi.Imprint, string(bi.Status), nullTimeString(bi.DueBack), bi.ID)
	if err != nil {
		return writeErr(err)
	}
	return requireAffected(res)
}

// DeleteBookInstance removes a copy.
func (s *Store) DeleteBookInstance(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM book_instances WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func instanceWhere(f store.BookInstanceFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.BookID != "" {
		clauses = append(clauses, `book_id = ?`)
		args = append(args, f.BookID)
	}
	if f.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, string(f.Status))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

// FindBookInstances returns the copies matching the filter.
func (s *Store) FindBookInstances(ctx context.Context, filter store.BookInstanceFilter) ([]*domain.BookInstance, error) {
	where, args := instanceWhere(filter)

	rows, err := s.db.QueryContext(ctx, `SELECT `+instanceColumns+` FROM book_instances`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.BookInstance
	for rows.Next() {
		bi, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bi)
	}
	return out, rows.Err()
}

// CountBookInstances returns the number of copies matching the filter.
func (s *Store) CountBookInstances(ctx context.Context, filter store.BookInstanceFilter) (int, error) {
	where, args := instanceWhere(filter)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM book_instances`+where, args...).Scan(&n)
	return n, err
}
