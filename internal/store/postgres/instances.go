package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

const instanceColumns = `id, created_at, updated_at, book_id, imprint, status, due_back`

const instanceFilterWhere = ` WHERE ($1 = '' OR book_id = $1) AND ($2 = '' OR status = $2)`

func scanInstance(row scanner) (*domain.BookInstance, error) {
	var (
		bi     domain.BookInstance
		status string
	)
	if err := row.Scan(&bi.ID, &bi.CreatedAt, &bi.UpdatedAt, &bi.BookID, &bi.Imprint, &status, &bi.DueBack); err != nil {
		return nil, err
	}
	bi.Status = domain.Status(status)
	bi.CreatedAt, bi.UpdatedAt = bi.CreatedAt.UTC(), bi.UpdatedAt.UTC()
	bi.DueBack = utc(bi.DueBack)
	return &bi, nil
}

func collectInstance(row pgx.CollectableRow) (*domain.BookInstance, error) { return scanInstance(row) }

func (s *Store) CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	const query = `
	INSERT INTO book_instances (id, created_at, updated_at, book_id, imprint, status, due_back)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return s.exec(ctx, writeErr, false, query,
		bi.ID, bi.CreatedAt, bi.UpdatedAt, bi.BookID, bi.Imprint, string(bi.Status), bi.DueBack)
}

func (s *Store) GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bi, err := scanInstance(s.db.QueryRow(ctx, `SELECT `+instanceColumns+` FROM book_instances WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return bi, nil
}

func (s *Store) UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	const query = `
	UPDATE book_instances SET updated_at = $2, book_id = $3, imprint = $4, status = $5, due_back = $6
	WHERE id = $1
	`
	return s.exec(ctx, writeErr, true, query,
		bi.ID, bi.UpdatedAt, bi.BookID, bi.Imprint, string(bi.Status), bi.DueBack)
}

func (s *Store) DeleteBookInstance(ctx context.Context, id string) error {
	return s.exec(ctx, deleteErr, true, `DELETE FROM book_instances WHERE id = $1`, id)
}

func (s *Store) FindBookInstances(ctx context.Context, filter store.BookInstanceFilter) ([]*domain.BookInstance, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+instanceColumns+` FROM book_instances`+instanceFilterWhere+` ORDER BY id`,
		filter.BookID, string(filter.Status))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectInstance)
}

func (s *Store) CountBookInstances(ctx context.Context, filter store.BookInstanceFilter) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM book_instances`+instanceFilterWhere,
		filter.BookID, string(filter.Status)).Scan(&n)
	return n, err
}
