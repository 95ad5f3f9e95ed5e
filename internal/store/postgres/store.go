// Package postgres implements store.Store on PostgreSQL through pgxpool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listenupapp/catalog-server/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// PostgreSQL error codes mapped onto store errors.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Store provides PostgreSQL-backed persistence for the catalog.
type Store struct {
	db      *pgxpool.Pool
	timeout time.Duration
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at dsn and applies the schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("PostgreSQL database opened", "host", pool.Config().ConnConfig.Host)
	}

	return &Store{db: pool, timeout: 5 * time.Second, logger: logger}, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Ping(ctx)
}

// exec runs a single statement and maps constraint failures. A statement
// that matched no row yields store.ErrNotFound when requireRow is set.
func (s *Store) exec(ctx context.Context, mapErr func(error) error, requireRow bool, sql string, args ...any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if requireRow && tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return pgx.BeginFunc(ctx, s.db, fn)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// writeErr maps constraint failures of inserts and updates onto store errors.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// deleteErr maps constraint failures of deletes onto store errors.
func deleteErr(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrHasDependents, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
