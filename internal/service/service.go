// Package service implements the catalog operations: form validation and
// entity building, referential integrity on delete, and the concurrent reads
// behind composite views.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// Indexer keeps a search index in step with catalog writes.
type Indexer interface {
	IndexAuthor(ctx context.Context, a *domain.Author) error
	IndexBook(ctx context.Context, b *domain.Book) error
	IndexGenre(ctx context.Context, g *domain.Genre) error
	Remove(ctx context.Context, id string) error
}

// NoopIndexer discards every update.
type NoopIndexer struct{}

func (NoopIndexer) IndexAuthor(context.Context, *domain.Author) error { return nil }
func (NoopIndexer) IndexBook(context.Context, *domain.Book) error     { return nil }
func (NoopIndexer) IndexGenre(context.Context, *domain.Genre) error   { return nil }
func (NoopIndexer) Remove(context.Context, string) error              { return nil }

// Submission is the part of every form result describing the submitted data.
// Values are sanitized and always complete, so a failed form can be shown
// again without losing the user's input.
type Submission struct {
	Values map[string]string      `json:"values"`
	Errors validation.FieldErrors `json:"errors"`
}

// Failed reports whether the submission was rejected and nothing was written.
func (s Submission) Failed() bool {
	return len(s.Errors) > 0
}

func newSubmission(values validation.Values, errs validation.FieldErrors) Submission {
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	return Submission{Values: values.Flat(), Errors: errs}
}

// DeleteView is what a user sees before confirming a delete.
type DeleteView[T any] struct {
	Entity     T            `json:"entity"`
	Allowed    bool         `json:"allowed"`
	Dependents []domain.Ref `json:"dependents"`
}

// catalog holds what every entity service shares.
type catalog struct {
	store  store.Store
	forms  *Forms
	guard  *Guard
	index  Indexer
	logger *slog.Logger
}

func newCatalog(s store.Store, index Indexer, logger *slog.Logger) catalog {
	if index == nil {
		index = NoopIndexer{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return catalog{
		store:  s,
		forms:  NewForms(),
		guard:  NewGuard(s),
		index:  index,
		logger: logger,
	}
}

// validate runs the pipeline for kind. Schemas are static, so an error here
// is a programming mistake.
func (c *catalog) validate(kind domain.Kind, in validation.Input) (validation.Values, validation.FieldErrors) {
	values, errs, err := c.forms.ValidateAndSanitize(kind, in)
	if err != nil {
		panic(err)
	}
	return values, errs
}

func (c *catalog) rejected(kind domain.Kind, errs validation.FieldErrors) {
	c.logger.Debug("submission rejected", "kind", kind, "errors", len(errs), "fields", errs.Error())
}

// indexed logs a failed index update. Searching is best effort and never
// fails a write that already succeeded.
func (c *catalog) indexed(kind domain.Kind, id string, err error) {
	if err != nil {
		c.logger.Warn("search index update failed", "kind", kind, "id", id, "error", err)
	}
}

// remove deletes one entity after the guard allows it. A delete the store
// refuses because a dependent appeared after the check is reported as
// blocked, with the dependents read again.
func (c *catalog) remove(ctx context.Context, kind domain.Kind, id string, del func(context.Context, string) error) error {
	check, err := c.guard.CanDelete(ctx, kind, id)
	if err != nil {
		return err
	}
	if !check.Allowed {
		c.logger.Info("delete blocked", "kind", kind, "id", id, "dependents", len(check.Dependents))
		return blocked(check)
	}

	if err := del(ctx, id); err != nil {
		if errors.Is(err, store.ErrHasDependents) {
			if again, cerr := c.guard.CanDelete(ctx, kind, id); cerr == nil {
				check = again
			}
			c.logger.Info("delete blocked at write", "kind", kind, "id", id)
			return blocked(check)
		}
		return writeError(err, kind, id)
	}

	c.indexed(kind, id, c.index.Remove(ctx, id))
	c.logger.Info("deleted", "kind", kind, "id", id)
	return nil
}

func blocked(check DeleteCheck) error {
	msg := fmt.Sprintf("%s %s is referenced by %d other record(s)", check.Kind, check.ID, len(check.Dependents))
	return domainerrors.IntegrityBlocked(msg, map[string]any{"dependents": check.Dependents})
}

func notFound(kind domain.Kind, id string) error {
	return domainerrors.NotFoundf("%s %s not found", kind, id)
}

// writeError converts the store errors a caller can act on into domain
// errors. Anything else propagates unchanged.
func writeError(err error, kind domain.Kind, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound(kind, id)
	case errors.Is(err, store.ErrInvalidReference):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "a referenced record no longer exists")
	case errors.Is(err, store.ErrConflict):
		return domainerrors.Wrap(err, domainerrors.CodeConflict, "the record was modified concurrently, retry")
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrapf(err, domainerrors.CodeAlreadyExists, "%s %s already exists", kind, id)
	default:
		return fmt.Errorf("write %s %s: %w", kind, id, err)
	}
}

// optional turns a point lookup into a query whose missing result is nil
// rather than an error, so the caller decides what "not found" means.
func optional[T any](get func(context.Context, string) (*T, error), id string) parallel.Query {
	return func(ctx context.Context) (any, error) {
		v, err := get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return (*T)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return validation.FormatISODate(*t)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
