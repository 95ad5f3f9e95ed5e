package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

// DeleteCheck is the outcome of asking whether an entity may be deleted.
type DeleteCheck struct {
	Kind       domain.Kind  `json:"kind"`
	ID         string       `json:"id"`
	Allowed    bool         `json:"allowed"`
	Dependents []domain.Ref `json:"dependents"`
}

// Guard finds the records that block a delete.
//
// The check runs before the delete and is not atomic with it. The stores
// refuse a delete that would orphan a record, so a delete that loses the
// race is still refused, with store.ErrHasDependents.
type Guard struct {
	store store.Store
}

// NewGuard creates a guard reading from s.
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// CanDelete lists the dependents of an entity. Authors are blocked by their
// books, genres by the books classified under them and books by their copies.
// Copies are never referenced, so they are always allowed.
func (g *Guard) CanDelete(ctx context.Context, kind domain.Kind, id string) (DeleteCheck, error) {
	check := DeleteCheck{Kind: kind, ID: id, Dependents: []domain.Ref{}}

	switch kind {
	case domain.KindAuthor:
		books, err := g.store.FindBooks(ctx, store.BookFilter{AuthorID: id})
		if err != nil {
			return check, fmt.Errorf("find books by author: %w", err)
		}
		check.Dependents = bookRefs(books)

	case domain.KindGenre:
		books, err := g.store.FindBooks(ctx, store.BookFilter{GenreID: id})
		if err != nil {
			return check, fmt.Errorf("find books by genre: %w", err)
		}
		check.Dependents = bookRefs(books)

	case domain.KindBook:
		copies, err := g.store.FindBookInstances(ctx, store.BookInstanceFilter{BookID: id})
		if err != nil {
			return check, fmt.Errorf("find copies of book: %w", err)
		}
		check.Dependents = instanceRefs(copies)

	case domain.KindBookInstance:

	default:
		return check, fmt.Errorf("unknown kind %q", kind)
	}

	check.Allowed = len(check.Dependents) == 0
	return check, nil
}

func bookRefs(books []*domain.Book) []domain.Ref {
	refs := make([]domain.Ref, 0, len(books))
	for _, b := range books {
		refs = append(refs, b.Ref())
	}
	return refs
}

func instanceRefs(copies []*domain.BookInstance) []domain.Ref {
	refs := make([]domain.Ref, 0, len(copies))
	for _, bi := range copies {
		refs = append(refs, bi.Ref())
	}
	return refs
}
