package service

import (
	"context"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
)

// Counts are the totals shown on the catalog home page.
type Counts struct {
	BookCount                  int `json:"book_count"`
	BookInstanceCount          int `json:"book_instance_count"`
	BookInstanceAvailableCount int `json:"book_instance_available_count"`
	AuthorCount                int `json:"author_count"`
	GenreCount                 int `json:"genre_count"`
}

// DashboardService computes catalog totals.
type DashboardService struct {
	store store.Store
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(s store.Store) *DashboardService {
	return &DashboardService{store: s}
}

// Counts runs the five counts concurrently. Any failure fails the whole
// dashboard; there is no partial result.
func (s *DashboardService) Counts(ctx context.Context) (*Counts, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"book_count": parallel.Typed(func(ctx context.Context) (int, error) {
			return s.store.CountBooks(ctx, store.BookFilter{})
		}),
		"book_instance_count": parallel.Typed(func(ctx context.Context) (int, error) {
			return s.store.CountBookInstances(ctx, store.BookInstanceFilter{})
		}),
		"book_instance_available_count": parallel.Typed(func(ctx context.Context) (int, error) {
			return s.store.CountBookInstances(ctx, store.BookInstanceFilter{Status: domain.StatusAvailable})
		}),
		"author_count": parallel.Typed(s.store.CountAuthors),
		"genre_count":  parallel.Typed(s.store.CountGenres),
	})
	if err != nil {
		return nil, err
	}

	return &Counts{
		BookCount:                  parallel.Value[int](res, "book_count"),
		BookInstanceCount:          parallel.Value[int](res, "book_instance_count"),
		BookInstanceAvailableCount: parallel.Value[int](res, "book_instance_available_count"),
		AuthorCount:                parallel.Value[int](res, "author_count"),
		GenreCount:                 parallel.Value[int](res, "genre_count"),
	}, nil
}
