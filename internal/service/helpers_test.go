package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

var errBoom = errors.New("boom")

// setupTestStore creates an in-memory Badger store closed with the test.
func setupTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := store.New("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func form(pairs ...string) validation.Input {
	in := validation.Input{}
	for i := 0; i+1 < len(pairs); i += 2 {
		in[pairs[i]] = append(in[pairs[i]], pairs[i+1])
	}
	return in
}

func mustAuthor(t *testing.T, s store.Store, first, family string) *domain.Author {
	t.Helper()
	a := &domain.Author{Base: domain.Base{ID: "author-" + first + family}, FirstName: first, FamilyName: family}
	a.InitTimestamps()
	require.NoError(t, s.CreateAuthor(context.Background(), a))
	return a
}

func mustGenre(t *testing.T, s store.Store, name string) *domain.Genre {
	t.Helper()
	g := &domain.Genre{Base: domain.Base{ID: "genre-" + name}, Name: name}
	g.InitTimestamps()
	require.NoError(t, s.CreateGenre(context.Background(), g))
	return g
}

func mustBook(t *testing.T, s store.Store, title, authorID string, genreIDs ...string) *domain.Book {
	t.Helper()
	if genreIDs == nil {
		genreIDs = []string{}
	}
	b := &domain.Book{
		Base:     domain.Base{ID: "book-" + title},
		Title:    title,
		Summary:  "About " + title,
		ISBN:     "978-" + title,
		AuthorID: authorID,
		GenreIDs: genreIDs,
	}
	b.InitTimestamps()
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

func mustInstance(t *testing.T, s store.Store, idSuffix, bookID string, status domain.Status) *domain.BookInstance {
	t.Helper()
	bi := &domain.BookInstance{
		Base:    domain.Base{ID: "copy-" + idSuffix},
		BookID:  bookID,
		Imprint: "Imprint " + idSuffix,
		Status:  status,
	}
	bi.InitTimestamps()
	require.NoError(t, s.CreateBookInstance(context.Background(), bi))
	return bi
}

// failingCounts fails one count query.
type failingCounts struct {
	store.Store
}

func (failingCounts) CountGenres(context.Context) (int, error) {
	return 0, errBoom
}

// failingLists fails the list reads used by forms and list views.
type failingLists struct {
	store.Store
}

func (failingLists) ListGenres(context.Context) ([]*domain.Genre, error) {
	return nil, errBoom
}

// staleFindBooks hides books from the first FindBooks call, as if the guard
// ran before a concurrent writer added a dependent.
type staleFindBooks struct {
	store.Store
	calls atomic.Int32
}

func (s *staleFindBooks) FindBooks(ctx context.Context, f store.BookFilter) ([]*domain.Book, error) {
	if s.calls.Add(1) == 1 {
		return []*domain.Book{}, nil
	}
	return s.Store.FindBooks(ctx, f)
}

// recordingIndexer remembers which IDs were indexed or removed.
type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
	err     error
}

func (r *recordingIndexer) record(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, id)
	return r.err
}

func (r *recordingIndexer) IndexAuthor(_ context.Context, a *domain.Author) error { return r.record(a.ID) }
func (r *recordingIndexer) IndexBook(_ context.Context, b *domain.Book) error     { return r.record(b.ID) }
func (r *recordingIndexer) IndexGenre(_ context.Context, g *domain.Genre) error   { return r.record(g.ID) }

func (r *recordingIndexer) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, id)
	return r.err
}
