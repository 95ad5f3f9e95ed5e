// Package storetest is a conformance suite run against every store.Store
// implementation.
package storetest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. It should register its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"AuthorCRUD", testAuthorCRUD},
		{"GenreCRUD", testGenreCRUD},
		{"GenreNameUnique", testGenreNameUnique},
		{"GetGenres", testGetGenres},
		{"BookCRUD", testBookCRUD},
		{"BookReferencesMustExist", testBookReferencesMustExist},
		{"FindBooks", testFindBooks},
		{"BookInstanceCRUD", testBookInstanceCRUD},
		{"FindBookInstances", testFindBookInstances},
		{"DeleteAuthorWithBooks", testDeleteAuthorWithBooks},
		{"DeleteBookWithInstances", testDeleteBookWithInstances},
		{"DeleteGenreWithBooks", testDeleteGenreWithBooks},
		{"MissingTargets", testMissingTargets},
		{"ConcurrentDeleteAndReference", testConcurrentDeleteAndReference},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var seq atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, seq.Add(1))
}

func stamp(b *domain.Base, prefix string) {
	b.ID = nextID(prefix)
	b.InitTimestamps()
}

// NewAuthor returns an unsaved author with a fresh ID.
func NewAuthor(first, family string) *domain.Author {
	a := &domain.Author{FirstName: first, FamilyName: family}
	stamp(&a.Base, "author")
	return a
}

// NewGenre returns an unsaved genre with a fresh ID.
func NewGenre(name string) *domain.Genre {
	g := &domain.Genre{Name: name}
	stamp(&g.Base, "genre")
	return g
}

// NewBook returns an unsaved book with a fresh ID.
func NewBook(title, authorID string, genreIDs ...string) *domain.Book {
	b := &domain.Book{Title: title, Summary: "summary of " + title, ISBN: "978" + title, AuthorID: authorID, GenreIDs: genreIDs}
	if b.GenreIDs == nil {
		b.GenreIDs = []string{}
	}
	stamp(&b.Base, "book")
	return b
}

// NewInstance returns an unsaved copy with a fresh ID.
func NewInstance(bookID string, status domain.Status) *domain.BookInstance {
	bi := &domain.BookInstance{BookID: bookID, Imprint: "Imprint for " + bookID, Status: status}
	stamp(&bi.Base, "copy")
	return bi
}

func ids[T interface{ *domain.Author | *domain.Book | *domain.Genre | *domain.BookInstance }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := any(it).(type) {
		case *domain.Author:
			out = append(out, v.ID)
		case *domain.Book:
			out = append(out, v.ID)
		case *domain.Genre:
			out = append(out, v.ID)
		case *domain.BookInstance:
			out = append(out, v.ID)
		}
	}
	slices.Sort(out)
	return out
}

func sorted(s ...string) []string {
	slices.Sort(s)
	return s
}

func testAuthorCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	born := time.Date(1920, time.January, 2, 0, 0, 0, 0, time.UTC)
	a := NewAuthor("Isaac", "Asimov")
	a.DateOfBirth = &born
	require.NoError(t, s.CreateAuthor(ctx, a))

	got, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Isaac", got.FirstName)
	assert.Equal(t, "Asimov", got.FamilyName)
	require.NotNil(t, got.DateOfBirth)
	assert.True(t, born.Equal(*got.DateOfBirth))
	assert.Nil(t, got.DateOfDeath)
	assert.WithinDuration(t, a.CreatedAt, got.CreatedAt, time.Millisecond)

	err = s.CreateAuthor(ctx, a)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	died := time.Date(1992, time.April, 6, 0, 0, 0, 0, time.UTC)
	got.DateOfDeath = &died
	got.FirstName = "Isaak"
	require.NoError(t, s.UpdateAuthor(ctx, got))

	got, err = s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Isaak", got.FirstName)
	require.NotNil(t, got.DateOfDeath)
	assert.True(t, died.Equal(*got.DateOfDeath))

	b := NewAuthor("Ben", "Bova")
	require.NoError(t, s.CreateAuthor(ctx, b))

	all, err := s.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, sorted(a.ID, b.ID), ids(all))

	n, err := s.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteAuthor(ctx, b.ID))
	_, err = s.GetAuthor(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err = s.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testGenreCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	g := NewGenre("Fantasy")
	require.NoError(t, s.CreateGenre(ctx, g))

	got, err := s.GetGenre(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", got.Name)

	got.Name = "High Fantasy"
	require.NoError(t, s.UpdateGenre(ctx, got))

	byName, err := s.GetGenreByName(ctx, "High Fantasy")
	require.NoError(t, err)
	assert.Equal(t, g.ID, byName.ID)

	_, err = s.GetGenreByName(ctx, "Fantasy")
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, ids(all))

	require.NoError(t, s.DeleteGenre(ctx, g.ID))
	n, err = s.CountGenres(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testGenreNameUnique(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateGenre(ctx, NewGenre("Poetry")))

	err := s.CreateGenre(ctx, NewGenre("poetry"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.GetGenreByName(ctx, "POETRY")
	require.NoError(t, err)
	assert.Equal(t, "Poetry", got.Name)

	other := NewGenre("Horror")
	require.NoError(t, s.CreateGenre(ctx, other))
	other.Name = "Poetry"
	assert.ErrorIs(t, s.UpdateGenre(ctx, other), store.ErrAlreadyExists)
}

func testGetGenres(t *testing.T, s store.Store) {
	ctx := context.Background()

	g1, g2 := NewGenre("A"), NewGenre("B")
	require.NoError(t, s.CreateGenre(ctx, g1))
	require.NoError(t, s.CreateGenre(ctx, g2))

	got, err := s.GetGenres(ctx, []string{g2.ID, "genre-missing", g1.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, g2.ID, got[0].ID)
	assert.Equal(t, g1.ID, got[1].ID)

	got, err = s.GetGenres(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testBookCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Patrick", "Rothfuss")
	require.NoError(t, s.CreateAuthor(ctx, a))
	g1, g2 := NewGenre("Fantasy"), NewGenre("Adventure")
	require.NoError(t, s.CreateGenre(ctx, g1))
	require.NoError(t, s.CreateGenre(ctx, g2))

	b := NewBook("The Name of the Wind", a.ID, g1.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Name of the Wind", got.Title)
	assert.Equal(t, a.ID, got.AuthorID)
	assert.Equal(t, []string{g1.ID}, got.GenreIDs)
	assert.Equal(t, b.Summary, got.Summary)
	assert.Equal(t, b.ISBN, got.ISBN)

	got.GenreIDs = []string{g2.ID, g1.ID}
	got.Title = "The Name of the Wind (10th Anniversary)"
	require.NoError(t, s.UpdateBook(ctx, got))

	got, err = s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{g1.ID, g2.ID}, got.GenreIDs)
	assert.Equal(t, "The Name of the Wind (10th Anniversary)", got.Title)

	got.GenreIDs = []string{}
	require.NoError(t, s.UpdateBook(ctx, got))
	got, err = s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.GenreIDs)

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	_, err = s.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testBookReferencesMustExist(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.CreateBook(ctx, NewBook("Orphan", "author-missing"))
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	a := NewAuthor("Jane", "Doe")
	require.NoError(t, s.CreateAuthor(ctx, a))

	err = s.CreateBook(ctx, NewBook("Lost Genre", a.ID, "genre-missing"))
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	n, err := s.CountBooks(ctx, store.BookFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	err = s.CreateBookInstance(ctx, NewInstance("book-missing", domain.StatusAvailable))
	assert.ErrorIs(t, err, store.ErrInvalidReference)
}

func testFindBooks(t *testing.T, s store.Store) {
	ctx := context.Background()

	a1, a2 := NewAuthor("A", "One"), NewAuthor("B", "Two")
	require.NoError(t, s.CreateAuthor(ctx, a1))
	require.NoError(t, s.CreateAuthor(ctx, a2))
	g1, g2 := NewGenre("G1"), NewGenre("G2")
	require.NoError(t, s.CreateGenre(ctx, g1))
	require.NoError(t, s.CreateGenre(ctx, g2))

	b1 := NewBook("b1", a1.ID, g1.ID)
	b2 := NewBook("b2", a1.ID, g1.ID, g2.ID)
	b3 := NewBook("b3", a2.ID, g2.ID)
	b4 := NewBook("b4", a2.ID)
	for _, b := range []*domain.Book{b1, b2, b3, b4} {
		require.NoError(t, s.CreateBook(ctx, b))
	}

	tests := []struct {
		name   string
		filter store.BookFilter
		want   []string
	}{
		{"all", store.BookFilter{}, sorted(b1.ID, b2.ID, b3.ID, b4.ID)},
		{"by author", store.BookFilter{AuthorID: a1.ID}, sorted(b1.ID, b2.ID)},
		{"by genre", store.BookFilter{GenreID: g2.ID}, sorted(b2.ID, b3.ID)},
		{"by author and genre", store.BookFilter{AuthorID: a1.ID, GenreID: g2.ID}, []string{b2.ID}},
		{"no match", store.BookFilter{AuthorID: "author-none"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := s.FindBooks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(books))

			n, err := s.CountBooks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}

	// Moving a book to another author updates the author lookup.
	b1.AuthorID = a2.ID
	require.NoError(t, s.UpdateBook(ctx, b1))
	books, err := s.FindBooks(ctx, store.BookFilter{AuthorID: a2.ID})
	require.NoError(t, err)
	assert.Equal(t, sorted(b1.ID, b3.ID, b4.ID), ids(books))
}

func testBookInstanceCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("A", "B")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b := NewBook("Book", a.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	due := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	bi := NewInstance(b.ID, domain.StatusLoaned)
	bi.DueBack = &due
	require.NoError(t, s.CreateBookInstance(ctx, bi))

	got, err := s.GetBookInstance(ctx, bi.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.BookID)
	assert.Equal(t, domain.StatusLoaned, got.Status)
	require.NotNil(t, got.DueBack)
	assert.True(t, due.Equal(*got.DueBack))

	got.Status = domain.StatusAvailable
	got.DueBack = nil
	require.NoError(t, s.UpdateBookInstance(ctx, got))

	got, err = s.GetBookInstance(ctx, bi.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, got.Status)
	assert.Nil(t, got.DueBack)

	require.NoError(t, s.DeleteBookInstance(ctx, bi.ID))
	_, err = s.GetBookInstance(ctx, bi.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testFindBookInstances(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("A", "B")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b1, b2 := NewBook("one", a.ID), NewBook("two", a.ID)
	require.NoError(t, s.CreateBook(ctx, b1))
	require.NoError(t, s.CreateBook(ctx, b2))

	i1 := NewInstance(b1.ID, domain.StatusAvailable)
	i2 := NewInstance(b1.ID, domain.StatusLoaned)
	i3 := NewInstance(b2.ID, domain.StatusAvailable)
	for _, bi := range []*domain.BookInstance{i1, i2, i3} {
		require.NoError(t, s.CreateBookInstance(ctx, bi))
	}

	tests := []struct {
		name   string
		filter store.BookInstanceFilter
		want   []string
	}{
		{"all", store.BookInstanceFilter{}, sorted(i1.ID, i2.ID, i3.ID)},
		{"by book", store.BookInstanceFilter{BookID: b1.ID}, sorted(i1.ID, i2.ID)},
		{"available", store.BookInstanceFilter{Status: domain.StatusAvailable}, sorted(i1.ID, i3.ID)},
		{"book and status", store.BookInstanceFilter{BookID: b1.ID, Status: domain.StatusLoaned}, []string{i2.ID}},
		{"reserved", store.BookInstanceFilter{Status: domain.StatusReserved}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.FindBookInstances(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(found))

			n, err := s.CountBookInstances(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}

	// Status changes move the copy between status lookups.
	i2.Status = domain.StatusAvailable
	require.NoError(t, s.UpdateBookInstance(ctx, i2))
	n, err := s.CountBookInstances(ctx, store.BookInstanceFilter{Status: domain.StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testDeleteAuthorWithBooks(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("A", "B")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b := NewBook("Book", a.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	err := s.DeleteAuthor(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrHasDependents)

	_, err = s.GetAuthor(ctx, a.ID)
	require.NoError(t, err, "refused delete must leave the author in place")

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	require.NoError(t, s.DeleteAuthor(ctx, a.ID))
}

func testDeleteBookWithInstances(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("A", "B")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b := NewBook("Book", a.ID)
	require.NoError(t, s.CreateBook(ctx, b))
	bi := NewInstance(b.ID, domain.StatusMaintenance)
	require.NoError(t, s.CreateBookInstance(ctx, bi))

	assert.ErrorIs(t, s.DeleteBook(ctx, b.ID), store.ErrHasDependents)

	_, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteBookInstance(ctx, bi.ID))
	require.NoError(t, s.DeleteBook(ctx, b.ID))
}

func testDeleteGenreWithBooks(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("A", "B")
	require.NoError(t, s.CreateAuthor(ctx, a))
	g := NewGenre("Fantasy")
	require.NoError(t, s.CreateGenre(ctx, g))
	b := NewBook("Book", a.ID, g.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	assert.ErrorIs(t, s.DeleteGenre(ctx, g.ID), store.ErrHasDependents)

	b.GenreIDs = []string{}
	require.NoError(t, s.UpdateBook(ctx, b))
	require.NoError(t, s.DeleteGenre(ctx, g.ID))
}

func testMissingTargets(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetAuthor(ctx, "author-nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetBook(ctx, "book-nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetGenre(ctx, "genre-nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetBookInstance(ctx, "copy-nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.UpdateAuthor(ctx, NewAuthor("X", "Y")), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateGenre(ctx, NewGenre("X")), store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteAuthor(ctx, "author-nope"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBook(ctx, "book-nope"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteGenre(ctx, "genre-nope"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBookInstance(ctx, "copy-nope"), store.ErrNotFound)

	authors, err := s.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)
}

// testConcurrentDeleteAndReference races an author delete against creating a
// book for that author. Whatever the interleaving, the store must never end
// up with a book whose author is gone.
func testConcurrentDeleteAndReference(t *testing.T, s store.Store) {
	ctx := context.Background()

	for range 10 {
		a := NewAuthor("Race", "Condition")
		require.NoError(t, s.CreateAuthor(ctx, a))
		b := NewBook("Contested", a.ID)

		var wg sync.WaitGroup
		var deleteErr, createErr error
		wg.Go(func() { deleteErr = s.DeleteAuthor(ctx, a.ID) })
		wg.Go(func() { createErr = s.CreateBook(ctx, b) })
		wg.Wait()

		_, authorErr := s.GetAuthor(ctx, a.ID)
		_, bookErr := s.GetBook(ctx, b.ID)
		authorGone := authorErr != nil
		bookExists := bookErr == nil
		assert.False(t, authorGone && bookExists,
			"dangling book: delete=%v create=%v", deleteErr, createErr)

		if bookExists {
			require.NoError(t, s.DeleteBook(ctx, b.ID))
		}
		if !authorGone {
			require.NoError(t, s.DeleteAuthor(ctx, a.ID))
		}
	}
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
