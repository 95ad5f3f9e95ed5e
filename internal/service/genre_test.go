package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

func TestGenreService_Create(t *testing.T) {
	s := setupTestStore(t)
	index := &recordingIndexer{}
	svc := NewGenreService(s, index, nil)
	ctx := context.Background()

	f, err := svc.Create(ctx, form(FieldName, "  Science Fiction "))
	require.NoError(t, err)
	require.False(t, f.Failed())
	assert.False(t, f.Existing)
	assert.Equal(t, "Science Fiction", f.Genre.Name)

	stored, err := s.GetGenre(ctx, f.Genre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", stored.Name)
	assert.Equal(t, []string{f.Genre.ID}, index.indexed)
}

func TestGenreService_CreateReturnsExisting(t *testing.T) {
	s := setupTestStore(t)
	svc := NewGenreService(s, nil, nil)
	ctx := context.Background()

	g := mustGenre(t, s, "Fantasy")

	f, err := svc.Create(ctx, form(FieldName, "fantasy"))
	require.NoError(t, err)
	require.False(t, f.Failed())
	assert.True(t, f.Existing)
	assert.Equal(t, g.ID, f.Genre.ID)

	n, err := s.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no duplicate is written")
}

func TestGenreService_CreateInvalid(t *testing.T) {
	svc := NewGenreService(setupTestStore(t), nil, nil)
	ctx := context.Background()

	f, err := svc.Create(ctx, form(FieldName, "   "))
	require.NoError(t, err)
	assert.Equal(t, []string{"Genre name required"}, f.Errors.Messages())

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	f, err = svc.Create(ctx, form(FieldName, string(long)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Genre name must be at most 100 characters."}, f.Errors.For(FieldName))
}

func TestGenreService_UpdateNameClash(t *testing.T) {
	s := setupTestStore(t)
	svc := NewGenreService(s, nil, nil)
	ctx := context.Background()

	mustGenre(t, s, "Horror")
	g := mustGenre(t, s, "Romance")

	f, err := svc.Update(ctx, g.ID, form(FieldName, "HORROR"))
	require.NoError(t, err)
	require.True(t, f.Failed())
	assert.Equal(t, []string{"Genre name already exists."}, f.Errors.For(FieldName))

	stored, err := s.GetGenre(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Romance", stored.Name)

	f, err = svc.Update(ctx, g.ID, form(FieldName, "Romantic Comedy"))
	require.NoError(t, err)
	require.False(t, f.Failed())

	_, err = svc.Update(ctx, "genre-missing", form(FieldName, "Anything"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.Update(ctx, "genre-missing", form(FieldName, ""))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound, "a missing genre wins over an invalid form")
}

func TestGenreService_Detail(t *testing.T) {
	s := setupTestStore(t)
	svc := NewGenreService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	g := mustGenre(t, s, "Poetry")
	mustBook(t, s, "Odes", a.ID, g.ID)
	mustBook(t, s, "Prose", a.ID)

	detail, err := svc.Detail(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, detail.Books, 1)
	assert.Equal(t, "Odes", detail.Books[0].Title)

	empty := mustGenre(t, s, "Empty")
	detail, err = svc.Detail(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.Books)
	assert.Empty(t, detail.Books)

	_, err = svc.Detail(ctx, "genre-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGenreService_DeleteBlocked(t *testing.T) {
	s := setupTestStore(t)
	svc := NewGenreService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	g := mustGenre(t, s, "Poetry")
	b := mustBook(t, s, "Odes", a.ID, g.ID)

	dv, err := svc.DeleteView(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, dv.Allowed)
	assert.Equal(t, []domain.Ref{b.Ref()}, dv.Dependents)

	assert.ErrorIs(t, svc.Delete(ctx, g.ID), domainerrors.ErrIntegrityBlocked)

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	require.NoError(t, svc.Delete(ctx, g.ID))

	_, err = s.GetGenre(ctx, g.ID)
	assert.Error(t, err)
}
