package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/store"
)

func TestBookInstanceService_CreateDefaultsStatus(t *testing.T) {
	s := setupTestStore(t)
	svc := NewBookInstanceService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)

	f, err := svc.Create(ctx, form(FieldBook, b.ID, FieldImprint, "Penguin, 2001"))
	require.NoError(t, err)
	require.False(t, f.Failed(), "errors: %v", f.Errors)

	stored, err := s.GetBookInstance(ctx, f.Instance.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, stored.Status)
	assert.Nil(t, stored.DueBack)

	kind, ok := id.KindOf(f.Instance.ID)
	assert.True(t, ok)
	assert.Equal(t, domain.KindBookInstance, kind)
}

func TestBookInstanceService_CreateUnknownBook(t *testing.T) {
	s := setupTestStore(t)
	svc := NewBookInstanceService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)

	f, err := svc.Create(ctx, form(FieldBook, "book-ghost", FieldImprint, "Penguin", FieldStatus, "Loaned"))
	require.NoError(t, err)
	require.True(t, f.Failed())
	assert.Equal(t, []string{"Book not found."}, f.Errors.For(FieldBook))
	assert.Equal(t, "book-ghost", f.SelectedBook)
	require.Len(t, f.Books, 1)
	assert.Equal(t, b.ID, f.Books[0].ID)
	assert.Len(t, f.Statuses, 4)
	assert.Equal(t, "Loaned", f.Values[FieldStatus])

	n, err := s.CountBookInstances(ctx, store.BookInstanceFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookInstanceService_List(t *testing.T) {
	s := setupTestStore(t)
	svc := NewBookInstanceService(s, nil, nil)

	a := mustAuthor(t, s, "Jane", "Doe")
	zb := mustBook(t, s, "zeta", a.ID)
	ab := mustBook(t, s, "Alpha", a.ID)
	mustInstance(t, s, "1", zb.ID, domain.StatusAvailable)
	mustInstance(t, s, "2", ab.ID, domain.StatusLoaned)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].BookTitle)
	assert.Equal(t, "zeta", items[1].BookTitle)
}

func TestBookInstanceService_UpdateAndDetail(t *testing.T) {
	s := setupTestStore(t)
	svc := NewBookInstanceService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)
	bi := mustInstance(t, s, "1", b.ID, domain.StatusMaintenance)

	f, err := svc.Update(ctx, bi.ID, form(
		FieldBook, b.ID,
		FieldImprint, "Vintage",
		FieldStatus, "Loaned",
		FieldDueBack, "2026-11-01",
	))
	require.NoError(t, err)
	require.False(t, f.Failed())

	detail, err := svc.Detail(ctx, bi.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLoaned, detail.Instance.Status)
	require.NotNil(t, detail.Instance.DueBack)
	assert.Equal(t, b.ID, detail.Book.ID)

	edit, err := svc.EditForm(ctx, bi.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-01", edit.Values[FieldDueBack])
	assert.Equal(t, b.ID, edit.SelectedBook)

	_, err = svc.Detail(ctx, "copy-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.Update(ctx, "copy-missing", form(FieldBook, b.ID, FieldImprint, ""))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookInstanceService_Delete(t *testing.T) {
	s := setupTestStore(t)
	svc := NewBookInstanceService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)
	bi := mustInstance(t, s, "1", b.ID, domain.StatusAvailable)

	dv, err := svc.DeleteView(ctx, bi.ID)
	require.NoError(t, err)
	assert.True(t, dv.Allowed)
	assert.Empty(t, dv.Dependents)

	require.NoError(t, svc.Delete(ctx, bi.ID))
	assert.ErrorIs(t, svc.Delete(ctx, bi.ID), domainerrors.ErrNotFound)
}
