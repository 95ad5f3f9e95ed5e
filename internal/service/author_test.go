package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

func TestAuthorService_Create(t *testing.T) {
	s := setupTestStore(t)
	index := &recordingIndexer{}
	svc := NewAuthorService(s, index, nil)
	ctx := context.Background()

	f, err := svc.Create(ctx, form(
		FieldFirstName, "Isaac",
		FieldFamilyName, "Asimov",
		FieldDateOfBirth, "1920-01-02",
	))
	require.NoError(t, err)
	require.False(t, f.Failed())
	require.NotEmpty(t, f.Author.ID)
	assert.False(t, f.Author.CreatedAt.IsZero())

	stored, err := s.GetAuthor(ctx, f.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asimov, Isaac", stored.Name())
	assert.Equal(t, []string{f.Author.ID}, index.indexed)
}

func TestAuthorService_CreateInvalid(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	f, err := svc.Create(ctx, form(FieldFirstName, "", FieldFamilyName, "Doe"))
	require.NoError(t, err, "validation failures are not errors")
	require.True(t, f.Failed())

	assert.Equal(t, []string{"First name must be specified."}, f.Errors.For(FieldFirstName))
	assert.Equal(t, "Doe", f.Values[FieldFamilyName])

	n, err := s.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a failed form must not be persisted")
}

func TestAuthorService_IndexFailureDoesNotFailCreate(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, &recordingIndexer{err: errBoom}, nil)

	f, err := svc.Create(context.Background(), form(FieldFirstName, "A", FieldFamilyName, "B"))
	require.NoError(t, err)
	assert.False(t, f.Failed())
}

func TestAuthorService_List(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)

	mustAuthor(t, s, "Zed", "zimmer")
	mustAuthor(t, s, "Amy", "Brown")
	mustAuthor(t, s, "Bob", "adams")

	authors, err := svc.List(context.Background())
	require.NoError(t, err)

	var families []string
	for _, a := range authors {
		families = append(families, a.FamilyName)
	}
	assert.Equal(t, []string{"adams", "Brown", "zimmer"}, families)
}

func TestAuthorService_Detail(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	mustBook(t, s, "beta", a.ID)
	mustBook(t, s, "Alpha", a.ID)

	detail, err := svc.Detail(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, detail.Author.ID)
	require.Len(t, detail.Books, 2)
	assert.Equal(t, "Alpha", detail.Books[0].Title)

	_, err = svc.Detail(ctx, "author-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthorService_Update(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")

	f, err := svc.Update(ctx, a.ID, form(FieldFirstName, "Janet", FieldFamilyName, "Doe"))
	require.NoError(t, err)
	require.False(t, f.Failed())

	stored, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", stored.FirstName)
	assert.True(t, a.CreatedAt.Equal(stored.CreatedAt), "created_at is preserved")
	assert.False(t, stored.UpdatedAt.Before(a.UpdatedAt))
}

func TestAuthorService_UpdateInvalidKeepsSubmittedValues(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")

	f, err := svc.Update(ctx, a.ID, form(FieldFirstName, "Ja ne", FieldFamilyName, "Smith"))
	require.NoError(t, err)
	require.True(t, f.Failed())
	assert.Equal(t, "Smith", f.Values[FieldFamilyName])
	assert.Equal(t, a.ID, f.Author.ID)

	stored, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doe", stored.FamilyName)
}

func TestAuthorService_UpdateMissing(t *testing.T) {
	svc := NewAuthorService(setupTestStore(t), nil, nil)

	_, err := svc.Update(context.Background(), "author-missing", form(FieldFirstName, "A", FieldFamilyName, "B"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthorService_UpdateMissingWithInvalidForm(t *testing.T) {
	svc := NewAuthorService(setupTestStore(t), nil, nil)

	f, err := svc.Update(context.Background(), "author-missing", form(FieldFirstName, "", FieldFamilyName, "B"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Nil(t, f)
}

func TestAuthorService_EditForm(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")

	f, err := svc.EditForm(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", f.Values[FieldFirstName])
	assert.Equal(t, "", f.Values[FieldDateOfBirth])
	assert.False(t, f.Failed())

	_, err = svc.EditForm(ctx, "author-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthorService_DeleteBlocked(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)

	dv, err := svc.DeleteView(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, dv.Allowed)
	assert.Equal(t, []domain.Ref{b.Ref()}, dv.Dependents)

	err = svc.Delete(ctx, a.ID)
	require.ErrorIs(t, err, domainerrors.ErrIntegrityBlocked)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []domain.Ref{b.Ref()}, details["dependents"])

	_, err = s.GetAuthor(ctx, a.ID)
	assert.NoError(t, err, "blocked delete leaves the author")
}

func TestAuthorService_Delete(t *testing.T) {
	s := setupTestStore(t)
	index := &recordingIndexer{}
	svc := NewAuthorService(s, index, nil)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")

	dv, err := svc.DeleteView(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, dv.Allowed)
	assert.Empty(t, dv.Dependents)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.Equal(t, []string{a.ID}, index.removed)

	_, err = svc.DeleteView(ctx, a.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, a.ID), domainerrors.ErrNotFound)
}

func TestAuthorService_DeleteLosesRace(t *testing.T) {
	base := setupTestStore(t)
	s := &staleFindBooks{Store: base}
	svc := NewAuthorService(s, nil, nil)
	ctx := context.Background()

	a := mustAuthor(t, base, "Jane", "Doe")
	b := mustBook(t, base, "Novel", a.ID)

	// The guard sees no books, the store still refuses.
	err := svc.Delete(ctx, a.ID)
	require.ErrorIs(t, err, domainerrors.ErrIntegrityBlocked)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details := derr.Details.(map[string]any)
	assert.Equal(t, []domain.Ref{b.Ref()}, details["dependents"])
}
