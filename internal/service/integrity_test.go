package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func TestGuard_Author(t *testing.T) {
	s := setupTestStore(t)
	guard := NewGuard(s)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")

	check, err := guard.CanDelete(ctx, domain.KindAuthor, a.ID)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Empty(t, check.Dependents)

	b := mustBook(t, s, "Novel", a.ID)

	check, err = guard.CanDelete(ctx, domain.KindAuthor, a.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	require.Len(t, check.Dependents, 1)
	assert.Equal(t, b.ID, check.Dependents[0].ID)
	assert.Equal(t, domain.KindBook, check.Dependents[0].Kind)
}

func TestGuard_Book(t *testing.T) {
	s := setupTestStore(t)
	guard := NewGuard(s)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	b := mustBook(t, s, "Novel", a.ID)
	bi := mustInstance(t, s, "1", b.ID, domain.StatusLoaned)

	check, err := guard.CanDelete(ctx, domain.KindBook, b.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, []domain.Ref{bi.Ref()}, check.Dependents)

	_, err = s.GetBook(ctx, b.ID)
	assert.NoError(t, err, "checking must not delete")
}

func TestGuard_Genre(t *testing.T) {
	s := setupTestStore(t)
	guard := NewGuard(s)
	ctx := context.Background()

	a := mustAuthor(t, s, "Jane", "Doe")
	used, unused := mustGenre(t, s, "Used"), mustGenre(t, s, "Unused")
	mustBook(t, s, "Novel", a.ID, used.ID)

	check, err := guard.CanDelete(ctx, domain.KindGenre, used.ID)
	require.NoError(t, err)
	assert.False(t, check.Allowed)

	check, err = guard.CanDelete(ctx, domain.KindGenre, unused.ID)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
}

func TestGuard_BookInstanceAlwaysAllowed(t *testing.T) {
	guard := NewGuard(setupTestStore(t))

	check, err := guard.CanDelete(context.Background(), domain.KindBookInstance, "copy-any")
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Empty(t, check.Dependents)
}

func TestGuard_UnknownKind(t *testing.T) {
	guard := NewGuard(setupTestStore(t))

	_, err := guard.CanDelete(context.Background(), domain.Kind("shelf"), "x")
	assert.Error(t, err)
}
