package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadger_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.New(filepath.Join(t.TempDir(), "catalog.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBadger_InMemory(t *testing.T) {
	s, err := store.New("", nil)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	a := storetest.NewAuthor("Mem", "Ory")
	require.NoError(t, s.CreateAuthor(ctx, a))

	n, err := s.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBadger_PingAfterClose(t *testing.T) {
	s, err := store.New("", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Ping(context.Background()))
}
