package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/store/storetest"
)

// setupTestDB opens the database named by CATALOG_TEST_DATABASE_URL with
// every catalog table emptied.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("CATALOG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping test: CATALOG_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn, nil)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	_, err = s.db.Exec(ctx, `TRUNCATE book_instances, book_genres, books, genres, authors`)
	require.NoError(t, err)
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return setupTestDB(t)
	})
}

func TestCreateBook_DuplicateGenresCollapse(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := storetest.NewAuthor("A", "B")
	g1, g2 := storetest.NewGenre("One"), storetest.NewGenre("Two")
	require.NoError(t, s.CreateAuthor(ctx, a))
	require.NoError(t, s.CreateGenre(ctx, g1))
	require.NoError(t, s.CreateGenre(ctx, g2))

	b := storetest.NewBook("Dupes", a.ID, g2.ID, g1.ID, g2.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, []string{g2.ID, g1.ID}, got.GenreIDs)
}
