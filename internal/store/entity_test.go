package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestEntity struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Tags     []string `json:"tags"`
	ParentID string   `json:"parent_id"`
}

func setupTestStore(t *testing.T) (*store.Badger, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "entity-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestEntity_Create_Success(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	testData := &TestEntity{ID: "1", Name: "John Doe", Email: "john@example.com"}

	err := entity.Create(context.Background(), "1", testData)
	require.NoError(t, err)

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, testData.ID, retrieved.ID)
	require.Equal(t, testData.Name, retrieved.Name)
	require.Equal(t, testData.Email, retrieved.Email)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1"}))
	err := entity.Create(ctx, "1", &TestEntity{ID: "1"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	_, err := entity.Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	err := entity.Update(context.Background(), "missing", &TestEntity{ID: "missing"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Delete(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("email", func(e *TestEntity) []string { return []string{e.Email} })
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@example.com"}))
	require.NoError(t, entity.Delete(ctx, "1"))

	_, err := entity.Get(ctx, "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Index entry is gone too, so the value can be reused.
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "a@example.com"}))

	require.ErrorIs(t, entity.Delete(ctx, "1"), store.ErrNotFound)
}

func TestEntity_Delete_GuardRefuses(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")
	ctx := context.Background()
	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1"}))

	refuse := func(*badger.Txn) error { return store.ErrHasDependents }
	require.ErrorIs(t, entity.Delete(ctx, "1", refuse), store.ErrHasDependents)

	_, err := entity.Get(ctx, "1")
	require.NoError(t, err)
}

func TestEntity_ContextCancellation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, entity.Create(ctx, "1", &TestEntity{ID: "1"}), context.Canceled)
	_, err := entity.Get(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, entity.Update(ctx, "1", &TestEntity{ID: "1"}), context.Canceled)
	require.ErrorIs(t, entity.Delete(ctx, "1"), context.Canceled)
	_, err = entity.Count(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEntity_ContextTimeout(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := entity.Get(ctx, "1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEntity_IndexTransform(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndexTransform("email",
			func(e *TestEntity) []string { return []string{strings.ToLower(e.Email)} },
			strings.ToLower)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "John@Example.com"}))

	got, err := entity.GetByIndex(ctx, "email", "JOHN@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = entity.GetByIndex(ctx, "email", "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "john@example.com"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Update_ReindexesUnique(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("email", func(e *TestEntity) []string { return []string{e.Email} })
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "old@example.com"}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "taken@example.com"}))

	// Keeping its own value is not a conflict.
	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Name: "renamed", Email: "old@example.com"}))

	err := entity.Update(ctx, "1", &TestEntity{ID: "1", Email: "taken@example.com"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Email: "new@example.com"}))
	_, err = entity.GetByIndex(ctx, "email", "old@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	got, err := entity.GetByIndex(ctx, "email", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
}

func TestEntity_GroupIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithGroupIndex("tag", func(e *TestEntity) []string { return e.Tags })
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Tags: []string{"red", "blue"}}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Tags: []string{"blue"}}))
	require.NoError(t, entity.Create(ctx, "3", &TestEntity{ID: "3"}))

	n, err := entity.CountGroup(ctx, "tag", "blue")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []string
	for e, err := range entity.ListByGroup(ctx, "tag", "red") {
		require.NoError(t, err)
		got = append(got, e.ID)
	}
	assert.Equal(t, []string{"1"}, got)

	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Tags: []string{"green"}}))
	n, err = entity.CountGroup(ctx, "tag", "blue")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Group keys are not counted as entities.
	total, err := entity.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestEntity_Reference(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	parents := store.NewEntity[TestEntity](s, "parent:")
	children := store.NewEntity[TestEntity](s, "child:").
		WithReference("parent", "parent:", func(e *TestEntity) []string {
			if e.ParentID == "" {
				return nil
			}
			return []string{e.ParentID}
		})
	ctx := context.Background()

	err := children.Create(ctx, "c1", &TestEntity{ID: "c1", ParentID: "p1"})
	require.ErrorIs(t, err, store.ErrInvalidReference)

	require.NoError(t, parents.Create(ctx, "p1", &TestEntity{ID: "p1", Name: "parent"}))
	require.NoError(t, children.Create(ctx, "c1", &TestEntity{ID: "c1", ParentID: "p1"}))

	// Touching the parent leaves its value unchanged.
	p, err := parents.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "parent", p.Name)

	err = children.Update(ctx, "c1", &TestEntity{ID: "c1", ParentID: "p2"})
	require.ErrorIs(t, err, store.ErrInvalidReference)
}

func TestEntity_List(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("email", func(e *TestEntity) []string { return []string{e.Email} })
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Email: id + "@example.com"}))
	}

	var ids []string
	for e, err := range entity.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestEntity_List_EarlyTermination(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id}))
	}

	count := 0
	for _, err := range entity.List(ctx) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
