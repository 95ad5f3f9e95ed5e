package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v any) Query {
	return func(context.Context) (any, error) { return v, nil }
}

func TestRun_JoinsAllResults(t *testing.T) {
	results, err := Run(context.Background(), Queries{
		"book_count":                    constant(3),
		"book_instance_count":           constant(0),
		"book_instance_available_count": constant(0),
		"author_count":                  constant(2),
		"genre_count":                   constant(0),
	})

	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, 3, Value[int](results, "book_count"))
	assert.Equal(t, 2, Value[int](results, "author_count"))
	assert.Equal(t, 0, Value[int](results, "genre_count"))
}

func TestRun_Empty(t *testing.T) {
	results, err := Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_RunsConcurrently(t *testing.T) {
	// Each query waits for all others to start; a sequential runner would deadlock.
	const n = 4
	var started atomic.Int32
	barrier := make(chan struct{})

	queries := Queries{}
	for _, label := range []string{"a", "b", "c", "d"} {
		queries[label] = func(context.Context) (any, error) {
			if started.Add(1) == n {
				close(barrier)
			}
			select {
			case <-barrier:
				return label, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("timed out waiting for siblings")
			}
		}
	}

	results, err := Run(context.Background(), queries)
	require.NoError(t, err)
	assert.Equal(t, "c", Value[string](results, "c"))
}

func TestRun_FirstErrorReturnedWithoutWaitingForStragglers(t *testing.T) {
	boom := errors.New("store unavailable")
	release := make(chan struct{})
	var stragglerFinished atomic.Bool
	finished := make(chan struct{})

	start := time.Now()
	results, err := Run(context.Background(), Queries{
		"fails": func(context.Context) (any, error) { return nil, boom },
		"slow": func(context.Context) (any, error) {
			<-release
			stragglerFinished.Store(true)
			close(finished)
			return "late", nil
		},
	})

	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, time.Since(start), time.Second)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "fails", qe.Label)

	// The straggler was not canceled and still runs to completion.
	assert.False(t, stragglerFinished.Load())
	close(release)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("straggler did not complete")
	}
	assert.True(t, stragglerFinished.Load())
}

func TestRun_PanicBecomesError(t *testing.T) {
	_, err := Run(context.Background(), Queries{
		"ok":    constant(1),
		"panic": func(context.Context) (any, error) { panic("bad query") },
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
	assert.Contains(t, err.Error(), `"panic"`)
}

func TestValue_WrongType(t *testing.T) {
	results := Results{"n": 5}
	assert.Equal(t, "", Value[string](results, "n"))
	assert.Equal(t, 0, Value[int](results, "missing"))
}

func TestTyped(t *testing.T) {
	q := Typed(func(context.Context) ([]string, error) { return []string{"x"}, nil })
	results, err := Run(context.Background(), Queries{"list": q})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, Value[[]string](results, "list"))
}
