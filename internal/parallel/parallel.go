// Package parallel runs independent, labelled queries concurrently and joins
// their results.
//
// Run returns as soon as any query fails. Queries still in flight are not
// canceled: they run to completion and their results are dropped. Callers
// must not assume a side-effecting query was skipped because another one
// already failed.
package parallel

import (
	"context"
	"fmt"
)

// Query is one independent read. It must not depend on any other query of the
// same Run.
type Query func(ctx context.Context) (any, error)

// Queries maps a label to its query.
type Queries map[string]Query

// Results maps a label to the value its query produced.
type Results map[string]any

// QueryError identifies which labelled query failed.
type QueryError struct {
	Label string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Label, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

type outcome struct {
	label string
	value any
	err   error
}

// Run executes every query concurrently. On success it returns exactly one
// result per label. On failure it returns the first error observed, wrapped in
// a *QueryError; the remaining queries keep running in the background.
func Run(ctx context.Context, queries Queries) (Results, error) {
	results := make(Results, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	// Buffered so finished stragglers never block once Run has returned.
	done := make(chan outcome, len(queries))
	for label, q := range queries {
		go func() {
			done <- execute(ctx, label, q)
		}()
	}

	for range len(queries) {
		o := <-done
		if o.err != nil {
			return nil, &QueryError{Label: o.label, Err: o.err}
		}
		results[o.label] = o.value
	}
	return results, nil
}

func execute(ctx context.Context, label string, q Query) (o outcome) {
	o.label = label
	defer func() {
		if r := recover(); r != nil {
			o.value = nil
			o.err = fmt.Errorf("panic: %v", r)
		}
	}()
	o.value, o.err = q(ctx)
	return o
}

// Value returns the result stored under label as T. A missing label or a
// result of another type yields the zero value of T.
func Value[T any](results Results, label string) T {
	v, _ := results[label].(T)
	return v
}

// Typed adapts a query returning a concrete type to a Query.
func Typed[T any](fn func(ctx context.Context) (T, error)) Query {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}
