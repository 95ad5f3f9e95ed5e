package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
	}

	assert.Equal(t, "not found", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
		Err:     cause,
	}

	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "underlying error")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := store.ErrConflict.WithCause(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, http.StatusConflict, err.HTTPCode())
	assert.Equal(t, store.ErrConflict.Message, err.Message)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *store.Error
		code int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"has dependents", store.ErrHasDependents, http.StatusConflict},
		{"invalid reference", store.ErrInvalidReference, http.StatusUnprocessableEntity},
		{"conflict", store.ErrConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.HTTPCode())

			wrapped := fmt.Errorf("delete author a-1: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}

	assert.NotErrorIs(t, store.ErrHasDependents, store.ErrAlreadyExists)
}
