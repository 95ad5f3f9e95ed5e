package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeIntegrityBlocked, http.StatusConflict},
		{CodeValidation, http.StatusUnprocessableEntity},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load author: %w", NotFoundf("author %s not found", "author-1"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "load author: author author-1 not found", err.Error())
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("txn conflict")
	err := Wrap(cause, CodeConflict, "retry")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "retry: txn conflict", err.Error())
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())

	err = Wrapf(cause, CodeAlreadyExists, "%s %s already exists", "genre", "genre-1")
	assert.Equal(t, "genre genre-1 already exists: txn conflict", err.Error())
}

func TestIntegrityBlocked_CarriesDependents(t *testing.T) {
	dependents := []string{"book-1", "book-2"}
	err := IntegrityBlocked("author has books", dependents)

	assert.ErrorIs(t, err, ErrIntegrityBlocked)
	assert.Equal(t, dependents, err.Details)
}
