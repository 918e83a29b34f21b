package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "county not found")

	assert.Equal(t, "county not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapExposesCause(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrInternal.Code, ErrInternal.Status, "load settings")

	assert.Equal(t, "load settings: sql: no rows in result set", err.Error())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, fmt.Errorf("feed: %w", err), ErrInternal)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrTokenInvalid, "invalid premium link")
	assert.Same(t, typed, FromError(fmt.Errorf("premium: %w", typed)))

	plain := FromError(errors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, "internal server error: boom", plain.Error())
}

func TestNilErrorIsSafe(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.NoError(t, e.Unwrap())
}
