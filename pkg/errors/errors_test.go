package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("doctor not found"), http.StatusNotFound},
		{Forbidden("not yours"), http.StatusForbidden},
		{Conflict("slot taken"), http.StatusConflict},
		{Unauthenticated("bad credentials"), http.StatusUnauthorized},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Message)
	}
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("some db failure"))
	assert.Equal(t, ErrInternal, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
}

func TestFromErrorUnwrapsNestedAppError(t *testing.T) {
	inner := Conflict("slot taken")
	wrapped := fmt.Errorf("booking failed: %w", inner)

	appErr := FromError(wrapped)
	assert.Equal(t, ErrConflict, appErr.Code)
	assert.Equal(t, "slot taken", appErr.Message)
}

func TestIsCode(t *testing.T) {
	err := Conflict("slot taken")
	assert.True(t, IsCode(err, ErrConflict))
	assert.False(t, IsCode(err, ErrNotFound))
	assert.False(t, IsCode(errors.New("plain"), ErrConflict))
}
