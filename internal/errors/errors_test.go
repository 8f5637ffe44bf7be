package errors

import (
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
		{CodeAlreadyExists, http.StatusForbidden},
		{CodeConflict, http.StatusForbidden},
		{CodeUnauthorized, http.StatusForbidden},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusRequestEntityTooLarge},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
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
	err := NotFound("Bookmark does not exist.")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))

	wrapped := fmt.Errorf("delete bookmark: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_WithCause(t *testing.T) {
	cause := New("disk on fire")
	err := Internal("failed to save").WithCause(cause)

	assert.Equal(t, "failed to save: disk on fire", err.Error())
	assert.True(t, Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.GetStatus())
}

func TestError_WithDetailsKeepsCode(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"username": "is required"})

	detailed := err.WithDetails(map[string]string{"password": "is required"})

	assert.Equal(t, CodeValidation, detailed.Code)
	assert.Equal(t, map[string]string{"password": "is required"}, detailed.Details)
	assert.Equal(t, http.StatusRequestEntityTooLarge, detailed.GetStatus())
}

func TestConstructors_MessageIsLiteral(t *testing.T) {
	msg := "Tag 100%s cannot be empty or more than 20 characters."

	for _, err := range []*Error{
		NotFound(msg),
		AlreadyExists(msg),
		Conflict(msg),
		Forbidden(msg),
		Validation(msg),
		BadRequest(msg),
		InvalidCredentials(msg),
		Internal(msg),
	} {
		assert.Equal(t, msg, err.Message, "code %s", err.Code)
	}

	assert.Equal(t, "No user with username, 100%, exists.",
		NotFoundf("No user with username, %s, exists.", "100%").Message)

	wrapped := Wrap(New("disk full"), CodeInternal, "internal error")
	assert.Equal(t, "internal error: disk full", wrapped.Error())
}
