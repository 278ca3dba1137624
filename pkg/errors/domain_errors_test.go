package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesTypeAndCode(t *testing.T) {
	wrapped := fmt.Errorf("delete failed: %w", ErrMemoryNotFound)
	assert.ErrorIs(t, wrapped, ErrMemoryNotFound)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)

	// a fresh error with the same type and code matches the sentinel
	again := NewDomainError(DomainNotFoundError, "MEMORY_NOT_FOUND", "gone")
	assert.ErrorIs(t, again, ErrMemoryNotFound)

	assert.False(t, ErrMemoryNotFound.Is(errors.New("Memory not found")))
}

func TestDomainError_Statuses(t *testing.T) {
	tests := []struct {
		err  *DomainError
		want int
	}{
		{ErrMemoryNotFound, http.StatusNotFound},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrEmailAlreadyRegistered, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrAccountDisabled, http.StatusUnauthorized},
		{NewDomainError(DomainValidationError, "X", "x"), http.StatusBadRequest},
		{NewDomainError("SOMETHING_ELSE", "X", "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())

	v.Add("content", "content is required")
	v.AddError(NewDomainError(DomainValidationError, "TAG_TOO_LONG", "tag too long").WithDetail("field", "tags"))
	v.AddError(NewDomainError(DomainValidationError, "ODD", "something odd"))

	require.True(t, v.HasErrors())
	assert.Equal(t, map[string][]string{
		"content": {"content is required"},
		"tags":    {"tag too long"},
		"general": {"something odd"},
	}, v.ToMap())
	assert.Contains(t, v.Error(), "content is required; tag too long; something odd")

	var target *ValidationErrors
	assert.ErrorAs(t, fmt.Errorf("wrapped: %w", v), &target)
}
