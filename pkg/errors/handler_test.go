package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func handle(t *testing.T, h *ErrorHandler, err error) (int, ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories", nil)
	req.Header.Set("X-Request-ID", "req-1")

	h.Handle(rec, req, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, body
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{"app validation", NewValidationError("content is required"), http.StatusBadRequest, "VALIDATION", ""},
		{"app conflict", NewConflictError("exists"), http.StatusConflict, "CONFLICT", ""},
		{"app rate limit", NewRateLimitError(100, "1m0s"), http.StatusTooManyRequests, "RATE_LIMIT", ""},
		{"domain not found", ErrMemoryNotFound, http.StatusNotFound, "NOT_FOUND", "MEMORY_NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("command execution failed: %w", ErrEmailAlreadyRegistered), http.StatusConflict, "CONFLICT", "EMAIL_ALREADY_REGISTERED"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", "INVALID_CREDENTIALS"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := handle(t, h, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestErrorHandler_HidesInternalMessageOutsideDebug(t *testing.T) {
	_, body := handle(t, NewErrorHandler(zap.NewNop(), false), errors.New("db password wrong"))
	assert.Equal(t, "An internal error occurred", body.Message)

	_, body = handle(t, NewErrorHandler(zap.NewNop(), true), errors.New("db password wrong"))
	assert.Equal(t, "db password wrong", body.Message)
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	verrs := NewValidationErrors()
	verrs.Add("query", "query is required")
	verrs.Add("limit", "limit must be at most 100")

	status, body := handle(t, NewErrorHandler(zap.NewNop(), false), verrs)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Type)
	fields, ok := body.Details["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "query")
	assert.Contains(t, fields, "limit")
}

func TestErrorHandler_DebugDoesNotMutateError(t *testing.T) {
	appErr := NewValidationError("bad")
	h := NewErrorHandler(zap.NewNop(), true)

	_, body := handle(t, h, appErr)

	assert.Contains(t, body.Details, "stack_trace")
	assert.Nil(t, appErr.Details)
}

func TestErrorHandler_Middleware_RecoversPanic(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	panicky := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
