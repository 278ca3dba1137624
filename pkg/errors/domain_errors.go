package errors

import (
	"fmt"
	"net/http"
)

// DomainErrorType is the category of a business-rule failure
type DomainErrorType string

const (
	DomainValidationError     DomainErrorType = "VALIDATION_ERROR"
	DomainNotFoundError       DomainErrorType = "NOT_FOUND"
	DomainConflictError       DomainErrorType = "CONFLICT"
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"
)

var domainStatus = map[DomainErrorType]int{
	DomainValidationError:     http.StatusBadRequest,
	DomainNotFoundError:       http.StatusNotFound,
	DomainConflictError:       http.StatusConflict,
	DomainAuthenticationError: http.StatusUnauthorized,
}

// DomainError is a coded business-rule failure. Package-level sentinels are
// compared with errors.Is, which matches on Type and Code.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	status, ok := domainStatus[errorType]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: status,
	}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithDetail adds a detail to the error. Never call it on a sentinel.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

var (
	ErrMemoryNotFound = NewDomainError(DomainNotFoundError, "MEMORY_NOT_FOUND", "Memory not found")

	ErrUserNotFound           = NewDomainError(DomainNotFoundError, "USER_NOT_FOUND", "User not found")
	ErrEmailAlreadyRegistered = NewDomainError(DomainConflictError, "EMAIL_ALREADY_REGISTERED", "Email already registered")
	ErrInvalidCredentials     = NewDomainError(DomainAuthenticationError, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrAccountDisabled        = NewDomainError(DomainAuthenticationError, "ACCOUNT_DISABLED", "Account disabled")
)
