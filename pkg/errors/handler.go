package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// ErrorHandler renders errors as JSON responses and logs them by severity.
// In debug mode internal messages and stack traces are exposed.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. A nil error is a no-op.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, response := h.render(err)
	response.Error = true
	response.RequestID = requestIDFrom(r)
	response.TraceID = r.Header.Get("X-Trace-ID")

	h.log(r, err, status, response)
	h.writeJSON(w, status, response)
}

// HandleStatus sends an error response with a specific status code
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := ErrorResponse{
		Error:     true,
		Type:      statusToErrorType(status),
		Message:   message,
		RequestID: requestIDFrom(r),
		TraceID:   r.Header.Get("X-Trace-ID"),
	}

	h.logger.Debug("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)

	h.writeJSON(w, status, response)
}

// render maps err onto a status and response body. Field validation failures
// are checked first, then domain sentinels, then AppErrors.
func (h *ErrorHandler) render(err error) (int, ErrorResponse) {
	var fieldErrs *ValidationErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, ErrorResponse{
			Type:    string(ErrorTypeValidation),
			Message: "Validation failed",
			Code:    "VALIDATION_FAILED",
			Details: map[string]interface{}{"fields": fieldErrs.ToMap()},
		}
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		status := statusOrDefault(domainErr.StatusCode)
		response := ErrorResponse{
			Type:    statusToErrorType(status),
			Message: domainErr.Message,
			Code:    domainErr.Code,
		}
		if len(domainErr.Details) > 0 {
			response.Details = domainErr.Details
		}
		return status, response
	}

	if appErr := GetAppError(err); appErr != nil {
		response := ErrorResponse{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		// Copy so the error's own map is never written to
		if h.debug && appErr.StackTrace != "" {
			details := make(map[string]interface{}, len(appErr.Details)+1)
			for k, v := range appErr.Details {
				details[k] = v
			}
			details["stack_trace"] = appErr.StackTrace
			response.Details = details
		}
		return statusOrDefault(appErr.HTTPStatus), response
	}

	response := ErrorResponse{
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
	if h.debug {
		response.Message = err.Error()
	}
	return http.StatusInternalServerError, response
}

// log writes server faults at error level and caller mistakes at info
func (h *ErrorHandler) log(r *http.Request, err error, status int, response ErrorResponse) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("error_type", response.Type),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", response.RequestID),
	}
	if response.Code != "" {
		fields = append(fields, zap.String("error_code", response.Code))
	}
	if response.TraceID != "" {
		fields = append(fields, zap.String("trace_id", response.TraceID))
	}

	level := zapcore.InfoLevel
	switch {
	case status >= 500:
		level = zapcore.ErrorLevel
	case status == http.StatusUnauthorized, status == http.StatusTooManyRequests:
		level = zapcore.WarnLevel
	}
	h.logger.Log(level, "Request failed", fields...)
}

// Middleware recovers panics and renders them as internal errors
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// requestIDFrom prefers the ID assigned by the router's RequestID middleware
func requestIDFrom(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func statusOrDefault(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge:
		return string(ErrorTypeValidation)
	case http.StatusUnauthorized:
		return string(ErrorTypeUnauthorized)
	case http.StatusForbidden:
		return string(ErrorTypeForbidden)
	case http.StatusNotFound:
		return string(ErrorTypeNotFound)
	case http.StatusConflict:
		return string(ErrorTypeConflict)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return string(ErrorTypeTimeout)
	case http.StatusTooManyRequests:
		return string(ErrorTypeRateLimit)
	case http.StatusServiceUnavailable:
		return string(ErrorTypeUnavailable)
	case http.StatusBadGateway:
		return string(ErrorTypeExternal)
	default:
		return string(ErrorTypeInternal)
	}
}
