package utils

import (
	"fmt"
	"net/http"
	"time"
)

// Error codes surfaced in the response envelope.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is the single error type business code returns to controllers.
// It carries the HTTP status so handlers never have to guess one.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func newAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithContext attaches structured detail to the error response.
func (e *AppError) WithContext(ctx map[string]interface{}) *AppError {
	e.Context = ctx
	return e
}

func ErrUnauthorized(message string) *AppError {
	return newAppError(CodeUnauthorized, message, http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	return newAppError(CodeForbidden, message, http.StatusForbidden)
}

func ErrValidation(message string) *AppError {
	return newAppError(CodeValidation, message, http.StatusBadRequest)
}

func ErrNotFound(entity string, id interface{}) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s %v not found", entity, id), http.StatusNotFound)
}

func ErrConflict(message string) *AppError {
	return newAppError(CodeConflict, message, http.StatusConflict)
}

func ErrInvalidTransition(from, to string) *AppError {
	return newAppError(CodeInvalidTransition,
		fmt.Sprintf("invalid table state transition from %s to %s", from, to),
		http.StatusConflict)
}

func ErrInternal(message string) *AppError {
	return newAppError(CodeInternal, message, http.StatusInternalServerError)
}

// AsAppError normalizes any error into an AppError. Unknown errors become a
// 500 with a generic message so store failures never leak detail to clients.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	if ErrorLogger != nil {
		ErrorLogger.Printf("internal error: %v", err)
	}
	return ErrInternal("internal server error")
}

// errorEnvelope is the wire format for every error response.
type errorEnvelope struct {
	Status    string                 `json:"status"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

func (e *AppError) envelope() errorEnvelope {
	return errorEnvelope{
		Status:    "error",
		Code:      e.Code,
		Message:   e.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Context:   e.Context,
	}
}
