package apperror

import "net/http"

// Generic failures shared by every module. Module errors live next to
// the module, e.g. internal/schedule/errors.
var (
	ErrInvalidInput = New(CodeInvalidInput, "The provided input is invalid", http.StatusBadRequest)
	ErrForbidden    = New(CodeForbidden, "You do not have permission to access this resource", http.StatusForbidden)
	ErrInternal     = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
)

func RequiredField(field string) *AppError {
	return New(CodeInvalidInput, field+" is required", http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, field+" is invalid", http.StatusBadRequest)
}

// Errors raised by middleware before a handler runs.
var (
	ErrUnauthorized      = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)
	ErrInvalidToken      = New(CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired      = New(CodeUnauthorized, "Token has expired", http.StatusUnauthorized)
	ErrRateLimited       = New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
	ErrRequestInProgress = New(CodeConflict, "This request is already being processed", http.StatusConflict)
)
