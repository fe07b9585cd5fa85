package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by code so wrapped copies still compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Conflict
	ErrEmailExists = NewDomainError("EMAIL_EXISTS", "account already exists")

	// Unauthorized
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrInvalidCredentials  = NewDomainError("INVALID_CREDENTIALS", "invalid email or password")
	ErrEmailNotConfirmed   = NewDomainError("EMAIL_NOT_CONFIRMED", "email not confirmed")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid token")
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidTokenScope   = NewDomainError("INVALID_TOKEN_SCOPE", "invalid scope for token")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")

	// Validation
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input data")
	ErrVerification      = NewDomainError("VERIFICATION_FAILED", "verification error")
	ErrInvalidResetToken = NewDomainError("INVALID_RESET_TOKEN", "invalid reset token")

	// Not found
	ErrUserNotFound    = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrContactNotFound = NewDomainError("CONTACT_NOT_FOUND", "contact not found")

	// System
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "an unexpected error occurred")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "VERIFICATION_FAILED", "INVALID_RESET_TOKEN":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "EMAIL_NOT_CONFIRMED",
		"INVALID_TOKEN", "TOKEN_EXPIRED", "INVALID_TOKEN_SCOPE", "INVALID_REFRESH_TOKEN":
		return http.StatusUnauthorized

	// 404 Not Found
	case "USER_NOT_FOUND", "CONTACT_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS":
		return http.StatusConflict

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
