package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of an infrastructure error
type ErrorType string

const (
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeCache    ErrorType = "CACHE"
	ErrorTypeBroker   ErrorType = "BROKER"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents a failure of a collaborator (store, cache, broker, peer
// service) rather than a rule of the domain.
type AppError struct {
	Type       ErrorType `json:"type"`
	Operation  string    `json:"operation"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Type, e.Operation, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabaseError creates a store error for the named operation.
func NewDatabaseError(operation string, err error, retryable bool) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Operation:  operation,
		Message:    "store operation failed",
		Retryable:  retryable,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewCacheError creates a cache error for the named operation.
func NewCacheError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeCache,
		Operation:  operation,
		Message:    "cache operation failed",
		Retryable:  true,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewBrokerError creates a message broker error.
func NewBrokerError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeBroker,
		Operation:  operation,
		Message:    "broker operation failed",
		Retryable:  true,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Operation:  service,
		Message:    fmt.Sprintf("external service '%s' error", service),
		Retryable:  true,
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetDomainError extracts a DomainError from an error chain, converting a
// ValidationErrors aggregate on the way.
func GetDomainError(err error) *DomainError {
	var verrs *ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.ToDomainError()
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsNotFound reports whether err carries a not-found domain error.
func IsNotFound(err error) bool {
	d := GetDomainError(err)
	return d != nil && d.Type == DomainNotFoundError
}

// IsValidation reports whether err carries validation failures.
func IsValidation(err error) bool {
	var verrs *ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}
	d := GetDomainError(err)
	return d != nil && d.Type == DomainValidationError
}

// IsRetryable reports whether err is marked retryable anywhere in its chain.
func IsRetryable(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Retryable
	}
	if d := GetDomainError(err); d != nil {
		return d.Retryable
	}
	return false
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
