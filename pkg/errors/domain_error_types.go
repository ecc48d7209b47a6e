package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainMalformedRequestError indicates a missing body, path or query parameter
	DomainMalformedRequestError DomainErrorType = "MALFORMED_REQUEST"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainAuthorizationError indicates the caller does not own the resource
	DomainAuthorizationError DomainErrorType = "AUTHORIZATION_ERROR"

	// DomainExternalError indicates a downstream service failed to answer
	DomainExternalError DomainErrorType = "EXTERNAL_ERROR"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainRateLimitError indicates rate limit exceeded
	DomainRateLimitError DomainErrorType = "RATE_LIMIT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// New returns a copy of a predefined error so callers can attach a cause or
// details without mutating the shared value.
func (e *DomainError) New() *DomainError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return &DomainError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    details,
		Retryable:  e.Retryable,
		StatusCode: e.StatusCode,
	}
}

// WithCause adds a cause to the error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithRetryable sets whether the error is retryable
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// Is reports whether target is a DomainError with the same type and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError, DomainMalformedRequestError:
		return http.StatusBadRequest
	case DomainNotFoundError:
		return http.StatusNotFound
	case DomainConflictError:
		return http.StatusConflict
	case DomainAuthorizationError:
		return http.StatusForbidden
	case DomainRateLimitError:
		return http.StatusTooManyRequests
	case DomainExternalError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrShopNotFound = NewDomainError(
		DomainNotFoundError,
		"SHOP_NOT_FOUND",
		"The requested shop does not exist",
	)

	ErrReviewNotFound = NewDomainError(
		DomainNotFoundError,
		"REVIEW_NOT_FOUND",
		"The requested review does not exist",
	)

	ErrReplyNotFound = NewDomainError(
		DomainNotFoundError,
		"REPLY_NOT_FOUND",
		"The requested reply does not exist",
	)

	ErrShopAlreadyExists = NewDomainError(
		DomainConflictError,
		"SHOP_ALREADY_EXISTS",
		"A shop with this id already exists",
	)

	ErrReviewAlreadyExists = NewDomainError(
		DomainConflictError,
		"REVIEW_ALREADY_EXISTS",
		"A review with this id already exists",
	)

	ErrReplyAlreadyExists = NewDomainError(
		DomainConflictError,
		"REPLY_ALREADY_EXISTS",
		"The review already has a reply",
	)

	ErrReplyNotOwned = NewDomainError(
		DomainAuthorizationError,
		"REPLY_NOT_OWNED",
		"The reply does not belong to the given review",
	)

	ErrRequestMalformed = NewDomainError(
		DomainMalformedRequestError,
		"REQUEST_MALFORMED",
		"The request is missing a body or a required parameter",
	)

	ErrValidationFailed = NewDomainError(
		DomainValidationError,
		"VALIDATION_FAILED",
		"One or more fields are invalid",
	)

	ErrCatalogUnavailable = NewDomainError(
		DomainExternalError,
		"CATALOG_UNAVAILABLE",
		"The catalog service could not answer the existence check",
	).WithRetryable(true)

	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// Field error codes carried by individual FieldError entries.
const (
	CodeFieldRequired     = "FIELD_REQUIRED"
	CodeFieldInvalid      = "FIELD_INVALID"
	CodeRegionInvalid     = "REGION_INVALID"
	CodeBranchInfoInvalid = "BRANCH_INFO_INVALID"
)

// FieldError is one rejected field: its name, the rejected value and why.
type FieldError struct {
	Field         string      `json:"field"`
	RejectedValue interface{} `json:"rejected_value"`
	Reason        string      `json:"reason"`
	Code          string      `json:"code"`
}

// ValidationErrors aggregates every field violation found in a request.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]FieldError, 0),
	}
}

// Add records a generic field violation.
func (v *ValidationErrors) Add(field string, rejected interface{}, reason string) {
	v.AddCode(CodeFieldInvalid, field, rejected, reason)
}

// AddCode records a field violation with a specific code.
func (v *ValidationErrors) AddCode(code, field string, rejected interface{}, reason string) {
	v.Errors = append(v.Errors, FieldError{
		Field:         field,
		RejectedValue: rejected,
		Reason:        reason,
		Code:          code,
	})
}

// Merge appends every violation of other.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasCode reports whether any violation carries code.
func (v *ValidationErrors) HasCode(code string) bool {
	for _, e := range v.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Reason)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Is lets errors.Is(err, ErrValidationFailed) match an aggregate.
func (v *ValidationErrors) Is(target error) bool {
	return ErrValidationFailed.Is(target)
}

// ToDomainError converts the aggregate into the envelope-facing error.
func (v *ValidationErrors) ToDomainError() *DomainError {
	return ErrValidationFailed.New().
		WithDetail("field_errors", v.Errors).
		WithCause(v)
}
