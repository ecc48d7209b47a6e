package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"marketplace/pkg/common"

	"go.uber.org/zap"
)

// ErrorHandler renders errors into the response envelope and logs them.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Resolve maps any error to the status, code, message and details rendered
// to the client.
func Resolve(err error) (int, *DomainError) {
	if d := GetDomainError(err); d != nil {
		status := d.StatusCode
		if status == 0 {
			status = domainErrorTypeToStatusCode(d.Type)
		}
		return status, d
	}
	if appErr := GetAppError(err); appErr != nil {
		code := "INTERNAL_ERROR"
		if appErr.Type == ErrorTypeExternal {
			code = "EXTERNAL_SERVICE_ERROR"
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, &DomainError{
			Type:    DomainInfrastructureError,
			Code:    code,
			Message: "The request could not be completed",
		}
	}
	return http.StatusInternalServerError, &DomainError{
		Type:    DomainInfrastructureError,
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, d := Resolve(err)
	body := &common.ErrorInfo{
		Code:    d.Code,
		Message: d.Message,
	}
	if len(d.Details) > 0 {
		body.Details = d.Details
	}
	if h.debug && status >= http.StatusInternalServerError {
		if body.Details == nil {
			body.Details = make(map[string]interface{})
		}
		body.Details["cause"] = err.Error()
	}

	fields := []zap.Field{
		zap.String("error_code", d.Code),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
		zap.Error(err),
	}
	switch {
	case status >= 500:
		h.logger.Error("request failed", fields...)
	default:
		h.logger.Warn("request rejected", fields...)
	}

	h.sendJSON(w, status, common.APIResponse{Success: false, Error: body})
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware returns an HTTP middleware that turns panics into 500 envelopes
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
