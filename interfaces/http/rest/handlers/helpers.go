package handlers

import (
	"errors"
	"io"
	"net/http"

	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body into v. A missing or unreadable body is
// REQUEST_MALFORMED.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperrors.ErrRequestMalformed.New().WithDetail("body", "missing")
	}
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.ErrRequestMalformed.New().WithDetail("body", "missing")
		}
		return apperrors.ErrRequestMalformed.New().
			WithDetail("body", "invalid").
			WithCause(err)
	}
	return nil
}

func pathParam(r *http.Request, name string) (string, error) {
	if value := chi.URLParam(r, name); value != "" {
		return value, nil
	}
	return "", apperrors.ErrRequestMalformed.New().WithDetail("parameter", name)
}

func queryParam(r *http.Request, name string) (string, error) {
	if value := r.URL.Query().Get(name); value != "" {
		return value, nil
	}
	return "", apperrors.ErrRequestMalformed.New().WithDetail("parameter", name)
}

func meta(r *http.Request) *common.MetaInfo {
	if id := common.ExtractRequestID(r); id != "" {
		return &common.MetaInfo{RequestID: id}
	}
	return nil
}
