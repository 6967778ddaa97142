package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Allenwdk/OxygenBlog/internal/frontmatter"
	"github.com/Allenwdk/OxygenBlog/internal/store"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Issues  map[string]string `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		issues := make(map[string]string, len(fieldErrors))
		for field, fieldErr := range fieldErrors {
			issues[field] = fieldErr.Error()
		}
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Issues:  issues,
		}
	}

	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: notFound.Error(),
		}
	}

	var conflict *store.RevisionConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: conflict.Error(),
		}
	}

	if errors.Is(err, frontmatter.ErrMalformedDocument) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "malformed_document",
			Message: err.Error(),
		}
	}

	var transport *store.TransportError
	if errors.As(err, &transport) {
		return http.StatusBadGateway, errorResponse{
			Error:   "upstream_error",
			Message: transport.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}
