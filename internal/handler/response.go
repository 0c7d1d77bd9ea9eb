// Package handler implements the HTTP surface. Handlers decode requests,
// call a service, and encode the result; every error goes through
// writeError so the apperror taxonomy maps to status codes in exactly one
// place.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-backend/internal/apperror"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an error to its HTTP response. Unrecognized errors are
// logged and reported as a generic 500, so internals never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		status  int
		errType string
	)
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errType = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, errType = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, errType = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, errType = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, errType = http.StatusConflict, "conflict"
	default:
		logger.Error("internal error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	message := err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	writeJSON(w, status, errorResponse{Error: errType, Message: message})
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body is not valid JSON")
	}
	return nil
}
