package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yukio/micropost/internal/apperror"
)

// Every endpoint responds with the same envelope:
//
//	success: {"status":"success","data":...,"message":"..."}
//	error:   {"status":"error","error":"<machine-readable reason>","message":"..."}
//
// The reason string is what clients branch on (e.g. "already_liked" tells
// the feed to resync); the message is for humans.

// SuccessResponse is the envelope for 2xx responses.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for 4xx/5xx responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// writeError maps a domain error to its HTTP status and reason string. This
// is the only place that translation happens — services never see HTTP.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		reason := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusUnprocessableEntity // 422
			reason = "validation_error"
		case errors.Is(err, apperror.ErrAlreadyLiked):
			status = http.StatusBadRequest // 400
			reason = "already_liked"
		case errors.Is(err, apperror.ErrNotLiked):
			status = http.StatusBadRequest // 400
			reason = "not_liked"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized // 401
			reason = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
			reason = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
			reason = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict // 409
			reason = "conflict"
		case errors.Is(err, apperror.ErrTransient):
			status = http.StatusServiceUnavailable // 503
			reason = "transient"
		}

		writeJSON(w, status, ErrorResponse{
			Status:  "error",
			Error:   reason,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — generic 500, no internal detail in the body.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
