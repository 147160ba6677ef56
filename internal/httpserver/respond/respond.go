// Package respond writes JSON bodies and maps application errors to HTTP
// statuses for handlers and middleware alike.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error maps err to a status. Unknown errors are logged and answered with a
// generic 500 so internal details never leave the process.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var (
		status = http.StatusInternalServerError
		body   = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
		appErr *apperror.AppError
	)

	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Field = appErr.Field
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, body.Error = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status, body.Error = http.StatusNotFound, "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status, body.Error = http.StatusForbidden, "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status, body.Error = http.StatusConflict, "conflict"
		case errors.Is(err, apperror.ErrUnauthorized):
			status, body.Error = http.StatusUnauthorized, "unauthorized"
		case errors.Is(err, apperror.ErrUnavailable):
			status, body.Error = http.StatusServiceUnavailable, "unavailable"
		default:
			status = http.StatusInternalServerError
			body = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
		}
	}

	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
	}
	JSON(w, status, body)
}
