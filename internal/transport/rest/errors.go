package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"interviews/backend/internal/service/interviews"
	"interviews/backend/internal/store"
)

const (
	msgInviteUnavailable  = "This interview invite is no longer available."
	msgAlreadyActive      = "An active interview already exists for this application."
	msgNoLongerChangeable = "This interview can no longer be changed."
	msgIdempotencyReused  = "This request key was already used for a different proposal. Try again."
)

// writeServiceError maps service and store errors onto HTTP responses. conflictMsg
// is shown for store.ErrConflict so each operation can phrase a lost race its own way.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error, conflictMsg string) {
	var vErr *interviews.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.String("op", op), slog.String("reason", vErr.Error()))
		writeError(w, http.StatusBadRequest, "invalid_input", vErr.Error())
	case errors.Is(err, interviews.ErrForbidden):
		log.Info("forbidden", slog.String("op", op))
		writeError(w, http.StatusForbidden, "forbidden", "You are not allowed to perform this action.")
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", slog.String("op", op))
		writeError(w, http.StatusNotFound, "not_found", "Not found.")
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info("idempotency conflict", slog.String("op", op))
		writeError(w, http.StatusConflict, "idempotency_conflict", msgIdempotencyReused)
	case errors.Is(err, store.ErrConflict):
		log.Info("state conflict", slog.String("op", op))
		writeError(w, http.StatusConflict, "conflict", conflictMsg)
	case errors.Is(err, store.ErrConstraint):
		log.Warn("constraint violation", slog.String("op", op), slog.Any("err", err))
		writeError(w, http.StatusBadRequest, "invalid_input", "The request violates a data constraint.")
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Error("store unavailable", slog.String("op", op), slog.Any("err", err))
		writeError(w, http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable. Try again.")
	default:
		log.Error("request failed", slog.String("op", op), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
