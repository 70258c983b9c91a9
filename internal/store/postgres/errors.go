package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"interviews/backend/internal/store"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	constraintOneActive = "interviews_one_active_per_application"
)

// classify maps driver errors onto store sentinels. Errors that are neither a
// Postgres rejection nor a caller cancellation are reported as ErrUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintOneActive:
			return store.ErrConflict
		case pgErr.Code == pgCheckViolation:
			return fmt.Errorf("%w: %s", store.ErrConstraint, pgErr.ConstraintName)
		}
		return err
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
