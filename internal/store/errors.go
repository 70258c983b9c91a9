package store

import "errors"

var (
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
	// ErrConstraint reports a row rejected by a schema CHECK constraint.
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("store unavailable")
)
