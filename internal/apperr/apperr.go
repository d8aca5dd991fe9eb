// Package apperr defines the failure taxonomy shared by services and
// handlers. Services return these; the HTTP layer maps them to status
// codes and never re-interprets storage errors on its own.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnauthenticated means no identity was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity is known but the role is
	// insufficient, or the caller is not the author.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers both absent rows and rows hidden by visibility
	// scoping; the two are intentionally indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness violation, e.g. a duplicate participant.
	ErrConflict = errors.New("conflict")
	// ErrValidation is a malformed field value.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence is a storage or transaction failure; cascades roll
	// back fully before it is returned.
	ErrPersistence = errors.New("persistence failure")
)

// Validation wraps ErrValidation with a field-level reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden with the denied action for logs.
func Forbidden(action string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, action)
}

const uniqueViolationCode = "23505"

// FromStorage converts a repository error into the taxonomy. Row absence
// becomes NotFound, unique violations become Conflict, anything else is a
// persistence failure.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
