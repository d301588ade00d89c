// Package common holds the error taxonomy shared by every layer of the
// service. Handlers translate these sentinels into HTTP status codes.
package common

import "errors"

var (
	// ErrInvalidInput marks malformed payloads, bad ids, oversized secrets and bad dates.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated covers missing, invalid or expired tokens and bad admin credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when an update or delete target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a submission violates its duplicate policy.
	ErrConflict = errors.New("conflict")
	// ErrStoreFailure wraps unexpected persistence errors.
	ErrStoreFailure = errors.New("store failure")

	// ErrDuplicateKey is returned by repositories when a unique constraint rejects an insert or update.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ConflictError is a duplicate-policy rejection carrying the reason shown to the caller.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflict returns a ConflictError with the given reason.
func NewConflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// InvalidInputError is a validation failure carrying the reason shown to the caller.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NewInvalidInput returns an InvalidInputError with the given reason.
func NewInvalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}

// Reason extracts the user-facing message of err, falling back to def when
// err does not carry one.
func Reason(err error, def string) string {
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Reason
	}
	var v *InvalidInputError
	if errors.As(err, &v) {
		return v.Reason
	}
	return def
}
