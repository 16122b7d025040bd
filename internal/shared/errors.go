package shared

import "errors"

var (
	// ErrNotFound indicates a resource or parent reference does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a malformed payload or role/scope combination.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a duplicate grant, last-super-admin protection,
	// an inactive form, or a terminal status transition.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates an authorization refusal surfaced as an error.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates a missing or invalid credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStorage indicates a file write or delete failure.
	ErrStorage = errors.New("storage failure")
	// ErrTransaction indicates metadata persistence failed after files were
	// already written.
	ErrTransaction = errors.New("transaction failure")
	// ErrIntegrity indicates a broken ownership chain: a child row references
	// a parent that no longer exists.
	ErrIntegrity = errors.New("integrity violation")
)

// UserSafeMessage returns an error message safe to expose to callers.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "resource not found"
	case errors.Is(err, ErrValidation):
		return "invalid request"
	case errors.Is(err, ErrConflict):
		return "request conflicts with current state"
	case errors.Is(err, ErrForbidden):
		return "not authorized"
	case errors.Is(err, ErrUnauthenticated):
		return "authentication required"
	default:
		return "internal error"
	}
}
