// Package errors holds the error kinds every service error wraps.
// Handlers map a specific error to a response code and fall back to its kind.
package errors

import "errors"

var (
	// ErrUnauthenticated no identity on the request; the client must log in.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden identity present but role or ownership check failed.
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidState the record is not in a state that allows the operation.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrValidation malformed or out-of-policy input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOptimisticLock the row changed between read and write.
	ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")
)

// Kind returns the taxonomy sentinel err wraps, or nil for unclassified (internal) errors.
func Kind(err error) error {
	for _, k := range []error{ErrUnauthenticated, ErrForbidden, ErrInvalidState, ErrValidation, ErrNotFound, ErrOptimisticLock} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New declares a module-level sentinel that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}
