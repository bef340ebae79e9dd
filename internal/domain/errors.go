package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. end time before start time, trip shorter than the
// configured minimum).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPermission is returned when the acting user lacks the parent role or has
// no granted relationship to the student whose data is being touched.
// A missing relationship is a permission failure, not a not-found.
// Handlers should map this to HTTP 403.
var ErrPermission = errors.New("permission denied")

// ErrConflict is returned when an operation is legal in general but not in
// the trip's current state: starting a second timer, editing or deleting an
// approved trip, stopping a trip that is not running.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// Error pairs a sentinel with the human-readable reason shown to the caller.
// Handlers pull the reason out via errors.As instead of parsing the error
// string, so a reason may contain anything, colons included.
type Error struct {
	sentinel error
	reason   string
}

// Errorf builds an Error for the given sentinel. errors.Is(err, sentinel)
// holds for the result.
func Errorf(sentinel error, format string, args ...any) error {
	return &Error{sentinel: sentinel, reason: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.sentinel.Error() + ": " + e.reason }

func (e *Error) Unwrap() error { return e.sentinel }

// Reason returns the human-readable part without the sentinel prefix.
func (e *Error) Reason() string { return e.reason }
