package core

import (
	"errors"
	"fmt"
)

// FatalError marks a condition that must abort the entire run rather than be
// retried or counted: continuing past it would produce silently wrong
// benchmark data. Lower layers return it like any other error; only the
// top-level run loop acts on it.
type FatalError struct {
	Reason string
}

// Error implements the error interface.
func (e *FatalError) Error() string { return "fatal: " + e.Reason }

// Fatalf constructs a FatalError with a formatted diagnostic.
func Fatalf(format string, args ...any) error {
	return &FatalError{Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err (or anything it wraps) is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
