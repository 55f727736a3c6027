package storage

import (
	"errors"
	"fmt"
)

// Class partitions load failures so callers can report what went wrong
// without inspecting backend-specific error types. Backends classify their
// native errors (e.g., Postgres SQLSTATE codes) into one of these classes.
type Class uint8

const (
	// ClassOther covers failures with no more specific classification.
	ClassOther Class = iota
	// ClassConnection covers failures to reach or stay connected to the
	// database (bad DSN, refused connection, dropped session).
	ClassConnection
	// ClassCoercion covers values the database rejected for the declared
	// column type (SQLSTATE class 22, "data exception").
	ClassCoercion
	// ClassConstraint covers integrity violations such as NOT NULL or
	// uniqueness (SQLSTATE class 23).
	ClassConstraint
)

func (c Class) String() string {
	switch c {
	case ClassConnection:
		return "connection"
	case ClassCoercion:
		return "type coercion"
	case ClassConstraint:
		return "constraint"
	default:
		return "storage"
	}
}

// Error wraps a backend failure with its classification and the operation
// that produced it ("connect", "copy", "exec", "count").
type Error struct {
	Class Class
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ClassOf extracts the classification from err, returning ClassOther when
// err carries none.
func ClassOf(err error) Class {
	var se *Error
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassOther
}
