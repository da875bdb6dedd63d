package sembuf

import (
	"errors"
	"fmt"

	"github.com/bearlytools/sembuf/internal/wire"
)

// DecodeError reports malformed wire bytes: a truncated varint or tag, an
// unsupported wire type, or a varint requiring more than 64 bits. It is
// always fatal to the parse of the surrounding buffer and is never applied
// partially.
type DecodeError = wire.DecodeError

// Sentinel errors carried inside a *DecodeError.
var (
	ErrTruncated = wire.ErrTruncated
	ErrOverflow  = wire.ErrOverflow
	ErrGroup     = wire.ErrGroup
	ErrUTF8      = errors.New("invalid UTF-8 in string field")
)

// ErrUnresolved is returned when a late-bound type is still unresolved at
// its first point of use. Resolution can legitimately still be pending while
// types are being defined, so this is never raised at definition time.
var ErrUnresolved = errors.New("late-bound type is still unresolved")

// TypeValueError reports a value that failed validation or coercion on Set
// or at class-definition time. It is raised synchronously at assignment or
// definition, never deferred to serialize time.
type TypeValueError struct {
	// Field is the field or class the value was destined for.
	Field string
	// Msg describes what was wrong with the value.
	Msg string
}

// Error implements error.
func (e *TypeValueError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("sembuf: %s", e.Msg)
	}
	return fmt.Sprintf("sembuf: field %q: %s", e.Field, e.Msg)
}

func typeErrf(fieldName, format string, args ...any) *TypeValueError {
	return &TypeValueError{Field: fieldName, Msg: fmt.Sprintf(format, args...)}
}

// UnknownFieldError reports access to a field name the struct class does not
// declare.
type UnknownFieldError struct {
	Class string
	Field string
}

// Error implements error.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("sembuf: struct %q has no field named %q", e.Class, e.Field)
}
