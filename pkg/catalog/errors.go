package catalog

import (
	"errors"
	"fmt"
)

// ErrorCode is the category of a catalog error. The HTTP layer maps each
// code to a status.
type ErrorCode int

const (
	// ErrValidation covers missing mandatory fields and malformed checksum
	// or locations.
	ErrValidation ErrorCode = iota

	// ErrForbiddenField means the payload sets a field clients may not set.
	ErrForbiddenField

	// ErrIdentifierFormat means an identifier could not be parsed.
	ErrIdentifierFormat

	// ErrAmbiguousIdentifier means a filter supplied both "id" and "_id".
	ErrAmbiguousIdentifier

	ErrNotFound

	// ErrChecksumMismatch means a uid was registered again with other content.
	ErrChecksumMismatch

	// ErrReplicaExists means a location is already known for the record.
	ErrReplicaExists

	// ErrVersionMismatch means the presented tag is stale or missing.
	ErrVersionMismatch

	// ErrStoreWrite means the store did not acknowledge a write.
	ErrStoreWrite
)

func (c ErrorCode) String() string {
	switch c {
	case ErrValidation:
		return "validation"
	case ErrForbiddenField:
		return "forbidden_field"
	case ErrIdentifierFormat:
		return "identifier_format"
	case ErrAmbiguousIdentifier:
		return "ambiguous_identifier"
	case ErrNotFound:
		return "not_found"
	case ErrChecksumMismatch:
		return "checksum_mismatch"
	case ErrReplicaExists:
		return "replica_exists"
	case ErrVersionMismatch:
		return "version_mismatch"
	case ErrStoreWrite:
		return "store_write"
	default:
		return "unknown"
	}
}

// Conflict reports whether the code is one of the 409 conflicts.
func (c ErrorCode) Conflict() bool {
	return c == ErrChecksumMismatch || c == ErrReplicaExists || c == ErrVersionMismatch
}

// Error is returned by every catalog operation for failures the client
// can act on.
type Error struct {
	Code    ErrorCode
	Message string

	// ID references the record involved, when there is one.
	ID string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsCode reports whether err is a catalog error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns the code of err and whether err is a catalog error.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
