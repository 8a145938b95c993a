package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidIdentifier = errors.New("invalid record identifier")
	ErrNotAcknowledged   = errors.New("write not acknowledged")
)

// ParseID converts an external identifier into the store key.
func ParseID(id string) (uuid.UUID, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return key, nil
}

// NormalizeID parses id and returns its canonical string form.
func NormalizeID(id string) (string, error) {
	key, err := ParseID(id)
	if err != nil {
		return "", err
	}
	return key.String(), nil
}

// NewID returns a fresh identifier. Version 7 identifiers sort by creation
// time, which gives every store the same listing order.
func NewID() (string, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate identifier: %v", ErrNotAcknowledged, err)
	}
	return key.String(), nil
}

func notAcknowledged(op, id string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s %s matched no record", ErrNotAcknowledged, op, id)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrNotAcknowledged, op, id, err)
}
