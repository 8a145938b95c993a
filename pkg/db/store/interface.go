package store

import (
	"context"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
)

// Summary is the projection returned by List.
type Summary struct {
	ID  string `json:"id"`
	UID string `json:"uid"`
}

// RecordStore defines the persistence primitives for file records.
//
// Identifiers are always passed in their external string form; a malformed
// identifier yields ErrInvalidIdentifier. Implementations provide no
// atomicity between a read and a later write to the same identifier.
type RecordStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// List returns the records matching filter in identifier order, sliced
	// to [start, start+limit). A limit <= 0 means no upper bound.
	List(ctx context.Context, filter Filter, limit, start int) ([]Summary, error)

	// Get returns the record with the given identifier or ErrNotFound.
	Get(ctx context.Context, id string) (models.Metadata, error)

	// Find returns the first record matching filter or ErrNotFound.
	Find(ctx context.Context, filter Filter) (models.Metadata, error)

	// Create stores md under a new identifier and returns it.
	Create(ctx context.Context, md models.Metadata) (string, error)

	// Update merges fields into the stored record.
	Update(ctx context.Context, id string, fields models.Metadata) error

	// Replace overwrites every field of the stored record except its identifier.
	Replace(ctx context.Context, id string, md models.Metadata) error

	// Delete removes the record or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
