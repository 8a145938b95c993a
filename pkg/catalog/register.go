package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
)

// Outcome is the result of a successful registration.
type Outcome int

const (
	Created Outcome = iota
	Merged
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "merged"
}

type Registration struct {
	ID      string
	Outcome Outcome
}

// Register creates a record for md, or adds its locations to the record
// already holding the same uid and checksum.
func (c *Catalog) Register(ctx context.Context, md models.Metadata) (*Registration, error) {
	if err := c.validator.ValidateCreation(md); err != nil {
		return nil, err
	}

	proposed := md.Clone()
	proposed[models.FieldLocations] = distinct(proposed.Locations())
	proposed.Touch(c.now())
	uid := proposed.UID()

	unlock := c.locks.Lock("uid:" + uid)
	defer unlock()

	existing, err := c.store.Find(ctx, store.Filter{models.FieldUID: uid})
	if errors.Is(err, store.ErrNotFound) {
		return c.create(ctx, proposed)
	}
	if err != nil {
		return nil, translate(err, "")
	}

	id := existing.ID()
	unlockID := c.locks.Lock("id:" + id)
	defer unlockID()

	// The record may have changed or vanished before the lock was taken.
	existing, err = c.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c.create(ctx, proposed)
	}
	if err != nil {
		return nil, translate(err, id)
	}

	if !strings.EqualFold(existing.Checksum(), proposed.Checksum()) {
		return nil, &Error{Code: ErrChecksumMismatch, Message: "conflict with existing file (uid already exists)", ID: id}
	}

	known := existing.Locations()
	for _, location := range proposed.Locations() {
		for _, k := range known {
			if k == location {
				return nil, &Error{Code: ErrReplicaExists, Message: "replica has already been added", ID: id}
			}
		}
	}

	locations := make([]any, 0, len(known)+len(proposed.Locations()))
	for _, l := range append(known, proposed.Locations()...) {
		locations = append(locations, l)
	}

	err = c.store.Update(ctx, id, models.Metadata{
		models.FieldLocations:  locations,
		models.FieldModifyDate: proposed[models.FieldModifyDate],
	})
	if err != nil {
		c.log.Error("Failed to merge replica into %s: %v", id, err)
		return nil, translate(err, id)
	}

	c.log.Debug("Merged %d location(s) into %s (uid %s)", len(proposed.Locations()), id, uid)
	return &Registration{ID: id, Outcome: Merged}, nil
}

func (c *Catalog) create(ctx context.Context, md models.Metadata) (*Registration, error) {
	id, err := c.store.Create(ctx, md)
	if err != nil {
		c.log.Error("Failed to create record for uid %s: %v", md.UID(), err)
		return nil, translate(err, "")
	}

	c.log.Debug("Created %s (uid %s)", id, md.UID())
	return &Registration{ID: id, Outcome: Created}, nil
}

// distinct drops repeated locations, keeping first occurrences in order.
func distinct(locations []string) []any {
	seen := make(map[string]struct{}, len(locations))
	out := make([]any, 0, len(locations))
	for _, l := range locations {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
