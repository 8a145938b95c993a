package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/JadonKrys/file-catalog/pkg/log"
)

// Record is a stored record together with its current version tag.
type Record struct {
	Metadata models.Metadata
	Tag      string
}

func (r *Record) ID() string {
	return r.Metadata.ID()
}

// Catalog implements the record mutation protocol on top of a RecordStore.
// Writes to one identifier, and registrations of one uid, are serialized
// within the process.
type Catalog struct {
	store     store.RecordStore
	validator *Validator
	log       log.LoggerService
	locks     *keyedMutex
	now       func() time.Time
}

func New(s store.RecordStore, v *Validator, logger log.LoggerService) *Catalog {
	return &Catalog{
		store:     s,
		validator: v,
		log:       logger,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// ResolveFilter translates the legacy "_id" alias into "id". Supplying
// both is rejected.
func ResolveFilter(query map[string]any) (store.Filter, error) {
	filter := make(store.Filter, len(query))
	for key, value := range query {
		filter[key] = value
	}

	legacy, hasLegacy := filter[models.FieldLegacyID]
	if !hasLegacy {
		return filter, nil
	}
	if _, ok := filter[models.FieldID]; ok {
		return nil, newError(ErrAmbiguousIdentifier, "`query` contains both `id` and `_id`")
	}
	delete(filter, models.FieldLegacyID)
	filter[models.FieldID] = legacy
	return filter, nil
}

// List returns the {id, uid} projections matching query.
func (c *Catalog) List(ctx context.Context, query map[string]any, limit, start int) ([]store.Summary, error) {
	filter, err := ResolveFilter(query)
	if err != nil {
		return nil, err
	}

	files, err := c.store.List(ctx, filter, limit, start)
	if err != nil {
		return nil, translate(err, "")
	}
	if files == nil {
		files = []store.Summary{}
	}
	return files, nil
}

// Get returns the record with its version tag.
func (c *Catalog) Get(ctx context.Context, id string) (*Record, error) {
	md, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	return newRecord(md)
}

// Update merges patch into the record if tags holds its current tag.
func (c *Catalog) Update(ctx context.Context, id string, patch models.Metadata, tags []string) (*Record, error) {
	if err := c.validator.CheckModificationForbidden(patch); err != nil {
		return nil, err
	}

	fields := patch.Clone()
	fields.Touch(c.now())

	return c.mutate(ctx, id, tags, func(current models.Metadata) (models.Metadata, error) {
		proposed := current.Clone()
		proposed.Merge(fields)
		if err := c.validator.ValidateModification(proposed); err != nil {
			return nil, err
		}
		return proposed, c.store.Update(ctx, current.ID(), fields)
	})
}

// Replace overwrites the record if tags holds its current tag. The
// identifier and uid of the stored record are kept.
func (c *Catalog) Replace(ctx context.Context, id string, md models.Metadata, tags []string) (*Record, error) {
	if err := c.validator.CheckModificationForbidden(md); err != nil {
		return nil, err
	}

	return c.mutate(ctx, id, tags, func(current models.Metadata) (models.Metadata, error) {
		proposed := md.Clone()
		if current.Has(models.FieldUID) {
			proposed[models.FieldUID] = current[models.FieldUID]
		}
		proposed.Touch(c.now())
		if err := c.validator.ValidateModification(proposed); err != nil {
			return nil, err
		}
		return proposed, c.store.Replace(ctx, current.ID(), proposed)
	})
}

// mutate runs the compare-then-write sequence for one identifier.
func (c *Catalog) mutate(ctx context.Context, id string, tags []string, write func(current models.Metadata) (models.Metadata, error)) (*Record, error) {
	key, err := store.NormalizeID(id)
	if err != nil {
		return nil, translate(err, id)
	}

	unlock := c.locks.Lock("id:" + key)
	defer unlock()

	current, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, translate(err, key)
	}

	before, err := Tag(current)
	if err != nil {
		return nil, err
	}
	if !tagMatches(before, tags) {
		c.log.Debug("Rejected write to %s: presented tags %v, current %s", key, tags, before)
		return nil, &Error{Code: ErrVersionMismatch, Message: "conflict (version mismatch)", ID: key}
	}

	if _, err := write(current); err != nil {
		if _, ok := CodeOf(err); !ok {
			c.log.Error("Write to %s failed: %v", key, err)
		}
		return nil, translate(err, key)
	}

	updated, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, translate(err, key)
	}
	return newRecord(updated)
}

// Delete removes the record.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	key, err := store.NormalizeID(id)
	if err != nil {
		return translate(err, id)
	}

	unlock := c.locks.Lock("id:" + key)
	defer unlock()

	if err := c.store.Delete(ctx, key); err != nil {
		return translate(err, key)
	}
	return nil
}

func newRecord(md models.Metadata) (*Record, error) {
	tag, err := Tag(md)
	if err != nil {
		return nil, err
	}
	return &Record{Metadata: md, Tag: tag}, nil
}

// translate maps store errors onto catalog errors. Anything else is
// returned unchanged.
func translate(err error, id string) error {
	var ce *Error
	switch {
	case errors.As(err, &ce):
		return err
	case errors.Is(err, store.ErrNotFound):
		return &Error{Code: ErrNotFound, Message: "not found", ID: id, Err: err}
	case errors.Is(err, store.ErrInvalidIdentifier):
		return &Error{Code: ErrIdentifierFormat, Message: "not a valid identifier", ID: id, Err: err}
	case errors.Is(err, store.ErrNotAcknowledged):
		return &Error{Code: ErrStoreWrite, Message: "store did not acknowledge the write", ID: id, Err: err}
	default:
		return err
	}
}
