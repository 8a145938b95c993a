package store

import (
	"context"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"golang.org/x/sync/semaphore"
)

// BoundedStore caps the number of store calls executing at once. Waiting
// for a slot honours the caller's context, but once a call has started it
// runs to completion even if the caller goes away.
type BoundedStore struct {
	RecordStore
	sem *semaphore.Weighted
}

// Bounded wraps inner with a pool of the given number of workers.
func Bounded(inner RecordStore, workers int) *BoundedStore {
	if workers < 1 {
		workers = 1
	}
	return &BoundedStore{
		RecordStore: inner,
		sem:         semaphore.NewWeighted(int64(workers)),
	}
}

func (b *BoundedStore) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.sem.Release(1)

	return fn(context.WithoutCancel(ctx))
}

func (b *BoundedStore) List(ctx context.Context, filter Filter, limit, start int) (out []Summary, err error) {
	err = b.run(ctx, func(ctx context.Context) error {
		out, err = b.RecordStore.List(ctx, filter, limit, start)
		return err
	})
	return out, err
}

func (b *BoundedStore) Get(ctx context.Context, id string) (md models.Metadata, err error) {
	err = b.run(ctx, func(ctx context.Context) error {
		md, err = b.RecordStore.Get(ctx, id)
		return err
	})
	return md, err
}

func (b *BoundedStore) Find(ctx context.Context, filter Filter) (md models.Metadata, err error) {
	err = b.run(ctx, func(ctx context.Context) error {
		md, err = b.RecordStore.Find(ctx, filter)
		return err
	})
	return md, err
}

func (b *BoundedStore) Create(ctx context.Context, md models.Metadata) (id string, err error) {
	err = b.run(ctx, func(ctx context.Context) error {
		id, err = b.RecordStore.Create(ctx, md)
		return err
	})
	return id, err
}

func (b *BoundedStore) Update(ctx context.Context, id string, fields models.Metadata) error {
	return b.run(ctx, func(ctx context.Context) error {
		return b.RecordStore.Update(ctx, id, fields)
	})
}

func (b *BoundedStore) Replace(ctx context.Context, id string, md models.Metadata) error {
	return b.run(ctx, func(ctx context.Context) error {
		return b.RecordStore.Replace(ctx, id, md)
	})
}

func (b *BoundedStore) Delete(ctx context.Context, id string) error {
	return b.run(ctx, func(ctx context.Context) error {
		return b.RecordStore.Delete(ctx, id)
	})
}
