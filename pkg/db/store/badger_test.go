package store_test

import (
	"context"
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/JadonKrys/file-catalog/pkg/db/store/storetest"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgerStore(t *testing.T, cfg store.BadgerConfig) *store.BadgerStore {
	t.Helper()

	s, err := store.NewBadgerStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestBadgerStore(t *testing.T) {
	suite := &storetest.StoreTestSuite{
		NewStore: func(t *testing.T) store.RecordStore {
			return newBadgerStore(t, store.BadgerConfig{
				InMemory: true,
				Logger:   log.Discard(),
			})
		},
	}

	suite.Run(t)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := store.NewBadgerStore(store.BadgerConfig{})
	assert.Error(t, err)
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := store.NewBadgerStore(store.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Connect(ctx))
	id := storetest.MustCreate(t, s, storetest.Record("alpha", "a"))
	require.NoError(t, s.Close())

	reopened := newBadgerStore(t, store.BadgerConfig{Path: dir})
	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.UID())
}

func TestBadgerStore_HealthAfterClose(t *testing.T) {
	s := newBadgerStore(t, store.BadgerConfig{InMemory: true})
	require.NoError(t, s.Close())

	assert.Error(t, s.Health(context.Background()))
}
