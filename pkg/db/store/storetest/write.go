package storetest

import (
	"context"
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunWriteTests(test *testing.T) {
	test.Run("CreateIgnoresSuppliedID", suite.testCreateIgnoresSuppliedID)
	test.Run("UpdateMergesFields", suite.testUpdateMergesFields)
	test.Run("UpdateUnknownNotAcknowledged", suite.testUpdateUnknownNotAcknowledged)
	test.Run("ReplaceDropsFields", suite.testReplaceDropsFields)
	test.Run("ReplaceUnknownNotAcknowledged", suite.testReplaceUnknownNotAcknowledged)
	test.Run("Delete", suite.testDelete)
	test.Run("DeleteUnknown", suite.testDeleteUnknown)
}

func (suite *StoreTestSuite) testCreateIgnoresSuppliedID(t *testing.T) {
	s := suite.NewStore(t)
	md := Record("alpha", "a")
	md[models.FieldID] = "00000000-0000-0000-0000-000000000001"

	id := MustCreate(t, s, md)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000001", id)
}

func (suite *StoreTestSuite) testUpdateMergesFields(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()
	id := MustCreate(t, s, Record("alpha", "a"))

	err := s.Update(ctx, id, models.Metadata{
		models.FieldLocations: []any{"/x", "/y"},
		"owner":               "ops",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.UID())
	assert.Equal(t, []string{"/x", "/y"}, got.Locations())
	assert.Equal(t, "ops", got["owner"])
}

func (suite *StoreTestSuite) testUpdateUnknownNotAcknowledged(t *testing.T) {
	s := suite.NewStore(t)
	id, err := store.NewID()
	require.NoError(t, err)

	err = s.Update(context.Background(), id, models.Metadata{"owner": "ops"})
	assert.ErrorIs(t, err, store.ErrNotAcknowledged)
}

func (suite *StoreTestSuite) testReplaceDropsFields(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()
	md := Record("alpha", "a")
	md["owner"] = "ops"
	id := MustCreate(t, s, md)

	require.NoError(t, s.Replace(ctx, id, Record("alpha", "b")))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID())
	assert.Equal(t, Checksum("b"), got.Checksum())
	assert.False(t, got.Has("owner"))
}

func (suite *StoreTestSuite) testReplaceUnknownNotAcknowledged(t *testing.T) {
	s := suite.NewStore(t)
	id, err := store.NewID()
	require.NoError(t, err)

	err = s.Replace(context.Background(), id, Record("alpha", "a"))
	assert.ErrorIs(t, err, store.ErrNotAcknowledged)
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()
	id := MustCreate(t, s, Record("alpha", "a"))

	require.NoError(t, s.Delete(ctx, id))

	_, err := s.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Find(ctx, store.Filter{models.FieldUID: "alpha"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testDeleteUnknown(t *testing.T) {
	s := suite.NewStore(t)
	id, err := store.NewID()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrNotFound)
}
