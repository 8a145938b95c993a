package storetest

import (
	"context"
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunListTests(test *testing.T) {
	test.Run("InsertionOrder", suite.testListInsertionOrder)
	test.Run("Pagination", suite.testListPagination)
	test.Run("StartPastEnd", suite.testListStartPastEnd)
	test.Run("FilterByID", suite.testListFilterByID)
	test.Run("FilterByField", suite.testListFilterByField)
	test.Run("FilterMalformedID", suite.testListFilterMalformedID)
}

func seed(t *testing.T, s store.RecordStore, uids ...string) []string {
	t.Helper()

	ids := make([]string, len(uids))
	for i, uid := range uids {
		ids[i] = MustCreate(t, s, Record(uid, "a"))
	}
	return ids
}

func (suite *StoreTestSuite) testListInsertionOrder(t *testing.T) {
	s := suite.NewStore(t)
	ids := seed(t, s, "a", "b", "c")

	got, err := s.List(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, summary := range got {
		assert.Equal(t, ids[i], summary.ID)
	}
	assert.Equal(t, "b", got[1].UID)
}

func (suite *StoreTestSuite) testListPagination(t *testing.T) {
	s := suite.NewStore(t)
	ids := seed(t, s, "a", "b", "c", "d", "e")

	got, err := s.List(context.Background(), nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[1], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)
}

func (suite *StoreTestSuite) testListStartPastEnd(t *testing.T) {
	s := suite.NewStore(t)
	seed(t, s, "a", "b")

	got, err := s.List(context.Background(), nil, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func (suite *StoreTestSuite) testListFilterByID(t *testing.T) {
	s := suite.NewStore(t)
	ids := seed(t, s, "a", "b")

	got, err := s.List(context.Background(), store.Filter{models.FieldID: ids[1]}, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].UID)
}

func (suite *StoreTestSuite) testListFilterByField(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()
	ids := seed(t, s, "a", "b", "c")
	require.NoError(t, s.Update(ctx, ids[0], models.Metadata{"owner": "ops"}))
	require.NoError(t, s.Update(ctx, ids[2], models.Metadata{"owner": "ops"}))

	got, err := s.List(ctx, store.Filter{"owner": "ops"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)
}

func (suite *StoreTestSuite) testListFilterMalformedID(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.List(context.Background(), store.Filter{models.FieldID: "nope"}, 0, 0)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}
