package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunReadTests(test *testing.T) {
	test.Run("GetReturnsRecordWithID", suite.testGetReturnsRecordWithID)
	test.Run("GetUnknown", suite.testGetUnknown)
	test.Run("GetMalformedID", suite.testGetMalformedID)
	test.Run("GetAcceptsUppercaseID", suite.testGetAcceptsUppercaseID)
	test.Run("FindByUID", suite.testFindByUID)
	test.Run("FindByLocation", suite.testFindByLocation)
	test.Run("FindNoMatch", suite.testFindNoMatch)
	test.Run("LargeIntegerRoundTrip", suite.testLargeIntegerRoundTrip)
	test.Run("FindByNumber", suite.testFindByNumber)
}

func (suite *StoreTestSuite) testGetReturnsRecordWithID(t *testing.T) {
	s := suite.NewStore(t)
	md := Record("alpha", "a")
	md["size"] = 42
	id := MustCreate(t, s, md)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID())
	assert.Equal(t, "alpha", got.UID())
	assert.Equal(t, Checksum("a"), got.Checksum())
	assert.Equal(t, []string{"/data/alpha"}, got.Locations())
	assert.Equal(t, json.Number("42"), got["size"])
}

func (suite *StoreTestSuite) testGetUnknown(t *testing.T) {
	s := suite.NewStore(t)
	id, err := store.NewID()
	require.NoError(t, err)

	_, err = s.Get(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func (suite *StoreTestSuite) testGetMalformedID(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}

func (suite *StoreTestSuite) testGetAcceptsUppercaseID(t *testing.T) {
	s := suite.NewStore(t)
	id := MustCreate(t, s, Record("alpha", "a"))

	got, err := s.Get(context.Background(), upper(id))
	require.NoError(t, err)
	assert.Equal(t, id, got.ID())
}

func (suite *StoreTestSuite) testFindByUID(t *testing.T) {
	s := suite.NewStore(t)
	MustCreate(t, s, Record("alpha", "a"))
	id := MustCreate(t, s, Record("beta", "b"))

	got, err := s.Find(context.Background(), store.Filter{models.FieldUID: "beta"})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID())
}

func (suite *StoreTestSuite) testFindByLocation(t *testing.T) {
	s := suite.NewStore(t)
	id := MustCreate(t, s, Record("alpha", "a", "/a/1", "/a/2"))

	got, err := s.Find(context.Background(), store.Filter{models.FieldLocations: "/a/2"})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID())
}

func (suite *StoreTestSuite) testFindNoMatch(t *testing.T) {
	s := suite.NewStore(t)
	MustCreate(t, s, Record("alpha", "a"))

	_, err := s.Find(context.Background(), store.Filter{models.FieldUID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

func (suite *StoreTestSuite) testLargeIntegerRoundTrip(t *testing.T) {
	s := suite.NewStore(t)
	md := Record("alpha", "a")
	md["size"] = json.Number("9007199254740993")
	id := MustCreate(t, s, md)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got["size"])

	require.NoError(t, s.Update(context.Background(), id, models.Metadata{"inode": uint64(18446744073709551615)}))

	got, err = s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got["size"])
	assert.Equal(t, json.Number("18446744073709551615"), got["inode"])
}

func (suite *StoreTestSuite) testFindByNumber(t *testing.T) {
	s := suite.NewStore(t)
	md := Record("alpha", "a")
	md["size"] = 42
	id := MustCreate(t, s, md)

	for _, want := range []any{42, 42.0, json.Number("42.0"), json.Number("4.2e1")} {
		got, err := s.Find(context.Background(), store.Filter{"size": want})
		require.NoError(t, err, "%v", want)
		assert.Equal(t, id, got.ID())
	}

	_, err := s.Find(context.Background(), store.Filter{"size": json.Number("43")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
