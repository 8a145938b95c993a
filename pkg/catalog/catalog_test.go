package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) (*Catalog, store.RecordStore) {
	t.Helper()

	s := store.NewMemoryStore()
	c := New(s, NewValidator(testPolicy()), log.Discard())

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	return c, s
}

func registration(uid, digit string, locations ...any) models.Metadata {
	return models.Metadata{
		models.FieldUID:       uid,
		models.FieldChecksum:  strings.Repeat(digit, 128),
		models.FieldLocations: locations,
	}
}

func TestRegister_CreatesThenMerges(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)
	assert.Equal(t, Created, first.Outcome)

	second, err := c.Register(ctx, registration("f1", "a", "loc2"))
	require.NoError(t, err)
	assert.Equal(t, Merged, second.Outcome)
	assert.Equal(t, first.ID, second.ID)

	rec, err := c.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"loc1", "loc2"}, rec.Metadata.Locations())
	assert.Equal(t, "2024-01-01 00:00:02.000000", rec.Metadata[models.FieldModifyDate])
}

func TestRegister_CollapsesRepeatedLocations(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Register(ctx, registration("f1", "a", "loc1", "loc1"))
	require.NoError(t, err)

	rec, err := c.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"loc1"}, rec.Metadata.Locations())

	second, err := c.Register(ctx, registration("f1", "a", "loc2", "loc2", "loc3"))
	require.NoError(t, err)
	assert.Equal(t, Merged, second.Outcome)

	rec, err = c.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"loc1", "loc2", "loc3"}, rec.Metadata.Locations())
}

func TestRegister_ChecksumCaseInsensitive(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)

	reg, err := c.Register(ctx, registration("f1", "A", "loc2"))
	require.NoError(t, err)
	assert.Equal(t, Merged, reg.Outcome)
}

func TestRegister_ChecksumMismatchLeavesStoreUnchanged(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)
	before, err := c.Get(ctx, first.ID)
	require.NoError(t, err)

	_, err = c.Register(ctx, registration("f1", "b", "loc2"))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrChecksumMismatch))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, first.ID, ce.ID)

	after, err := c.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Tag, after.Tag)
}

func TestRegister_ReplicaExistsLeavesStoreUnchanged(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Register(ctx, registration("f1", "a", "loc1", "loc2"))
	require.NoError(t, err)
	before, err := c.Get(ctx, first.ID)
	require.NoError(t, err)

	_, err = c.Register(ctx, registration("f1", "a", "loc3", "loc2"))
	assert.True(t, IsCode(err, ErrReplicaExists))

	after, err := c.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Tag, after.Tag)
}

func TestRegister_RejectsInvalidPayload(t *testing.T) {
	c, s := newTestCatalog(t)
	ctx := context.Background()

	md := registration("f1", "a", "loc1")
	md[models.FieldModifyDate] = "yesterday"
	_, err := c.Register(ctx, md)
	assert.True(t, IsCode(err, ErrForbiddenField))

	_, err = c.Register(ctx, registration("f1", "a"))
	assert.True(t, IsCode(err, ErrValidation))

	files, err := s.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRegister_ConcurrentSameUIDCreatesOnce(t *testing.T) {
	c, s := newTestCatalog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = c.Register(ctx, registration("f1", "a", "loc"+string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	files, err := s.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, files, 1)

	rec, err := c.Get(ctx, files[0].ID)
	require.NoError(t, err)
	assert.Len(t, rec.Metadata.Locations(), 8)
}

func TestGet_Errors(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	id, err := store.NewID()
	require.NoError(t, err)
	_, err = c.Get(ctx, id)
	assert.True(t, IsCode(err, ErrNotFound))

	_, err = c.Get(ctx, "malformed")
	assert.True(t, IsCode(err, ErrIdentifierFormat))
}

func TestUpdate_RequiresCurrentTag(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)
	rec, err := c.Get(ctx, reg.ID)
	require.NoError(t, err)

	_, err = c.Update(ctx, reg.ID, models.Metadata{"owner": "ops"}, nil)
	assert.True(t, IsCode(err, ErrVersionMismatch))

	_, err = c.Update(ctx, reg.ID, models.Metadata{"owner": "ops"}, []string{"stale"})
	assert.True(t, IsCode(err, ErrVersionMismatch))

	updated, err := c.Update(ctx, reg.ID, models.Metadata{"owner": "ops"}, []string{rec.Tag})
	require.NoError(t, err)
	assert.NotEqual(t, rec.Tag, updated.Tag)
	assert.Equal(t, "ops", updated.Metadata["owner"])
	assert.Equal(t, reg.ID, updated.ID())

	_, err = c.Update(ctx, reg.ID, models.Metadata{"owner": "dev"}, []string{rec.Tag})
	assert.True(t, IsCode(err, ErrVersionMismatch))
}

func TestUpdate_ValidatesMergedRecord(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)
	rec, err := c.Get(ctx, reg.ID)
	require.NoError(t, err)

	_, err = c.Update(ctx, reg.ID, models.Metadata{models.FieldLocations: []any{}}, []string{rec.Tag})
	assert.True(t, IsCode(err, ErrValidation))

	_, err = c.Update(ctx, reg.ID, models.Metadata{models.FieldUID: "other"}, []string{rec.Tag})
	assert.True(t, IsCode(err, ErrForbiddenField))

	after, err := c.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Tag, after.Tag)
}

func TestUpdate_ForbiddenCheckedBeforeLookup(t *testing.T) {
	c, _ := newTestCatalog(t)
	id, err := store.NewID()
	require.NoError(t, err)

	_, err = c.Update(context.Background(), id, models.Metadata{models.FieldID: id}, nil)
	assert.True(t, IsCode(err, ErrForbiddenField))
}

func TestUpdate_ConcurrentSameTag(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)
	rec, err := c.Get(ctx, reg.ID)
	require.NoError(t, err)

	const writers = 10
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Update(ctx, reg.ID, models.Metadata{"writer": i}, []string{rec.Tag})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsCode(err, ErrVersionMismatch))
	}
	assert.Equal(t, 1, succeeded)
}

func TestReplace_PreservesUID(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	md := registration("f1", "a", "loc1")
	md["owner"] = "ops"
	reg, err := c.Register(ctx, md)
	require.NoError(t, err)
	rec, err := c.Get(ctx, reg.ID)
	require.NoError(t, err)

	replaced, err := c.Replace(ctx, reg.ID, models.Metadata{
		models.FieldChecksum:  strings.Repeat("b", 128),
		models.FieldLocations: []any{"loc9"},
	}, []string{rec.Tag})
	require.NoError(t, err)

	assert.Equal(t, "f1", replaced.Metadata.UID())
	assert.Equal(t, reg.ID, replaced.ID())
	assert.Equal(t, []string{"loc9"}, replaced.Metadata.Locations())
	assert.False(t, replaced.Metadata.Has("owner"))
	assert.True(t, replaced.Metadata.Has(models.FieldModifyDate))
}

func TestReplace_StaleTag(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)

	_, err = c.Replace(ctx, reg.ID, registration("", "a", "loc2").Without(models.FieldUID), []string{"stale"})
	assert.True(t, IsCode(err, ErrVersionMismatch))
}

func TestDelete(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, registration("f1", "a", "loc1"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, reg.ID))
	assert.True(t, IsCode(c.Delete(ctx, reg.ID), ErrNotFound))
	assert.True(t, IsCode(c.Delete(ctx, "bad"), ErrIdentifierFormat))
	assert.Equal(t, 0, c.locks.size())
}

func TestResolveFilter(t *testing.T) {
	filter, err := ResolveFilter(map[string]any{models.FieldLegacyID: "x", "uid": "u"})
	require.NoError(t, err)
	assert.Equal(t, store.Filter{models.FieldID: "x", "uid": "u"}, filter)

	_, err = ResolveFilter(map[string]any{models.FieldLegacyID: "x", models.FieldID: "x"})
	assert.True(t, IsCode(err, ErrAmbiguousIdentifier))
}

func TestList(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	a, err := c.Register(ctx, registration("a", "a", "loc1"))
	require.NoError(t, err)
	_, err = c.Register(ctx, registration("b", "a", "loc1"))
	require.NoError(t, err)

	files, err := c.List(ctx, map[string]any{models.FieldLegacyID: a.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a", files[0].UID)

	files, err = c.List(ctx, map[string]any{"uid": "nobody"}, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	_, err = c.List(ctx, map[string]any{models.FieldID: "bad"}, 0, 0)
	assert.True(t, IsCode(err, ErrIdentifierFormat))
}
