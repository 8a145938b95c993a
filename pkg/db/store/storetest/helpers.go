package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/stretchr/testify/require"
)

// Checksum returns a valid SHA-512 hex digest built from a single digit.
func Checksum(digit string) string {
	return strings.Repeat(digit, 128)
}

// Record returns a creatable record for uid.
func Record(uid, digit string, locations ...string) models.Metadata {
	if len(locations) == 0 {
		locations = []string{"/data/" + uid}
	}
	locs := make([]any, len(locations))
	for i, l := range locations {
		locs[i] = l
	}
	return models.Metadata{
		models.FieldUID:       uid,
		models.FieldChecksum:  Checksum(digit),
		models.FieldLocations: locs,
	}
}

// MustCreate stores md and returns the new identifier.
func MustCreate(t *testing.T, s store.RecordStore, md models.Metadata) string {
	t.Helper()

	id, err := s.Create(context.Background(), md)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}
