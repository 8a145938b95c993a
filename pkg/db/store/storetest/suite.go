package storetest

import (
	"testing"

	"github.com/JadonKrys/file-catalog/pkg/db/store"
)

// StoreTestSuite exercises the RecordStore contract. It tests behaviour
// visible through the interface only, so every backend can share it.
type StoreTestSuite struct {
	// NewStore returns a connected and migrated store. Cleanup is
	// registered on t by the factory.
	NewStore func(t *testing.T) store.RecordStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Lifecycle", suite.RunLifecycleTests)
	test.Run("Read", suite.RunReadTests)
	test.Run("Write", suite.RunWriteTests)
	test.Run("List", suite.RunListTests)
}
