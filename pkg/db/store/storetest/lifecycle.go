package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunLifecycleTests(test *testing.T) {
	test.Run("Health", suite.testHealth)
	test.Run("MigrateTwice", suite.testMigrateTwice)
}

func (suite *StoreTestSuite) testHealth(t *testing.T) {
	s := suite.NewStore(t)

	require.NoError(t, s.Health(context.Background()))
}

func (suite *StoreTestSuite) testMigrateTwice(t *testing.T) {
	s := suite.NewStore(t)

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}
