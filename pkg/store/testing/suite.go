package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite is a comprehensive test suite for ItemStore implementations.
// It tests the interface contract, not implementation details, making it reusable
// across different implementations (memory, badger, ...).
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh, uninitialized
	// ItemStore for each test. This ensures test isolation. Implementations
	// that need cleanup should register it with t.Cleanup.
	NewStore func(t *testing.T) store.ItemStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Lifecycle", suite.RunLifecycleTests)
	test.Run("Create", suite.RunCreateTests)
	test.Run("Query", suite.RunQueryTests)
	test.Run("Update", suite.RunUpdateTests)
	test.Run("Delete", suite.RunDeleteTests)
}

// newInitializedStore creates a store through the factory and initializes it.
func (suite *StoreTestSuite) newInitializedStore(test *testing.T) store.ItemStore {
	test.Helper()

	s := suite.NewStore(test)
	require.NoError(test, s.Initialize(context.Background()))
	return s
}
