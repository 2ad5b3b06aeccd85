package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunLifecycleTests(test *testing.T) {
	test.Run("Uninitialized_RejectsOperations", suite.TestUninitialized_RejectsOperations)
	test.Run("Initialize_Idempotent", suite.TestInitialize_Idempotent)
	test.Run("Healthcheck_Initialized", suite.TestHealthcheck_Initialized)
	test.Run("Healthcheck_CancelledContext", suite.TestHealthcheck_CancelledContext)
}

// TestUninitialized_RejectsOperations verifies every operation fails before Initialize.
func (suite *StoreTestSuite) TestUninitialized_RejectsOperations(test *testing.T) {
	s := suite.NewStore(test)
	ctx := context.Background()

	_, err := s.GetAllItems(ctx)
	AssertErrorCode(test, store.ErrUninitialized, err, "GetAllItems")

	_, err = s.GetItemByID(ctx, "x")
	AssertErrorCode(test, store.ErrUninitialized, err, "GetItemByID")

	_, err = s.GetItemsByParent(ctx, store.RootID)
	AssertErrorCode(test, store.ErrUninitialized, err, "GetItemsByParent")

	_, err = s.CreateItem(ctx, NewFolder("A", store.RootID))
	AssertErrorCode(test, store.ErrUninitialized, err, "CreateItem")

	name := "B"
	_, err = s.UpdateItem(ctx, "x", store.ItemUpdate{Name: &name})
	AssertErrorCode(test, store.ErrUninitialized, err, "UpdateItem")

	err = s.DeleteItem(ctx, "x")
	AssertErrorCode(test, store.ErrUninitialized, err, "DeleteItem")
}

// TestInitialize_Idempotent verifies a second Initialize keeps existing data.
func (suite *StoreTestSuite) TestInitialize_Idempotent(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Contracts", store.RootID))

	require.NoError(test, s.Initialize(ctx))

	got, err := s.GetItemByID(ctx, created.Meta().ID)
	require.NoError(test, err)
	require.NotNil(test, got, "data must survive a repeated Initialize")
	assert.Equal(test, "Contracts", got.Meta().Name)
}

// TestHealthcheck_Initialized verifies an initialized store reports healthy.
func (suite *StoreTestSuite) TestHealthcheck_Initialized(test *testing.T) {
	s := suite.newInitializedStore(test)
	assert.NoError(test, s.Healthcheck(context.Background()))
}

// TestHealthcheck_CancelledContext verifies cancellation is honoured.
func (suite *StoreTestSuite) TestHealthcheck_CancelledContext(test *testing.T) {
	s := suite.newInitializedStore(test)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(test, s.Healthcheck(ctx), context.Canceled)
}
