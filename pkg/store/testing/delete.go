package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunDeleteTests(test *testing.T) {
	test.Run("DeleteItem_Success", suite.TestDeleteItem_Success)
	test.Run("DeleteItem_Idempotent", suite.TestDeleteItem_Idempotent)
	test.Run("DeleteItem_RemovesIndexEntries", suite.TestDeleteItem_RemovesIndexEntries)
	test.Run("DeleteItemsInParent_DirectChildrenOnly", suite.TestDeleteItemsInParent_DirectChildrenOnly)
	test.Run("DeleteItems_Batch", suite.TestDeleteItems_Batch)
}

// TestDeleteItem_Success verifies a deleted item can no longer be read.
func (suite *StoreTestSuite) TestDeleteItem_Success(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Temp", store.RootID))

	require.NoError(test, s.DeleteItem(ctx, created.Meta().ID))

	got, err := s.GetItemByID(ctx, created.Meta().ID)
	require.NoError(test, err)
	assert.Nil(test, got)
}

// TestDeleteItem_Idempotent verifies deleting an absent id succeeds.
func (suite *StoreTestSuite) TestDeleteItem_Idempotent(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Temp", store.RootID))

	require.NoError(test, s.DeleteItem(ctx, created.Meta().ID))
	assert.NoError(test, s.DeleteItem(ctx, created.Meta().ID), "second delete must succeed")
	assert.NoError(test, s.DeleteItem(ctx, "never-existed"))
}

// TestDeleteItem_RemovesIndexEntries verifies no index still references a deleted item.
func (suite *StoreTestSuite) TestDeleteItem_RemovesIndexEntries(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	folder := MustCreate(test, s, NewFolder("Box", store.RootID))
	file := MustCreate(test, s, NewFile("gone.pdf", folder.Meta().ID, "", 0))

	require.NoError(test, s.DeleteItem(ctx, file.Meta().ID))

	children, err := s.GetItemsByParent(ctx, folder.Meta().ID)
	require.NoError(test, err)
	assert.Empty(test, children)

	files, err := s.GetItemsByType(ctx, store.ItemTypeFile)
	require.NoError(test, err)
	assert.Empty(test, files)

	named, err := s.GetItemsByName(ctx, "gone.pdf")
	require.NoError(test, err)
	assert.Empty(test, named)

	all, err := s.GetAllItems(ctx)
	require.NoError(test, err)
	assert.Equal(test, []string{folder.Meta().ID}, IDs(all))
}

// TestDeleteItemsInParent_DirectChildrenOnly verifies only the first level is removed.
func (suite *StoreTestSuite) TestDeleteItemsInParent_DirectChildrenOnly(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	parent := MustCreate(test, s, NewFolder("Parent", store.RootID))
	child := MustCreate(test, s, NewFolder("Child", parent.Meta().ID))
	MustCreate(test, s, NewFile("x.pdf", parent.Meta().ID, "", 0))
	grandchild := MustCreate(test, s, NewFile("y.pdf", child.Meta().ID, "", 0))

	require.NoError(test, s.DeleteItemsInParent(ctx, parent.Meta().ID))

	children, err := s.GetItemsByParent(ctx, parent.Meta().ID)
	require.NoError(test, err)
	assert.Empty(test, children)

	got, err := s.GetItemByID(ctx, parent.Meta().ID)
	require.NoError(test, err)
	assert.NotNil(test, got, "the parent itself must remain")

	got, err = s.GetItemByID(ctx, grandchild.Meta().ID)
	require.NoError(test, err)
	assert.NotNil(test, got, "grandchildren are not touched")
}

// TestDeleteItems_Batch verifies batch delete removes every id and ignores absent ones.
func (suite *StoreTestSuite) TestDeleteItems_Batch(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	a := MustCreate(test, s, NewFolder("A", store.RootID))
	b := MustCreate(test, s, NewFolder("B", a.Meta().ID))
	keep := MustCreate(test, s, NewFolder("Keep", store.RootID))

	require.NoError(test, s.DeleteItems(ctx, []string{a.Meta().ID, b.Meta().ID, "absent"}))

	all, err := s.GetAllItems(ctx)
	require.NoError(test, err)
	assert.Equal(test, []string{keep.Meta().ID}, IDs(all))

	assert.NoError(test, s.DeleteItems(ctx, nil))
}
