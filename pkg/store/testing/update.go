package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunUpdateTests(test *testing.T) {
	test.Run("UpdateItem_Rename", suite.TestUpdateItem_Rename)
	test.Run("UpdateItem_NotFound", suite.TestUpdateItem_NotFound)
	test.Run("UpdateItem_EmptyUpdate", suite.TestUpdateItem_EmptyUpdate)
	test.Run("UpdateItem_MonotonicTimestamps", suite.TestUpdateItem_MonotonicTimestamps)
	test.Run("UpdateItem_RewritesNameIndex", suite.TestUpdateItem_RewritesNameIndex)
	test.Run("UpdateItem_KeepsFileFields", suite.TestUpdateItem_KeepsFileFields)
}

// TestUpdateItem_Rename verifies a rename keeps id, parent, createdAt and type.
func (suite *StoreTestSuite) TestUpdateItem_Rename(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Drafts", store.RootID))

	name := "Final"
	updated, err := s.UpdateItem(ctx, created.Meta().ID, store.ItemUpdate{Name: &name})
	require.NoError(test, err)

	assert.Equal(test, created.Meta().ID, updated.Meta().ID)
	assert.Equal(test, "Final", updated.Meta().Name)
	assert.Equal(test, created.Meta().ParentID, updated.Meta().ParentID)
	assert.Equal(test, store.ItemTypeFolder, updated.Type())
	assert.True(test, created.Meta().CreatedAt.Equal(updated.Meta().CreatedAt))
	assert.True(test, updated.Meta().UpdatedAt.After(created.Meta().UpdatedAt))

	got, err := s.GetItemByID(ctx, created.Meta().ID)
	require.NoError(test, err)
	assert.Equal(test, "Final", got.Meta().Name)
}

// TestUpdateItem_NotFound verifies updating a missing id fails with ErrNotFound.
func (suite *StoreTestSuite) TestUpdateItem_NotFound(test *testing.T) {
	s := suite.newInitializedStore(test)

	name := "x"
	_, err := s.UpdateItem(context.Background(), "missing", store.ItemUpdate{Name: &name})
	AssertErrorCode(test, store.ErrNotFound, err)
}

// TestUpdateItem_EmptyUpdate verifies an empty update only bumps updatedAt.
func (suite *StoreTestSuite) TestUpdateItem_EmptyUpdate(test *testing.T) {
	s := suite.newInitializedStore(test)

	created := MustCreate(test, s, NewFolder("Same", store.RootID))

	updated, err := s.UpdateItem(context.Background(), created.Meta().ID, store.ItemUpdate{})
	require.NoError(test, err)
	assert.Equal(test, "Same", updated.Meta().Name)
	assert.True(test, updated.Meta().UpdatedAt.After(created.Meta().UpdatedAt))
}

// TestUpdateItem_MonotonicTimestamps verifies rapid updates never reuse a timestamp.
func (suite *StoreTestSuite) TestUpdateItem_MonotonicTimestamps(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("v0", store.RootID))
	prev := created.Meta().UpdatedAt

	for _, name := range []string{"v1", "v2", "v3", "v4", "v5"} {
		n := name
		updated, err := s.UpdateItem(ctx, created.Meta().ID, store.ItemUpdate{Name: &n})
		require.NoError(test, err)
		assert.True(test, updated.Meta().UpdatedAt.After(prev), "updatedAt must strictly increase")
		prev = updated.Meta().UpdatedAt
	}
}

// TestUpdateItem_RewritesNameIndex verifies the old name no longer matches.
func (suite *StoreTestSuite) TestUpdateItem_RewritesNameIndex(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Old", store.RootID))

	name := "New"
	_, err := s.UpdateItem(ctx, created.Meta().ID, store.ItemUpdate{Name: &name})
	require.NoError(test, err)

	old, err := s.GetItemsByName(ctx, "old")
	require.NoError(test, err)
	assert.Empty(test, old)

	renamed, err := s.GetItemsByName(ctx, "NEW")
	require.NoError(test, err)
	assert.Equal(test, []string{created.Meta().ID}, IDs(renamed))
}

// TestUpdateItem_KeepsFileFields verifies renaming a file keeps its payload.
func (suite *StoreTestSuite) TestUpdateItem_KeepsFileFields(test *testing.T) {
	s := suite.newInitializedStore(test)

	created := MustCreate(test, s, NewFile("a.pdf", store.RootID, "JVBERg==", 4))

	name := "b.pdf"
	updated, err := s.UpdateItem(context.Background(), created.Meta().ID, store.ItemUpdate{Name: &name})
	require.NoError(test, err)

	file := store.AsFile(updated)
	require.NotNil(test, file)
	assert.Equal(test, "b.pdf", file.Name)
	assert.Equal(test, "JVBERg==", file.Content)
	assert.Equal(test, int64(4), file.Size)
	assert.Equal(test, "application/pdf", file.MimeType)
}
