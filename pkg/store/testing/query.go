package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunQueryTests(test *testing.T) {
	test.Run("GetItemByID_Absent", suite.TestGetItemByID_Absent)
	test.Run("GetAllItems", suite.TestGetAllItems)
	test.Run("GetItemsByParent_RootAndNested", suite.TestGetItemsByParent_RootAndNested)
	test.Run("GetItemsByParent_Unknown", suite.TestGetItemsByParent_Unknown)
	test.Run("GetItemsByType", suite.TestGetItemsByType)
	test.Run("GetItemsByName_CaseInsensitive", suite.TestGetItemsByName_CaseInsensitive)
}

// TestGetItemByID_Absent verifies a missing id yields (nil, nil).
func (suite *StoreTestSuite) TestGetItemByID_Absent(test *testing.T) {
	s := suite.newInitializedStore(test)

	got, err := s.GetItemByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.NoError(test, err)
	assert.Nil(test, got)
}

// TestGetAllItems verifies every created item is returned.
func (suite *StoreTestSuite) TestGetAllItems(test *testing.T) {
	s := suite.newInitializedStore(test)

	a := MustCreate(test, s, NewFolder("A", store.RootID))
	b := MustCreate(test, s, NewFolder("B", a.Meta().ID))
	c := MustCreate(test, s, NewFile("c.pdf", b.Meta().ID, "", 0))

	all, err := s.GetAllItems(context.Background())
	require.NoError(test, err)
	assert.Equal(test, SortedIDs(a.Meta().ID, b.Meta().ID, c.Meta().ID), IDs(all))
}

// TestGetItemsByParent_RootAndNested verifies the parent index returns direct children only.
func (suite *StoreTestSuite) TestGetItemsByParent_RootAndNested(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	root1 := MustCreate(test, s, NewFolder("Root1", store.RootID))
	root2 := MustCreate(test, s, NewFolder("Root2", store.RootID))
	child := MustCreate(test, s, NewFolder("Child", root1.Meta().ID))
	file := MustCreate(test, s, NewFile("doc.pdf", root1.Meta().ID, "", 0))
	MustCreate(test, s, NewFolder("Grandchild", child.Meta().ID))

	roots, err := s.GetItemsByParent(ctx, store.RootID)
	require.NoError(test, err)
	assert.Equal(test, SortedIDs(root1.Meta().ID, root2.Meta().ID), IDs(roots))

	children, err := s.GetItemsByParent(ctx, root1.Meta().ID)
	require.NoError(test, err)
	assert.Equal(test, SortedIDs(child.Meta().ID, file.Meta().ID), IDs(children))

	for _, c := range children {
		if c.Meta().ID == file.Meta().ID {
			assert.NotNil(test, store.AsFile(c), "children must keep their variant")
		}
	}
}

// TestGetItemsByParent_Unknown verifies an unknown parent yields an empty result.
func (suite *StoreTestSuite) TestGetItemsByParent_Unknown(test *testing.T) {
	s := suite.newInitializedStore(test)
	MustCreate(test, s, NewFolder("A", store.RootID))

	children, err := s.GetItemsByParent(context.Background(), "no-such-parent")
	require.NoError(test, err)
	assert.Empty(test, children)
}

// TestGetItemsByType verifies the type index.
func (suite *StoreTestSuite) TestGetItemsByType(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	folder := MustCreate(test, s, NewFolder("A", store.RootID))
	file1 := MustCreate(test, s, NewFile("one.pdf", folder.Meta().ID, "", 0))
	file2 := MustCreate(test, s, NewFile("two.pdf", store.RootID, "", 0))

	folders, err := s.GetItemsByType(ctx, store.ItemTypeFolder)
	require.NoError(test, err)
	assert.Equal(test, []string{folder.Meta().ID}, IDs(folders))

	files, err := s.GetItemsByType(ctx, store.ItemTypeFile)
	require.NoError(test, err)
	assert.Equal(test, SortedIDs(file1.Meta().ID, file2.Meta().ID), IDs(files))
}

// TestGetItemsByName_CaseInsensitive verifies the name index folds case.
func (suite *StoreTestSuite) TestGetItemsByName_CaseInsensitive(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	a := MustCreate(test, s, NewFolder("Reports", store.RootID))
	parent := MustCreate(test, s, NewFolder("Other", store.RootID))
	b := MustCreate(test, s, NewFolder("REPORTS", parent.Meta().ID))
	MustCreate(test, s, NewFolder("Reports 2024", store.RootID))

	matches, err := s.GetItemsByName(ctx, "reports")
	require.NoError(test, err)
	assert.Equal(test, SortedIDs(a.Meta().ID, b.Meta().ID), IDs(matches))
}
