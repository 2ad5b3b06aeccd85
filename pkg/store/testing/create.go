package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunCreateTests(test *testing.T) {
	test.Run("CreateFolder_AssignsIDAndTimestamps", suite.TestCreateFolder_AssignsIDAndTimestamps)
	test.Run("CreateFile_PreservesFields", suite.TestCreateFile_PreservesFields)
	test.Run("Create_IgnoresCallerID", suite.TestCreate_IgnoresCallerID)
	test.Run("Create_UniqueIDs", suite.TestCreate_UniqueIDs)
	test.Run("Create_ReturnsCopy", suite.TestCreate_ReturnsCopy)
}

// TestCreateFolder_AssignsIDAndTimestamps verifies the store fills id and timestamps.
func (suite *StoreTestSuite) TestCreateFolder_AssignsIDAndTimestamps(test *testing.T) {
	s := suite.newInitializedStore(test)

	created := MustCreate(test, s, NewFolder("Financials", store.RootID))

	meta := created.Meta()
	_, err := uuid.Parse(meta.ID)
	require.NoError(test, err, "id must be a UUID")
	assert.Equal(test, store.ItemTypeFolder, created.Type())
	assert.Equal(test, "Financials", meta.Name)
	assert.Equal(test, store.RootID, meta.ParentID)
	assert.False(test, meta.CreatedAt.IsZero())
	assert.True(test, meta.CreatedAt.Equal(meta.UpdatedAt), "createdAt and updatedAt must match on creation")
}

// TestCreateFile_PreservesFields verifies file-specific fields round trip.
func (suite *StoreTestSuite) TestCreateFile_PreservesFields(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	folder := MustCreate(test, s, NewFolder("Legal", store.RootID))
	created := MustCreate(test, s, NewFile("nda.pdf", folder.Meta().ID, "JVBERi0xLjQ=", 8))

	got, err := s.GetItemByID(ctx, created.Meta().ID)
	require.NoError(test, err)

	file := store.AsFile(got)
	require.NotNil(test, file, "stored item must still be a file")
	assert.Equal(test, "nda.pdf", file.Name)
	assert.Equal(test, folder.Meta().ID, file.ParentID)
	assert.Equal(test, "application/pdf", file.MimeType)
	assert.Equal(test, int64(8), file.Size)
	assert.Equal(test, "JVBERi0xLjQ=", file.Content)
	assert.True(test, created.Meta().CreatedAt.Equal(file.CreatedAt))
}

// TestCreate_IgnoresCallerID verifies ids supplied by the caller are replaced.
func (suite *StoreTestSuite) TestCreate_IgnoresCallerID(test *testing.T) {
	s := suite.newInitializedStore(test)

	input := NewFolder("A", store.RootID)
	input.ID = "chosen-by-caller"

	created := MustCreate(test, s, input)
	assert.NotEqual(test, "chosen-by-caller", created.Meta().ID)
}

// TestCreate_UniqueIDs verifies consecutive creates never reuse an id.
func (suite *StoreTestSuite) TestCreate_UniqueIDs(test *testing.T) {
	s := suite.newInitializedStore(test)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		created := MustCreate(test, s, NewFolder("same", store.RootID))
		id := created.Meta().ID
		assert.False(test, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// TestCreate_ReturnsCopy verifies mutating a returned item doesn't change the store.
func (suite *StoreTestSuite) TestCreate_ReturnsCopy(test *testing.T) {
	s := suite.newInitializedStore(test)
	ctx := context.Background()

	created := MustCreate(test, s, NewFolder("Original", store.RootID))
	created.Meta().Name = "Mutated"

	got, err := s.GetItemByID(ctx, created.Meta().ID)
	require.NoError(test, err)
	assert.Equal(test, "Original", got.Meta().Name)
}
