//go:build integration

package dataroom

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/store/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBadgerDataRoom_Integration runs the services over a persistent
// BadgerDB store and reopens it between steps.
//
// Prerequisites:
//   - None (BadgerDB is embedded, no external services needed)
//   - Run with: go test -tags=integration ./pkg/dataroom/...
func TestBadgerDataRoom_Integration(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "items")
	opts := Options{TransactionalCascade: true, SerializeMutations: true}

	open := func(t *testing.T) *DataRoom {
		t.Helper()
		room := New(badger.NewBadgerItemStoreWithDefaults(dbPath), opts)
		require.NoError(t, room.Initialize(ctx))
		return room
	}

	// ========================================================================
	// Step 1: Build a tree and close the store
	// ========================================================================

	room := open(t)
	legal := mustFolder(t, room, "Legal", store.RootID)
	contracts := mustFolder(t, room, "Contracts", legal.ID)
	nda := mustFile(t, room, "NDA.pdf", contracts.ID)
	mustFolder(t, room, "Finance", store.RootID)
	require.NoError(t, room.Close())

	// ========================================================================
	// Step 2: Reopen, verify content survived, and rename
	// ========================================================================

	room = open(t)
	crumbs := room.Folders.GetBreadcrumbs(ctx, contracts.ID)
	require.True(t, crumbs.Success, crumbs.Error)
	require.Len(t, crumbs.Data, 2)
	assert.Equal(t, "Legal", crumbs.Data[0].Name)

	content := room.Files.GetFileContent(ctx, nda.ID)
	require.True(t, content.Success, content.Error)
	data, err := DecodeContent(content.Data)
	require.NoError(t, err)
	assert.Equal(t, pdfHeader, data)

	dup := room.Folders.UpdateFolder(ctx, legal.ID, "FINANCE")
	assert.Equal(t, KindDuplicateName, dup.Kind)

	renamed := room.Folders.UpdateFolder(ctx, legal.ID, "  Legal & Compliance ")
	require.True(t, renamed.Success, renamed.Error)
	require.NoError(t, room.Close())

	// ========================================================================
	// Step 3: Reopen and cascade-delete in one transaction
	// ========================================================================

	room = open(t)
	t.Cleanup(func() { _ = room.Close() })

	top := room.Folders.GetFolderContents(ctx, store.RootID)
	require.True(t, top.Success)
	require.Len(t, top.Data.Folders, 2)
	assert.Equal(t, "Finance", top.Data.Folders[0].Name)
	assert.Equal(t, "Legal & Compliance", top.Data.Folders[1].Name)

	deleted := room.Folders.DeleteFolder(ctx, legal.ID)
	require.True(t, deleted.Success, deleted.Error)
	assert.ElementsMatch(t, []string{legal.ID, contracts.ID, nda.ID}, deleted.DeletedIDs)

	missing := room.Files.GetFileByID(ctx, nda.ID)
	assert.Equal(t, KindNotFound, missing.Kind)

	top = room.Folders.GetFolderContents(ctx, store.RootID)
	require.True(t, top.Success)
	assert.Equal(t, 1, top.Data.TotalItems)
}
