package badger

import (
	"context"
	"path/filepath"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/dataroom/pkg/store"
	storetesting "github.com/marmos91/dataroom/pkg/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBadgerItemStore runs the complete ItemStore test suite
// against the BadgerItemStore implementation.
func TestBadgerItemStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.ItemStore {
			s := NewBadgerItemStoreWithDefaults(filepath.Join(t.TempDir(), "db"))
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	suite.Run(t)
}

// TestBadgerItemStore_InMemory runs the suite against BadgerDB's in-memory mode.
func TestBadgerItemStore_InMemory(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.ItemStore {
			s := NewBadgerItemStore(BadgerItemStoreConfig{InMemory: true})
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	suite.Run(t)
}

func TestBadgerItemStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "db")

	s := NewBadgerItemStoreWithDefaults(dbPath)
	require.NoError(t, s.Initialize(ctx))

	folder := storetesting.MustCreate(t, s, storetesting.NewFolder("Board Minutes", store.RootID))
	file := storetesting.MustCreate(t, s, storetesting.NewFile("q1.pdf", folder.Meta().ID, "JVBERi0=", 5))
	require.NoError(t, s.Close())

	reopened := NewBadgerItemStoreWithDefaults(dbPath)
	require.NoError(t, reopened.Initialize(ctx))
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetItemByID(ctx, file.Meta().ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, file.Meta().CreatedAt.Equal(got.Meta().CreatedAt), "timestamps must survive a reopen")
	assert.Equal(t, "JVBERi0=", store.AsFile(got).Content)

	children, err := reopened.GetItemsByParent(ctx, folder.Meta().ID)
	require.NoError(t, err)
	assert.Equal(t, []string{file.Meta().ID}, storetesting.IDs(children), "indices must survive a reopen")
}

func TestBadgerItemStore_RequiresPath(t *testing.T) {
	s := NewBadgerItemStore(BadgerItemStoreConfig{})

	err := s.Initialize(context.Background())
	storetesting.AssertErrorCode(t, store.ErrInvalidArgument, err)
}

func TestBadgerItemStore_CloseThenUse(t *testing.T) {
	ctx := context.Background()
	s := NewBadgerItemStore(BadgerItemStoreConfig{InMemory: true})
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "closing twice is harmless")

	_, err := s.GetAllItems(ctx)
	storetesting.AssertErrorCode(t, store.ErrUninitialized, err)
}

func TestBadgerItemStore_IndexKeysWrittenAndRemoved(t *testing.T) {
	ctx := context.Background()
	s := NewBadgerItemStore(BadgerItemStoreConfig{InMemory: true})
	require.NoError(t, s.Initialize(ctx))
	t.Cleanup(func() { _ = s.Close() })

	item := storetesting.MustCreate(t, s, storetesting.NewFolder("Tax", store.RootID))
	id := item.Meta().ID

	expected := [][]byte{
		keyItem(id),
		keyParentEntry(store.RootID, id),
		keyTypeEntry(store.ItemTypeFolder, id),
		keyNameEntry("tax", id),
	}

	require.NoError(t, s.db.View(func(txn *badger.Txn) error {
		for _, key := range expected {
			_, err := txn.Get(key)
			assert.NoError(t, err, "missing key %q", key)
		}
		return nil
	}))

	require.NoError(t, s.DeleteItem(ctx, id))

	require.NoError(t, s.db.View(func(txn *badger.Txn) error {
		for _, key := range expected {
			_, err := txn.Get(key)
			assert.ErrorIs(t, err, badger.ErrKeyNotFound, "stale key %q", key)
		}
		return nil
	}))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "xp:~root:abc", string(keyParentEntry(store.RootID, "abc")))
	assert.Equal(t, "xp:p1:abc", string(keyParentEntry("p1", "abc")))
	assert.Equal(t, "xt:file:abc", string(keyTypeEntry(store.ItemTypeFile, "abc")))
	assert.Equal(t, "xn:reports\x00abc", string(keyNameEntry("  Reports ", "abc")))
}
