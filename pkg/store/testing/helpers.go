package testing

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewFolder builds an unsaved folder.
func NewFolder(name, parentID string) *store.Folder {
	return &store.Folder{ItemMeta: store.ItemMeta{Name: name, ParentID: parentID}}
}

// NewFile builds an unsaved PDF file with the given encoded content.
func NewFile(name, parentID, content string, size int64) *store.File {
	return &store.File{
		ItemMeta: store.ItemMeta{Name: name, ParentID: parentID},
		MimeType: "application/pdf",
		Size:     size,
		Content:  content,
	}
}

// MustCreate stores item and fails the test on error.
func MustCreate(t *testing.T, s store.ItemStore, item store.Item) store.Item {
	t.Helper()

	created, err := s.CreateItem(context.Background(), item)
	require.NoError(t, err)
	require.NotNil(t, created)
	return created
}

// IDs returns the ids of items, sorted.
func IDs(items []store.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Meta().ID)
	}
	sort.Strings(ids)
	return ids
}

// SortedIDs returns a sorted copy of ids.
func SortedIDs(ids ...string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// AssertErrorCode asserts that an error is a StoreError with the expected code.
//
// Parameters:
//   - t: Test context
//   - expected: Expected error code
//   - err: Actual error
//   - msgAndArgs: Optional message and arguments for assertion failure
func AssertErrorCode(t *testing.T, expected store.ErrorCode, err error, msgAndArgs ...any) bool {
	if err == nil {
		return assert.Fail(t, "Expected an error but got nil", msgAndArgs...)
	}

	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return assert.Equal(t, expected, storeErr.Code, msgAndArgs...)
	}

	return assert.Fail(t, "Expected a *store.StoreError", append([]any{err}, msgAndArgs...)...)
}
