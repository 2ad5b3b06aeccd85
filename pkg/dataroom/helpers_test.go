package dataroom

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/store/memory"
	"github.com/stretchr/testify/require"
)

// pdfHeader is enough for content sniffing to report application/pdf.
var pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

func newTestRoom(t *testing.T, opts Options) (*DataRoom, store.ItemStore) {
	t.Helper()

	s := memory.NewMemoryItemStoreWithDefaults()
	room := New(s, opts)
	require.NoError(t, room.Initialize(context.Background()))
	t.Cleanup(func() { _ = room.Close() })
	return room, s
}

func mustFolder(t *testing.T, room *DataRoom, name, parentID string) *store.Folder {
	t.Helper()

	res := room.Folders.CreateFolder(context.Background(), name, parentID)
	require.True(t, res.Success, "create folder %q: %s", name, res.Error)
	return res.Data
}

func mustFile(t *testing.T, room *DataRoom, name, parentID string) *store.File {
	t.Helper()

	res := room.Files.UploadFile(context.Background(), pdfUpload(name, pdfHeader), parentID)
	require.True(t, res.Success, "upload %q: %s", name, res.Error)
	return res.Data
}

func pdfUpload(name string, data []byte) UploadRequest {
	return UploadRequest{Name: name, MimeType: MimeTypePDF, Content: bytes.NewReader(data)}
}

var errDisk = errors.New("disk on fire")

// faultyStore wraps an ItemStore and injects failures.
type faultyStore struct {
	store.ItemStore

	mu sync.Mutex

	// deleteBudget is the number of DeleteItem calls that succeed before
	// every further call fails. Negative means unlimited.
	deleteBudget int

	failList   bool
	failDelete bool
	panicOnGet bool
	deleted    []string
	batches    [][]string
}

func newFaultyStore(t *testing.T) *faultyStore {
	t.Helper()

	inner := memory.NewMemoryItemStoreWithDefaults()
	require.NoError(t, inner.Initialize(context.Background()))
	return &faultyStore{ItemStore: inner, deleteBudget: -1}
}

func (f *faultyStore) GetItemByID(ctx context.Context, id string) (store.Item, error) {
	if f.panicOnGet {
		panic("corrupted record")
	}
	return f.ItemStore.GetItemByID(ctx, id)
}

func (f *faultyStore) GetItemsByParent(ctx context.Context, parentID string) ([]store.Item, error) {
	if f.failList {
		return nil, store.NewIOError("list failed", errDisk)
	}
	return f.ItemStore.GetItemsByParent(ctx, parentID)
}

func (f *faultyStore) DeleteItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete || f.deleteBudget == 0 {
		return store.NewIOError("delete failed", errDisk)
	}
	if f.deleteBudget > 0 {
		f.deleteBudget--
	}
	f.deleted = append(f.deleted, id)
	return f.ItemStore.DeleteItem(ctx, id)
}

func (f *faultyStore) DeleteItems(ctx context.Context, ids []string) error {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), ids...))
	f.mu.Unlock()
	return f.ItemStore.DeleteItems(ctx, ids)
}

// recordingMetrics captures service metrics calls.
type recordingMetrics struct {
	mu       sync.Mutex
	calls    map[string][]string
	cascades []int
	uploaded int64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{calls: map[string][]string{}}
}

func (m *recordingMetrics) RecordCall(op, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op] = append(m.calls[op], outcome)
}

func (m *recordingMetrics) RecordCascade(deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascades = append(m.cascades, deleted)
}

func (m *recordingMetrics) RecordUpload(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded += n
}
