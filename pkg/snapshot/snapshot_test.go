package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/store/memory"
	storetesting "github.com/marmos91/dataroom/pkg/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.ItemStore {
	t.Helper()

	s := memory.NewMemoryItemStoreWithDefaults()
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

// seed builds Legal/{Contracts/nda.pdf, terms.pdf} and Board at the top level.
func seed(t *testing.T, s store.ItemStore) {
	t.Helper()

	legal := storetesting.MustCreate(t, s, storetesting.NewFolder("Legal", store.RootID))
	contracts := storetesting.MustCreate(t, s, storetesting.NewFolder("Contracts", legal.Meta().ID))
	storetesting.MustCreate(t, s, storetesting.NewFile("nda.pdf", contracts.Meta().ID, "JVBERi0=", 5))
	storetesting.MustCreate(t, s, storetesting.NewFile("terms.pdf", legal.Meta().ID, "JVBERi0xLjc=", 8))
	storetesting.MustCreate(t, s, storetesting.NewFolder("Board", store.RootID))
}

// tree renders a store as "path -> type" pairs for comparison.
func tree(t *testing.T, s store.ItemStore) map[string]store.ItemType {
	t.Helper()
	ctx := context.Background()

	out := map[string]store.ItemType{}
	var walk func(parentID, prefix string)
	walk = func(parentID, prefix string) {
		children, err := s.GetItemsByParent(ctx, parentID)
		require.NoError(t, err)
		for _, child := range children {
			path := prefix + "/" + child.Meta().Name
			out[path] = child.Type()
			walk(child.Meta().ID, path)
		}
	}
	walk(store.RootID, "")
	return out
}

type recordingMetrics struct {
	directions []string
	items      []int
	errs       []error
}

func (m *recordingMetrics) ObserveTransfer(direction, _ string, items int, _ int64, _ time.Duration, err error) {
	m.directions = append(m.directions, direction)
	m.items = append(m.items, items)
	m.errs = append(m.errs, err)
}

func TestExportImport_FileSink(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	seed(t, src)

	sink, err := NewFileSink(filepath.Join(t.TempDir(), "nested", "snapshot.yaml"))
	require.NoError(t, err)

	m := &recordingMetrics{}
	exported, err := NewManager(src, sink, m).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, exported.Items)
	assert.Positive(t, exported.Bytes)

	dst := newStore(t)
	imported, err := NewManager(dst, sink, m).Import(ctx, store.RootID)
	require.NoError(t, err)
	assert.Equal(t, 5, imported.Items)
	assert.Empty(t, imported.Skipped)

	assert.Equal(t, tree(t, src), tree(t, dst))
	assert.Equal(t, []string{"export", "import"}, m.directions)
	assert.Equal(t, []int{5, 5}, m.items)

	// Content and fresh ids
	files, err := dst.GetItemsByName(ctx, "nda.pdf")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "JVBERi0=", store.AsFile(files[0]).Content)
	assert.Equal(t, int64(5), store.AsFile(files[0]).Size)

	original, err := src.GetItemsByName(ctx, "nda.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, original[0].Meta().ID, files[0].Meta().ID)
}

func TestImport_UnderFolder(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	seed(t, src)

	sink, err := NewFileSink(filepath.Join(t.TempDir(), "snapshot.yaml"))
	require.NoError(t, err)
	_, err = NewManager(src, sink, nil).Export(ctx)
	require.NoError(t, err)

	dst := newStore(t)
	archive := storetesting.MustCreate(t, dst, storetesting.NewFolder("Archive", store.RootID))

	_, err = NewManager(dst, sink, nil).Import(ctx, archive.Meta().ID)
	require.NoError(t, err)

	got := tree(t, dst)
	assert.Equal(t, store.ItemTypeFile, got["/Archive/Legal/Contracts/nda.pdf"])
	assert.Equal(t, store.ItemTypeFolder, got["/Archive/Board"])

	_, err = NewManager(dst, sink, nil).Import(ctx, "missing")
	assert.ErrorContains(t, err, "target folder missing not found")
}

func TestImport_TwiceClashes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seed(t, s)

	sink, err := NewFileSink(filepath.Join(t.TempDir(), "snapshot.yaml"))
	require.NoError(t, err)
	mgr := NewManager(s, sink, nil)

	_, err = mgr.Export(ctx)
	require.NoError(t, err)

	_, err = mgr.Import(ctx, store.RootID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists in this location")
}

func TestImport_SkipsOrphans(t *testing.T) {
	ctx := context.Background()
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "snapshot.yaml"))
	require.NoError(t, err)

	data, err := encodeDocument(&Document{
		Version: FormatVersion,
		Items: []store.Record{
			{ID: "a", Name: "Kept", Type: store.ItemTypeFolder},
			{ID: "b", Name: "Orphan", Type: store.ItemTypeFolder, ParentID: "gone"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, data))

	summary, err := NewManager(newStore(t), sink, nil).Import(ctx, store.RootID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Items)
	assert.Equal(t, []string{"b"}, summary.Skipped)
}

func TestImport_RejectsInvalidNames(t *testing.T) {
	ctx := context.Background()
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "snapshot.yaml"))
	require.NoError(t, err)

	data, err := encodeDocument(&Document{
		Version: FormatVersion,
		Items:   []store.Record{{ID: "a", Name: "a/b", Type: store.ItemTypeFolder}},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, data))

	_, err = NewManager(newStore(t), sink, nil).Import(ctx, store.RootID)
	assert.ErrorContains(t, err, "Folder name contains invalid characters")
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing snapshot", func(t *testing.T) {
		sink, err := NewFileSink(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)

		m := &recordingMetrics{}
		_, err = NewManager(newStore(t), sink, m).Import(ctx, store.RootID)
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
		require.Len(t, m.errs, 1)
		assert.Error(t, m.errs[0])
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := filepath.Join(dir, "v9.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 9\nitems: []\n"), 0644))
		sink, err := NewFileSink(path)
		require.NoError(t, err)

		_, err = NewManager(newStore(t), sink, nil).Import(ctx, store.RootID)
		assert.ErrorContains(t, err, "unsupported snapshot version 9")
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.yaml")
		require.NoError(t, os.WriteFile(path, []byte("items: [unterminated"), 0644))
		sink, err := NewFileSink(path)
		require.NoError(t, err)

		_, err = NewManager(newStore(t), sink, nil).Import(ctx, store.RootID)
		assert.ErrorContains(t, err, "failed to decode snapshot")
	})
}

func TestNewFileSink_RequiresPath(t *testing.T) {
	_, err := NewFileSink("")
	assert.ErrorContains(t, err, "path is required")
}

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Sink(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()

	sink, err := NewS3Sink(S3SinkConfig{Client: client, Bucket: "rooms"})
	require.NoError(t, err)
	assert.Equal(t, "s3", sink.Type())

	_, err = sink.Read(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	src := newStore(t)
	seed(t, src)
	_, err = NewManager(src, sink, nil).Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, client.objects, "rooms/dataroom/snapshot.yaml")

	dst := newStore(t)
	_, err = NewManager(dst, sink, nil).Import(ctx, store.RootID)
	require.NoError(t, err)
	assert.Equal(t, tree(t, src), tree(t, dst))

	client.failPut = true
	_, err = NewManager(src, sink, nil).Export(ctx)
	assert.ErrorContains(t, err, "failed to write snapshot to S3")
}

func TestNewS3Sink_Validation(t *testing.T) {
	_, err := NewS3Sink(S3SinkConfig{Bucket: "b"})
	assert.ErrorContains(t, err, "S3 client is required")

	_, err = NewS3Sink(S3SinkConfig{Client: newFakeS3()})
	assert.ErrorContains(t, err, "bucket name is required")
}
