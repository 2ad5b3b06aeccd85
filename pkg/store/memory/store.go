package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// MemoryItemStore implements store.ItemStore using in-memory maps.
//
// It is suitable for:
//   - Testing and development environments
//   - Ephemeral data rooms where persistence is not required
//
// Thread Safety:
// All operations are protected by a single read-write mutex (mu), making the
// store safe for concurrent access from multiple goroutines.
//
// Storage Model:
//
// The store maintains one primary map and three secondary indices:
//
//  1. items: id -> record. This is the primary storage.
//  2. byParent: parentID -> set of child ids
//  3. byType: item type -> set of ids
//  4. byName: folded name -> set of ids
//
// The indices are updated together with items under the write lock, so a
// reader never observes a record without its index entries.
type MemoryItemStore struct {
	mu          sync.RWMutex
	initialized bool

	items    map[string]store.Item
	byParent map[string]map[string]struct{}
	byType   map[store.ItemType]map[string]struct{}
	byName   map[string]map[string]struct{}
}

// MemoryItemStoreConfig contains configuration for the in-memory store.
//
// The store has no tunables today; the type exists so the configuration
// factory can decode a memory section the same way it does for badger.
type MemoryItemStoreConfig struct{}

// NewMemoryItemStore creates an empty in-memory store.
//
// The store must still be initialized with Initialize before use.
func NewMemoryItemStore(_ MemoryItemStoreConfig) *MemoryItemStore {
	return &MemoryItemStore{}
}

// NewMemoryItemStoreWithDefaults creates an empty in-memory store.
func NewMemoryItemStoreWithDefaults() *MemoryItemStore {
	return NewMemoryItemStore(MemoryItemStoreConfig{})
}

// Initialize allocates the maps. Calling it again keeps existing data.
func (s *MemoryItemStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	s.items = make(map[string]store.Item)
	s.byParent = make(map[string]map[string]struct{})
	s.byType = make(map[store.ItemType]map[string]struct{})
	s.byName = make(map[string]map[string]struct{})
	s.initialized = true

	logger.Debug("Memory item store initialized")
	return nil
}

func (s *MemoryItemStore) GetAllItems(ctx context.Context) ([]store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, store.NewUninitializedError()
	}

	items := make([]store.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, store.CloneItem(item))
	}
	return items, nil
}

func (s *MemoryItemStore) GetItemByID(ctx context.Context, id string) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, store.NewUninitializedError()
	}

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return store.CloneItem(item), nil
}

func (s *MemoryItemStore) GetItemsByParent(ctx context.Context, parentID string) ([]store.Item, error) {
	return s.lookup(ctx, func() map[string]struct{} { return s.byParent[parentID] })
}

func (s *MemoryItemStore) GetItemsByType(ctx context.Context, itemType store.ItemType) ([]store.Item, error) {
	return s.lookup(ctx, func() map[string]struct{} { return s.byType[itemType] })
}

func (s *MemoryItemStore) GetItemsByName(ctx context.Context, name string) ([]store.Item, error) {
	folded := store.FoldName(name)
	return s.lookup(ctx, func() map[string]struct{} { return s.byName[folded] })
}

// lookup materializes the ids of one index bucket under the read lock.
func (s *MemoryItemStore) lookup(ctx context.Context, bucket func() map[string]struct{}) ([]store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, store.NewUninitializedError()
	}

	ids := bucket()
	items := make([]store.Item, 0, len(ids))
	for id := range ids {
		if item, ok := s.items[id]; ok {
			items = append(items, store.CloneItem(item))
		}
	}
	return items, nil
}

func (s *MemoryItemStore) CreateItem(ctx context.Context, item store.Item) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, store.NewInvalidArgumentError("item is nil")
	}

	record := store.CloneItem(item)
	meta := record.Meta()
	meta.ID = uuid.NewString()
	meta.CreatedAt = store.Now()
	meta.UpdatedAt = meta.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, store.NewUninitializedError()
	}

	s.items[meta.ID] = record
	s.index(record)

	logger.Debug("Memory store: created %s %s (%s)", record.Type(), meta.ID, meta.Name)
	return store.CloneItem(record), nil
}

func (s *MemoryItemStore) UpdateItem(ctx context.Context, id string, update store.ItemUpdate) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, store.NewUninitializedError()
	}

	current, ok := s.items[id]
	if !ok {
		return nil, store.NewNotFoundError(id)
	}

	s.unindex(current)

	record := store.CloneItem(current)
	meta := record.Meta()
	update.Apply(meta)
	meta.UpdatedAt = store.NextUpdatedAt(meta.UpdatedAt)

	s.items[id] = record
	s.index(record)

	return store.CloneItem(record), nil
}

func (s *MemoryItemStore) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return store.NewUninitializedError()
	}

	s.remove(id)
	return nil
}

func (s *MemoryItemStore) DeleteItemsInParent(ctx context.Context, parentID string) error {
	children, err := s.GetItemsByParent(ctx, parentID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := s.DeleteItem(ctx, child.Meta().ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryItemStore) DeleteItems(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return store.NewUninitializedError()
	}

	for _, id := range ids {
		s.remove(id)
	}
	return nil
}

// Healthcheck verifies the store is operational.
//
// For the in-memory implementation this only checks the context and that
// Initialize has run.
func (s *MemoryItemStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return store.NewUninitializedError()
	}
	return nil
}

// Close drops all data. The store must be initialized again before reuse.
func (s *MemoryItemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.byParent = nil
	s.byType = nil
	s.byName = nil
	s.initialized = false
	return nil
}

// remove deletes a record and its index entries. Caller holds mu.
func (s *MemoryItemStore) remove(id string) {
	item, ok := s.items[id]
	if !ok {
		return
	}
	s.unindex(item)
	delete(s.items, id)
}

// index adds the index entries of item. Caller holds mu.
func (s *MemoryItemStore) index(item store.Item) {
	meta := item.Meta()
	addToSet(s.byParent, meta.ParentID, meta.ID)
	addToSet(s.byType, item.Type(), meta.ID)
	addToSet(s.byName, store.FoldName(meta.Name), meta.ID)
}

// unindex removes the index entries of item. Caller holds mu.
func (s *MemoryItemStore) unindex(item store.Item) {
	meta := item.Meta()
	removeFromSet(s.byParent, meta.ParentID, meta.ID)
	removeFromSet(s.byType, item.Type(), meta.ID)
	removeFromSet(s.byName, store.FoldName(meta.Name), meta.ID)
}

var _ store.ItemStore = (*MemoryItemStore)(nil)

func addToSet[K comparable](m map[K]map[string]struct{}, key K, id string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[id] = struct{}{}
}

func removeFromSet[K comparable](m map[K]map[string]struct{}, key K, id string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}
